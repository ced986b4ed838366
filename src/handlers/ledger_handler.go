package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/FExEVIL/tradeautopsy-sub003/src/logger"
	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
	"github.com/FExEVIL/tradeautopsy-sub003/src/services"
	"github.com/FExEVIL/tradeautopsy-sub003/src/utils"
)

type LedgerHandler struct {
	reconcileService services.ReconcileService
}

func NewLedgerHandler(service services.ReconcileService) *LedgerHandler {
	return &LedgerHandler{
		reconcileService: service,
	}
}

// HandleGetLedger returns the most recent reconciled ledger for an account,
// with ETag support so unchanged ledgers are not re-transferred.
func (h *LedgerHandler) HandleGetLedger(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	accountID := AccountIDFromRequest(r)

	ledger, err := h.reconcileService.GetLedger(accountID)
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			utils.SendJSONError(w, fmt.Sprintf("No reconciled ledger for account %s", accountID), http.StatusNotFound)
			return
		}
		ctxLogger.Error("Error retrieving ledger", "accountID", accountID, "error", err)
		utils.SendJSONError(w, "Error retrieving ledger", http.StatusInternalServerError)
		return
	}
	if ledger == nil {
		ledger = []models.MatchedTrade{}
	}

	if etag, err := utils.GenerateETag(ledger); err == nil {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}

	writeJSON(w, http.StatusOK, ledger)
}

// HandleGetSummary recomputes and returns the portfolio aggregate.
func (h *LedgerHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	accountID := AccountIDFromRequest(r)

	summary, err := h.reconcileService.GetSummary(accountID)
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			utils.SendJSONError(w, fmt.Sprintf("No reconciled ledger for account %s", accountID), http.StatusNotFound)
			return
		}
		ctxLogger.Error("Error computing summary", "accountID", accountID, "error", err)
		utils.SendJSONError(w, "Error computing summary", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

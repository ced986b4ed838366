package services

import (
	"errors"
	"io"

	"github.com/FExEVIL/tradeautopsy-sub003/src/models"
	"github.com/FExEVIL/tradeautopsy-sub003/src/parsers"
)

var (
	ErrParsingFailed     = errors.New("parsing failed")
	ErrPersistenceFailed = errors.New("persistence failed")
	ErrNoData            = errors.New("no reconciled data for account")
)

// ImportResult is what one reconciliation run produces.
type ImportResult struct {
	JobID     string                `json:"job_id"`
	AccountID string                `json:"account_id"`
	Mapping   models.ColumnMapping  `json:"mapping"`
	Ledger    []models.MatchedTrade `json:"ledger"`
	Rejected  []models.RejectedRow  `json:"rejected"`
	Summary   models.Summary        `json:"summary"`
}

// ReconcileService runs the full pipeline: parse, match, aggregate, persist.
type ReconcileService interface {
	// ProcessImport reconciles a raw broker-export file for one account.
	ProcessImport(file io.Reader, accountID, source string) (*ImportResult, error)

	// ProcessLegs reconciles pre-structured legs (broker-API adapter path,
	// schema detection bypassed).
	ProcessLegs(legs []models.TradeLeg, rejected []models.RejectedRow, accountID string) (*ImportResult, error)

	// PreviewMapping runs schema detection only, without persisting anything.
	PreviewMapping(file io.Reader) (*parsers.ImportOutcome, error)

	// GetLedger returns the most recent reconciled ledger for an account.
	GetLedger(accountID string) ([]models.MatchedTrade, error)

	// GetSummary recomputes the portfolio aggregate for an account.
	GetSummary(accountID string) (models.Summary, error)

	InvalidateAccountCache(accountID string)
}

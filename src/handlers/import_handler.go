package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/FExEVIL/tradeautopsy-sub003/src/config"
	"github.com/FExEVIL/tradeautopsy-sub003/src/logger"
	"github.com/FExEVIL/tradeautopsy-sub003/src/parsers"
	"github.com/FExEVIL/tradeautopsy-sub003/src/security/validation"
	"github.com/FExEVIL/tradeautopsy-sub003/src/services"
	"github.com/FExEVIL/tradeautopsy-sub003/src/utils"
)

type ImportHandler struct {
	reconcileService services.ReconcileService
}

func NewImportHandler(service services.ReconcileService) *ImportHandler {
	return &ImportHandler{
		reconcileService: service,
	}
}

// HandleImport receives a multipart trade-export upload, reconciles it and
// returns the full import result (mapping, ledger, rejects, summary).
func (h *ImportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	accountID := AccountIDFromRequest(r)

	file, fileHeader, ok := h.openUpload(w, r, accountID)
	if !ok {
		return
	}
	defer file.Close()

	source := r.FormValue("source")
	ctxLogger.Info("Processing import request", "accountID", accountID, "filename", fileHeader.Filename, "source", source)

	result, err := h.reconcileService.ProcessImport(file, accountID, source)
	if err != nil {
		switch {
		case errors.Is(err, parsers.ErrEmptyInput):
			ctxLogger.Warn("Import rejected: empty file", "accountID", accountID, "filename", fileHeader.Filename)
			utils.SendJSONError(w, "The uploaded file is empty.", http.StatusBadRequest)
		case errors.Is(err, services.ErrParsingFailed):
			ctxLogger.Warn("Import failed during parsing", "accountID", accountID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing trade export: %v", err), http.StatusBadRequest)
		default:
			ctxLogger.Error("Internal error processing import", "accountID", accountID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	if result.Mapping.Confidence < 100 {
		ctxLogger.Warn("Import completed with partial column mapping",
			"accountID", accountID, "confidence", result.Mapping.Confidence)
	}

	writeJSON(w, http.StatusOK, result)
}

// HandlePreview runs schema detection and row validation without persisting
// anything, so a caller can confirm or correct the mapping before importing.
func (h *ImportHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	accountID := AccountIDFromRequest(r)

	file, fileHeader, ok := h.openUpload(w, r, accountID)
	if !ok {
		return
	}
	defer file.Close()

	ctxLogger.Info("Processing mapping preview", "accountID", accountID, "filename", fileHeader.Filename)

	outcome, err := h.reconcileService.PreviewMapping(file)
	if err != nil {
		if errors.Is(err, parsers.ErrEmptyInput) {
			utils.SendJSONError(w, "The uploaded file is empty.", http.StatusBadRequest)
			return
		}
		ctxLogger.Warn("Preview failed", "accountID", accountID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error parsing trade export: %v", err), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// openUpload parses the multipart form and validates the uploaded file's
// declared and sniffed content types. On failure it writes the error response
// itself and returns ok=false.
func (h *ImportHandler) openUpload(w http.ResponseWriter, r *http.Request, accountID string) (multipart.File, *multipart.FileHeader, bool) {
	ctxLogger := logger.FromContext(r.Context())

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		ctxLogger.Warn("Failed to parse multipart form or request too large", "accountID", accountID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return nil, nil, false
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		ctxLogger.Warn("Failed to retrieve file from request", "accountID", accountID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return nil, nil, false
	}

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		file.Close()
		ctxLogger.Warn("Uploaded file too large", "accountID", accountID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return nil, nil, false
	}

	if err := validation.ValidateClientContentType(fileHeader.Header.Get("Content-Type")); err != nil {
		file.Close()
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}

	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		file.Close()
		ctxLogger.Warn("File content validation failed", "accountID", accountID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}

	return file, fileHeader, true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("Error encoding JSON response", "error", err)
	}
}

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Saurabhkg03/saraavdata-backend/internal/api/shared"
	"github.com/Saurabhkg03/saraavdata-backend/internal/platform/logger"
	"github.com/Saurabhkg03/saraavdata-backend/internal/store"
)

// UploadResponse confirms a stored input snapshot.
type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// BankHandler handles the question bank snapshot endpoints.
type BankHandler struct {
	snapshots *store.Store
	logger    *slog.Logger
}

// NewBankHandler creates a new BankHandler
func NewBankHandler(snapshots *store.Store, logger *slog.Logger) *BankHandler {
	if snapshots == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("snapshot store cannot be nil for BankHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for BankHandler")
	}

	return &BankHandler{
		snapshots: snapshots,
		logger:    logger.With(slog.String("component", "bank_handler")),
	}
}

// Upload handles POST /upload requests. The multipart "file" field is
// stored byte for byte as the input snapshot, and any previous output
// snapshot is removed so the next run starts over instead of resuming
// stale progress.
func (h *BankHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn("upload rejected, missing file field", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "A file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	size, err := h.snapshots.WriteInput(file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to store uploaded file", err)
		return
	}

	if err := h.snapshots.RemoveOutput(); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to clear previous output", err)
		return
	}

	log.Info("input snapshot replaced",
		slog.String("filename", header.Filename),
		slog.Int64("size_bytes", size))
	shared.RespondWithJSON(w, r, http.StatusOK, UploadResponse{
		Message:  "File uploaded successfully",
		Filename: header.Filename,
	})
}

// Download handles GET /download requests, serving the output snapshot
// exactly as it sits on disk.
func (h *BankHandler) Download(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	data, err := h.snapshots.ReadOutput()
	if errors.Is(err, store.ErrNoSnapshot) {
		log.Debug("download requested before any output exists")
		shared.RespondWithError(w, r, http.StatusNotFound,
			"Output file not found. Process may not be complete.")
		return
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to read output file", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="processed_output.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Error("failed to write download response", slog.String("error", err.Error()))
	}
}

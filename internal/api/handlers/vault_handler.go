package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/markdave123-py/LegalScan/internal/core"
	db "github.com/markdave123-py/LegalScan/internal/core/database"
	"github.com/markdave123-py/LegalScan/internal/logging"
	"github.com/markdave123-py/LegalScan/internal/models"
)

// VaultHandler exposes the archive collaborator. Documents are stored as the
// client sends them.
type VaultHandler struct {
	store  core.VaultStore
	logger *slog.Logger
}

func NewVaultHandler(store core.VaultStore, logger *slog.Logger) *VaultHandler {
	return &VaultHandler{store: store, logger: logging.Component(logger, "vault-handler")}
}

type archiveRequest struct {
	FileName      string `json:"fileName"`
	Summary       string `json:"summary"`
	ExtractedText string `json:"extractedText"`
	Language      string `json:"language"`
}

func (h *VaultHandler) Archive(w http.ResponseWriter, r *http.Request) {
	var req archiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorDetails{Error: "invalid request", Details: err.Error()})
		return
	}
	if strings.TrimSpace(req.Summary) == "" || strings.TrimSpace(req.FileName) == "" {
		writeJSON(w, http.StatusBadRequest, errorDetails{Error: "fileName and summary are required"})
		return
	}

	doc := &models.VaultDocument{
		FileName:      req.FileName,
		Summary:       req.Summary,
		ExtractedText: req.ExtractedText,
		Language:      req.Language,
	}
	if err := h.store.Archive(r.Context(), doc); err != nil {
		h.logger.Error("archive failed", "file", req.FileName, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorDetails{Error: "failed to archive document"})
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *VaultHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorDetails{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	docs, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("list failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorDetails{Error: "failed to list documents"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *VaultHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeJSON(w, http.StatusBadRequest, errorDetails{Error: "invalid document id"})
		return
	}
	err := h.store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorDetails{Error: "document not found"})
	case err != nil:
		h.logger.Error("delete failed", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorDetails{Error: "failed to delete document"})
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

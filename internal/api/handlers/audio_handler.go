package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/markdave123-py/LegalScan/internal/core/narrator"
	"github.com/markdave123-py/LegalScan/internal/logging"
	"github.com/markdave123-py/LegalScan/internal/models"
)

type Speaker interface {
	Speak(ctx context.Context, text string) (*models.NarrationResult, error)
}

// AudioHandler serves standalone narration. Nothing it produces is persisted.
type AudioHandler struct {
	speaker Speaker
	logger  *slog.Logger
}

// NewAudioHandler takes a nil speaker when no narration key is configured.
func NewAudioHandler(speaker Speaker, logger *slog.Logger) *AudioHandler {
	return &AudioHandler{speaker: speaker, logger: logging.Component(logger, "audio-handler")}
}

type generateAudioRequest struct {
	Text string `json:"text"`
}

func (h *AudioHandler) GenerateAudio(w http.ResponseWriter, r *http.Request) {
	if h.speaker == nil {
		writeJSON(w, http.StatusUnauthorized, errorDetails{Error: "ElevenLabs API Key is missing from server configuration."})
		return
	}

	var req generateAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorDetails{Error: "Text is required for speech generation."})
		return
	}

	res, err := h.speaker.Speak(r.Context(), req.Text)
	if err != nil {
		h.logger.Error("speech generation failed", "error", err)
		var apiErr *narrator.APIError
		switch {
		case errors.As(err, &apiErr):
			writeJSON(w, apiErr.StatusCode, errorDetails{Error: "ElevenLabs API failure", Details: apiErr.Body})
		case errors.Is(err, narrator.ErrTextTooShort):
			writeJSON(w, http.StatusBadRequest, errorDetails{Error: "Text is too short for audio generation."})
		default:
			writeJSON(w, http.StatusInternalServerError, errorDetails{Error: "Failed to generate speech", Details: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"audioBase64": res.AudioBase64,
		"mimeType":    res.MimeType,
	})
}

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
	"github.com/markdave123-py/LegalScan/internal/logging"
	"github.com/markdave123-py/LegalScan/internal/models"
)

type Replier interface {
	Reply(ctx context.Context, message string, history []models.ChatTurn) (string, error)
}

type ChatHandler struct {
	assistant Replier
	logger    *slog.Logger
}

func NewChatHandler(assistant Replier, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{assistant: assistant, logger: logging.Component(logger, "chat-handler")}
}

// chatTurn accepts both {role, text} and the {role, parts:[{text}]} shape.
type chatTurn struct {
	Role  string `json:"role"`
	Text  string `json:"text"`
	Parts []struct {
		Text string `json:"text"`
	} `json:"parts"`
}

type ChatRequest struct {
	Message string     `json:"message"`
	History []chatTurn `json:"history"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorDetails{Error: "Invalid message format"})
		return
	}

	reply, err := h.assistant.Reply(r.Context(), req.Message, toTurns(req.History))
	if err != nil {
		status, msg := chatFailure(err)
		h.logger.Error("chat failed", "status", status, "error", err)
		writeJSON(w, status, errorDetails{Error: msg, Details: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func chatFailure(err error) (int, string) {
	switch scanerr.KindOf(err) {
	case scanerr.KindInvalidCredential:
		return http.StatusUnauthorized, "Invalid or missing API Key"
	case scanerr.KindQuotaExceeded:
		return http.StatusTooManyRequests, "Chat quota exceeded — try again later"
	case scanerr.KindInvalidUpload:
		return http.StatusBadRequest, "Invalid message format"
	}
	return http.StatusInternalServerError, "Failed to process request"
}

func toTurns(in []chatTurn) []models.ChatTurn {
	out := make([]models.ChatTurn, 0, len(in))
	for _, t := range in {
		text := t.Text
		if text == "" {
			parts := make([]string, 0, len(t.Parts))
			for _, p := range t.Parts {
				parts = append(parts, p.Text)
			}
			text = strings.Join(parts, "")
		}
		out = append(out, models.ChatTurn{Role: t.Role, Text: text})
	}
	return out
}

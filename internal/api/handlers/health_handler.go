package handlers

import (
	"context"
	"net/http"
	"time"
)

const inactiveModel = "none (will probe)"

type ActiveModel interface {
	Active(ctx context.Context) (string, bool)
}

type HealthHandler struct {
	chatKeyLoaded bool
	scanKeyLoaded bool
	chat          ActiveModel
	scan          ActiveModel
	endpoints     []string
	now           func() time.Time
}

func NewHealthHandler(chatKeyLoaded, scanKeyLoaded bool, chat, scan ActiveModel, endpoints []string) *HealthHandler {
	return &HealthHandler{
		chatKeyLoaded: chatKeyLoaded,
		scanKeyLoaded: scanKeyLoaded,
		chat:          chat,
		scan:          scan,
		endpoints:     endpoints,
		now:           time.Now,
	}
}

type healthResponse struct {
	Status          string   `json:"status"`
	Timestamp       string   `json:"timestamp"`
	ChatKeyLoaded   bool     `json:"chatKeyLoaded"`
	ScanKeyLoaded   bool     `json:"scanKeyLoaded"`
	ActiveChatModel string   `json:"activeChatModel"`
	ActiveScanModel string   `json:"activeScanModel"`
	Endpoints       []string `json:"endpoints"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:          "OK",
		Timestamp:       h.now().UTC().Format(time.RFC3339Nano),
		ChatKeyLoaded:   h.chatKeyLoaded,
		ScanKeyLoaded:   h.scanKeyLoaded,
		ActiveChatModel: activeOrNone(r.Context(), h.chat),
		ActiveScanModel: activeOrNone(r.Context(), h.scan),
		Endpoints:       h.endpoints,
	})
}

func activeOrNone(ctx context.Context, m ActiveModel) string {
	if m == nil {
		return inactiveModel
	}
	if name, ok := m.Active(ctx); ok {
		return name
	}
	return inactiveModel
}

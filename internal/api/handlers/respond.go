package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusForKind maps a failure kind to its HTTP status.
func StatusForKind(k scanerr.Kind) int {
	switch k {
	case scanerr.KindInvalidUpload, scanerr.KindContentPolicy:
		return http.StatusBadRequest
	case scanerr.KindInvalidCredential:
		return http.StatusUnauthorized
	case scanerr.KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case scanerr.KindUnreadable:
		return http.StatusUnprocessableEntity
	case scanerr.KindQuotaExceeded:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

type errorDetails struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
)

const (
	detailInvalidCredential = "Invalid or missing API key"
	detailQuota             = "Quota exceeded (429)"
	detailModelUnavailable  = "Model not found (404)"
	detailContentPolicy     = "Response blocked by SAFETY filters"
)

// classify tags a backend error with a scanerr kind. Typed signals win;
// message matching is only used for errors that carry none.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *scanerr.Error
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return scanerr.Wrap(scanerr.KindUnknown, op, "", err)
	}

	code := httpCode(err)
	kind := kindForHTTP(code, err.Error())
	if kind == scanerr.KindUnknown && code == 0 {
		kind = kindFromMessage(err.Error())
	}

	return &scanerr.Error{Kind: kind, Op: op, Detail: detailFor(kind), Status: code, Err: err}
}

// httpCode extracts an HTTP-equivalent status from the typed errors the two
// Gemini SDKs return, or 0 when there is none.
func httpCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	var aerr genai.APIError
	if errors.As(err, &aerr) {
		return aerr.Code
	}
	var paerr *genai.APIError
	if errors.As(err, &paerr) && paerr != nil {
		return paerr.Code
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.OK && st.Code() != codes.Unknown {
		return grpcToHTTP(st.Code())
	}
	return 0
}

func grpcToHTTP(c codes.Code) int {
	switch c {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func kindForHTTP(code int, msg string) scanerr.Kind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return scanerr.KindInvalidCredential
	case http.StatusBadRequest:
		// Gemini reports a bad key as INVALID_ARGUMENT.
		if strings.Contains(strings.ToLower(msg), "api key") {
			return scanerr.KindInvalidCredential
		}
		return scanerr.KindUnknown
	case http.StatusNotFound:
		return scanerr.KindModelUnavailable
	case http.StatusTooManyRequests:
		return scanerr.KindQuotaExceeded
	}
	return scanerr.KindUnknown
}

func kindFromMessage(msg string) scanerr.Kind {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "api key"):
		return scanerr.KindInvalidCredential
	case strings.Contains(m, "safety"), strings.Contains(m, "blocked"):
		return scanerr.KindContentPolicy
	case strings.Contains(m, "429"), strings.Contains(m, "quota"), strings.Contains(m, "resource_exhausted"):
		return scanerr.KindQuotaExceeded
	case strings.Contains(m, "404"), strings.Contains(m, "not found"):
		return scanerr.KindModelUnavailable
	}
	return scanerr.KindUnknown
}

func detailFor(k scanerr.Kind) string {
	switch k {
	case scanerr.KindInvalidCredential:
		return detailInvalidCredential
	case scanerr.KindQuotaExceeded:
		return detailQuota
	case scanerr.KindModelUnavailable:
		return detailModelUnavailable
	case scanerr.KindContentPolicy:
		return detailContentPolicy
	}
	return ""
}

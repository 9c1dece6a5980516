// Package scanerr defines the tagged error returned by every pipeline stage.
//
// Stages classify their failures once, where the failure is observed, and the
// HTTP layer maps the Kind to a status code without inspecting messages.
package scanerr

import (
	"errors"
	"fmt"
)

// Kind classifies a stage failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidUpload
	KindPayloadTooLarge
	KindUnreadable
	KindExtraction
	KindInvalidCredential
	KindContentPolicy
	KindQuotaExceeded
	KindModelUnavailable
	KindSummarization
	KindSynthesis
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindInvalidUpload:     "invalid_upload",
	KindPayloadTooLarge:   "payload_too_large",
	KindUnreadable:        "unreadable",
	KindExtraction:        "extraction",
	KindInvalidCredential: "invalid_credential",
	KindContentPolicy:     "content_policy",
	KindQuotaExceeded:     "quota_exceeded",
	KindModelUnavailable:  "model_unavailable",
	KindSummarization:     "summarization",
	KindSynthesis:         "synthesis",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified stage failure.
//
// Detail is the human-readable message shown to API callers. Status carries
// an upstream HTTP status when the failure came from a remote backend.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error without a cause.
func New(kind Kind, op, detail string) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, op, detail string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Detail: detail, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// StatusOf returns the upstream HTTP status recorded in err's chain, or 0.
func StatusOf(err error) int {
	var se *Error
	for e := err; errors.As(e, &se); e = se.Err {
		if se.Status != 0 {
			return se.Status
		}
	}
	return 0
}

// Message returns the caller-facing message for err: the Detail of the
// outermost classified error when it has one, otherwise err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) && se.Detail != "" {
		if se.Err != nil {
			return fmt.Sprintf("%s: %v", se.Detail, se.Err)
		}
		return se.Detail
	}
	return err.Error()
}

// IsTransient reports whether err warrants invalidating the active model and
// probing for another one.
func IsTransient(err error) bool {
	switch KindOf(err) {
	case KindQuotaExceeded, KindModelUnavailable:
		return true
	}
	return false
}

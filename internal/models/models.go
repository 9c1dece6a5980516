package models

import (
	"time"
)

// ExtractionMethod tags which extraction path produced the text.
type ExtractionMethod string

const (
	MethodEmbeddedText   ExtractionMethod = "embedded-text"
	MethodOCRImage       ExtractionMethod = "ocr-image"
	MethodOCRPDFFallback ExtractionMethod = "ocr-pdf-fallback"
)

// UploadedDocument is the request-scoped upload. It is never written to disk.
type UploadedDocument struct {
	Bytes     []byte
	MediaType string
	FileName  string
	Size      int64
}

// ExtractionResult is the text recovered from an upload and how it was recovered.
type ExtractionResult struct {
	Text   string           `json:"text"`
	Method ExtractionMethod `json:"method"`
}

// SummaryResult is the generated summary and the backend model that wrote it.
type SummaryResult struct {
	Text  string `json:"summary"`
	Model string `json:"model"`
}

// NarrationResult is synthesized speech for a summary.
type NarrationResult struct {
	Audio       []byte `json:"-"`
	AudioBase64 string `json:"audioBase64"`
	MimeType    string `json:"mimeType"`
	Path        string `json:"audioPath,omitempty"` // public path, empty when not persisted
}

// PipelineResponse is the only artifact returned to a /api/scan caller.
// Pointer fields serialize as null when narration was skipped or failed.
type PipelineResponse struct {
	Success        bool             `json:"success"`
	ExtractedText  string           `json:"extractedText"`
	OCRMethod      ExtractionMethod `json:"ocrMethod"`
	Summary        string           `json:"summary"`
	Model          string           `json:"model"`
	AudioBase64    *string          `json:"audioBase64"`
	AudioPath      *string          `json:"audioPath"`
	MimeType       *string          `json:"mimeType"`
	FileName       string           `json:"fileName"`
	Language       string           `json:"language"`
	ProcessingTime string           `json:"processingTime"`
}

// ChatTurn is one message of a legal-assistant conversation.
type ChatTurn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// VaultDocument is an archived scan as stored by the vault collaborator.
type VaultDocument struct {
	ID            string    `db:"id" json:"id"`
	FileName      string    `db:"file_name" json:"fileName"`
	Summary       string    `db:"summary" json:"summary"`
	ExtractedText string    `db:"extracted_text" json:"extractedText"`
	Language      string    `db:"language" json:"language"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
	"github.com/markdave123-py/LegalScan/internal/logging"
	"github.com/markdave123-py/LegalScan/internal/models"
)

const (
	uploadField       = "document"
	multipartOverhead = 1 << 20
)

type ScanPipeline interface {
	Run(ctx context.Context, doc *models.UploadedDocument) (*models.PipelineResponse, error)
	MaxUploadBytes() int64
	TooLargeMessage() string
}

type ScanHandler struct {
	pipeline ScanPipeline
	logger   *slog.Logger
}

func NewScanHandler(p ScanPipeline, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{pipeline: p, logger: logging.Component(logger, "scan-handler")}
}

type scanErrorResponse struct {
	Success        bool    `json:"success"`
	Error          string  `json:"error"`
	ProcessingTime string  `json:"processingTime,omitempty"`
	ExtractedText  *string `json:"extractedText,omitempty"`
}

// Scan handles POST /api/scan. The upload is read into memory only.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit := h.pipeline.MaxUploadBytes()

	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit + multipartOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.uploadError(w, start, http.StatusRequestEntityTooLarge, h.pipeline.TooLargeMessage())
			return
		}
		h.uploadError(w, start, http.StatusBadRequest, fmt.Sprintf("Upload error: %v", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if errors.Is(err, http.ErrMissingFile) {
		h.uploadError(w, start, http.StatusBadRequest, "No file uploaded. Please upload a PDF or image file.")
		return
	}
	if err != nil {
		h.uploadError(w, start, http.StatusBadRequest, fmt.Sprintf("Upload error: %v", err))
		return
	}
	defer file.Close()

	if header.Size > limit {
		h.uploadError(w, start, http.StatusRequestEntityTooLarge, h.pipeline.TooLargeMessage())
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		h.uploadError(w, start, http.StatusBadRequest, fmt.Sprintf("Upload error: %v", err))
		return
	}

	doc := &models.UploadedDocument{
		Bytes:     data,
		MediaType: header.Header.Get("Content-Type"),
		FileName:  filepath.Base(header.Filename),
		Size:      header.Size,
	}

	resp, err := h.pipeline.Run(r.Context(), doc)
	if err != nil {
		h.writeScanError(w, resp, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ScanHandler) writeScanError(w http.ResponseWriter, resp *models.PipelineResponse, err error) {
	kind := scanerr.KindOf(err)
	body := scanErrorResponse{Error: scanerr.Message(err)}
	if resp != nil {
		body.ProcessingTime = resp.ProcessingTime
		if kind == scanerr.KindUnreadable {
			text := resp.ExtractedText
			body.ExtractedText = &text
		}
	}
	writeJSON(w, StatusForKind(kind), body)
}

func (h *ScanHandler) uploadError(w http.ResponseWriter, start time.Time, status int, msg string) {
	h.logger.Warn("upload rejected", "status", status, "error", msg)
	writeJSON(w, status, scanErrorResponse{
		Error:          msg,
		ProcessingTime: fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
	})
}

package core

import (
	"context"
	"io"

	"github.com/markdave123-py/LegalScan/internal/models"
)

// VaultStore is the archive collaborator. It stores scan results verbatim.
type VaultStore interface {
	Archive(ctx context.Context, doc *models.VaultDocument) error
	List(ctx context.Context, limit int) ([]models.VaultDocument, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
}

// AudioStore persists narration audio and returns the public path it is served at.
type AudioStore interface {
	Save(ctx context.Context, name string, data []byte, mimeType string) (publicPath string, err error)
}

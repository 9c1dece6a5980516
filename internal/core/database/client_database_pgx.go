package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/LegalScan/internal/config"
	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/models"
)

var ErrNotFound = errors.New("vault document not found")

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// DatabaseClient is the Postgres-backed vault. It stores what it is given and
// never derives or rewrites scan results.
type DatabaseClient struct {
	db *sql.DB
}

var _ core.VaultStore = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	dsn, err := buildDSN(cfg.DatabaseURL, cfg.SslCertPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if logger != nil {
		logger.Info("vault database ready")
	}
	return &DatabaseClient{db: db}, nil
}

// buildDSN appends CA verification to the URL when a certificate is given.
func buildDSN(rawURL, certPath string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("DATABASE_URL is empty")
	}
	if certPath == "" {
		return rawURL, nil
	}
	if _, err := os.Stat(certPath); err != nil {
		return "", fmt.Errorf("ssl cert not accessible at %q: %w", certPath, err)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", certPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Archive inserts doc, filling ID and CreatedAt when they are empty.
func (c *DatabaseClient) Archive(ctx context.Context, doc *models.VaultDocument) error {
	if doc == nil {
		return errors.New("nil vault document")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if strings.TrimSpace(doc.Language) == "" {
		doc.Language = "English"
	}

	const q = `
		INSERT INTO vault_documents (id, file_name, summary, extracted_text, language, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.FileName, doc.Summary, doc.ExtractedText, doc.Language, doc.CreatedAt); err != nil {
		return fmt.Errorf("archive document: %w", err)
	}
	return nil
}

// List returns the newest documents first.
func (c *DatabaseClient) List(ctx context.Context, limit int) ([]models.VaultDocument, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	const q = `
		SELECT id, file_name, summary, extracted_text, language, created_at
		FROM vault_documents
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := c.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := []models.VaultDocument{}
	for rows.Next() {
		var d models.VaultDocument
		if err := rows.Scan(&d.ID, &d.FileName, &d.Summary, &d.ExtractedText, &d.Language, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := c.db.ExecContext(ctx, `DELETE FROM vault_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

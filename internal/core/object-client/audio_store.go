package objectclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/logging"
)

// AudioRoute is the public path prefix narration files are served under.
const AudioRoute = "/uploads/audio"

// LocalAudioStore writes narration audio under a directory served statically.
// Files are never overwritten; a name collision gets a random suffix.
type LocalAudioStore struct {
	dir string
}

var _ core.AudioStore = (*LocalAudioStore)(nil)

func NewLocalAudioStore(dir string) *LocalAudioStore {
	return &LocalAudioStore{dir: dir}
}

func (s *LocalAudioStore) Save(_ context.Context, name string, data []byte, _ string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}

	name = filepath.Base(name)
	written, err := s.create(name, data)
	if errors.Is(err, fs.ErrExist) {
		ext := filepath.Ext(name)
		name = strings.TrimSuffix(name, ext) + "_" + uuid.NewString()[:8] + ext
		written, err = s.create(name, data)
	}
	if err != nil {
		return "", err
	}
	return path.Join(AudioRoute, written), nil
}

func (s *LocalAudioStore) create(name string, data []byte) (string, error) {
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write audio %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close audio %s: %w", name, err)
	}
	return name, nil
}

// MirroredAudioStore saves locally and copies the same bytes to object
// storage. Mirror failures are logged and never fail the save.
type MirroredAudioStore struct {
	primary core.AudioStore
	objects core.ObjectClient
	bucket  string
	prefix  string
	logger  *slog.Logger
}

var _ core.AudioStore = (*MirroredAudioStore)(nil)

func NewMirroredAudioStore(primary core.AudioStore, objects core.ObjectClient, bucket string, logger *slog.Logger) *MirroredAudioStore {
	return &MirroredAudioStore{
		primary: primary,
		objects: objects,
		bucket:  bucket,
		prefix:  "audio",
		logger:  logging.Component(logger, "audio-mirror"),
	}
}

func (m *MirroredAudioStore) Save(ctx context.Context, name string, data []byte, mimeType string) (string, error) {
	public, err := m.primary.Save(ctx, name, data, mimeType)
	if err != nil {
		return "", err
	}

	key := path.Join(m.prefix, path.Base(public))
	url, err := m.objects.UploadFile(ctx, m.bucket, key, bytes.NewReader(data), mimeType)
	if err != nil {
		m.logger.Warn("audio mirror upload failed", "key", key, "error", err)
		return public, nil
	}
	m.logger.Debug("audio mirrored", "url", url)
	return public, nil
}

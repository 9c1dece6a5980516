package narrator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
	"github.com/markdave123-py/LegalScan/internal/logging"
	"github.com/markdave123-py/LegalScan/internal/models"
)

const (
	MaxTextChars = 5000
	minTextChars = 5
)

var ErrTextTooShort = errors.New("text is too short for audio generation")

// Narrator reads summaries aloud. Store may be nil, in which case audio is
// only returned inline.
type Narrator struct {
	tts    core.SpeechSynthesizer
	store  core.AudioStore
	logger *slog.Logger
	now    func() time.Time
}

func New(tts core.SpeechSynthesizer, store core.AudioStore, logger *slog.Logger) *Narrator {
	return &Narrator{tts: tts, store: store, logger: logging.Component(logger, "narrator"), now: time.Now}
}

// Speak synthesizes text without persisting it.
func (n *Narrator) Speak(ctx context.Context, text string) (*models.NarrationResult, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTextChars {
		return nil, scanerr.Wrap(scanerr.KindSynthesis, "narrate", "Text is too short for audio generation", ErrTextTooShort)
	}
	text = truncate(text, MaxTextChars)

	start := time.Now()
	audio, mime, err := n.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	n.logger.Info("audio generated", "chars", utf8.RuneCountInString(text), "bytes", len(audio), "elapsed", time.Since(start).Round(100*time.Millisecond))

	return &models.NarrationResult{
		Audio:       audio,
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		MimeType:    mime,
	}, nil
}

// Narrate synthesizes text and saves it as scan_<unix-millis>.mp3. A storage
// failure keeps the inline audio and leaves Path empty.
func (n *Narrator) Narrate(ctx context.Context, text string) (*models.NarrationResult, error) {
	res, err := n.Speak(ctx, text)
	if err != nil {
		return nil, err
	}
	if n.store == nil {
		return res, nil
	}

	name := fmt.Sprintf("scan_%d.mp3", n.now().UnixMilli())
	path, err := n.store.Save(ctx, name, res.Audio, res.MimeType)
	if err != nil {
		n.logger.Warn("audio not persisted", "file", name, "error", err)
		return res, nil
	}
	res.Path = path
	return res, nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

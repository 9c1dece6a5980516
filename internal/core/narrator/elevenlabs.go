package narrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"
	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
	DefaultModelID = "eleven_multilingual_v2"
	MimeTypeMPEG   = "audio/mpeg"

	maxErrorBody = 64 << 10
)

// APIError is a non-2xx reply from the speech backend, body kept verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ElevenLabs API returned %d: %s", e.StatusCode, e.Body)
}

type ElevenLabsConfig struct {
	BaseURL string
	VoiceID string
	ModelID string
	APIKey  string
	Timeout time.Duration
}

// ElevenLabsClient implements core.SpeechSynthesizer against the ElevenLabs
// text-to-speech REST API.
type ElevenLabsClient struct {
	baseURL    string
	voiceID    string
	modelID    string
	apiKey     string
	httpClient *http.Client
}

var _ core.SpeechSynthesizer = (*ElevenLabsClient)(nil)

func NewElevenLabsClient(cfg ElevenLabsConfig) *ElevenLabsClient {
	c := &ElevenLabsClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		voiceID: cfg.VoiceID,
		modelID: cfg.ModelID,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.voiceID == "" {
		c.voiceID = DefaultVoiceID
	}
	if c.modelID == "" {
		c.modelID = DefaultModelID
	}
	if c.httpClient.Timeout == 0 {
		c.httpClient.Timeout = 60 * time.Second
	}
	return c
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	const op = "elevenlabs"
	if c.apiKey == "" {
		return nil, "", scanerr.New(scanerr.KindInvalidCredential, op, "ElevenLabs API key is not configured")
	}

	body, err := json.Marshal(synthesisRequest{
		Text:          text,
		ModelID:       c.modelID,
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.75},
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal tts payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.voiceID, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", MimeTypeMPEG)
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", scanerr.Wrap(scanerr.KindSynthesis, op, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(payload)}
		return nil, "", &scanerr.Error{Kind: scanerr.KindSynthesis, Op: op, Status: resp.StatusCode, Err: apiErr}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", scanerr.Wrap(scanerr.KindSynthesis, op, "read audio", err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" || !strings.HasPrefix(mime, "audio/") {
		mime = MimeTypeMPEG
	}
	return audio, mime, nil
}

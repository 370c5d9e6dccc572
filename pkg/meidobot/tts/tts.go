// Package tts provides text-to-speech synthesis via the OpenAI speech
// API. Audio can be fetched as one complete buffer or streamed in
// fixed-size chunks as the provider produces them.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"
)

// streamChunkSize is the read granularity for streamed audio.
const streamChunkSize = 2048

// maxInputLen is the speech endpoint's input character cap.
const maxInputLen = 4096

// ChunkFunc receives one audio fragment of a streamed synthesis. A
// non-nil error aborts the stream.
type ChunkFunc func(chunk []byte) error

// Provider is the interface for speech synthesis backends.
type Provider interface {
	// Synthesize converts text to one complete encoded audio buffer.
	// Returns the audio bytes and their MIME type.
	Synthesize(ctx context.Context, text string) ([]byte, string, error)

	// SynthesizeStream converts text to audio delivered incrementally
	// through fn. fn is called once per chunk in production order;
	// the stream is complete when SynthesizeStream returns nil.
	SynthesizeStream(ctx context.Context, text string, fn ChunkFunc) error
}

// Config configures the speech synthesis client.
type Config struct {
	// BaseURL is the OpenAI-compatible endpoint base URL.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the provider.
	APIKey string `yaml:"api_key"`

	// Model is the synthesis model.
	Model string `yaml:"model"`

	// Voice selects the speaker.
	Voice string `yaml:"voice"`

	// Format is the output encoding ("pcm", "opus", "mp3", ...).
	// The voice playback pipeline expects "pcm".
	Format string `yaml:"format"`

	// Speed is the speech rate multiplier. Zero means provider default.
	Speed float64 `yaml:"speed"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Model:  "tts-1",
		Voice:  "nova",
		Format: "pcm",
		Speed:  0.9,
	}
}

// Client implements Provider against the OpenAI speech API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a speech synthesis client.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "tts-1"
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger.With("component", "tts"),
	}
}

// request opens the speech endpoint and returns the response body
// stream. The caller owns closing it.
func (c *Client) request(ctx context.Context, text string) (io.ReadCloser, error) {
	// The speech endpoint caps input length. The cut must land on a
	// rune boundary or multibyte text would be sent truncated mid-rune.
	if len(text) > maxInputLen {
		cut := maxInputLen - 3
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}

	payload := map[string]any{
		"model":           c.cfg.Model,
		"input":           text,
		"voice":           c.cfg.Voice,
		"response_format": c.cfg.Format,
	}
	if c.cfg.Speed > 0 {
		payload["speed"] = c.cfg.Speed
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tts: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tts: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts: API request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, fmt.Errorf("tts: API returned %d: %s", resp.StatusCode, string(errBody))
	}
	return resp.Body, nil
}

// Synthesize converts text to one complete encoded audio buffer.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	body, err := c.request(ctx, text)
	if err != nil {
		return nil, "", err
	}
	defer body.Close()

	audio, err := io.ReadAll(body)
	if err != nil {
		return nil, "", fmt.Errorf("tts: reading audio: %w", err)
	}
	return audio, mimeFor(c.cfg.Format), nil
}

// SynthesizeStream converts text to audio delivered incrementally in
// arrival order. Each network read suspends until the provider has
// produced the next fragment.
func (c *Client) SynthesizeStream(ctx context.Context, text string, fn ChunkFunc) error {
	body, err := c.request(ctx, text)
	if err != nil {
		return err
	}
	defer body.Close()

	buf := make([]byte, streamChunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if cbErr := fn(chunk); cbErr != nil {
				return fmt.Errorf("tts: chunk callback: %w", cbErr)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("tts: reading stream: %w", err)
		}
	}
}

// mimeFor maps an output format to its MIME type.
func mimeFor(format string) string {
	switch format {
	case "mp3":
		return "audio/mpeg"
	case "opus":
		return "audio/ogg"
	case "wav":
		return "audio/wav"
	case "pcm":
		return "audio/pcm"
	default:
		return "application/octet-stream"
	}
}

// Compile-time interface verification.
var _ Provider = (*Client)(nil)

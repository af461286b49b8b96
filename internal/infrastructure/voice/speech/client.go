package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
	"github.com/kirillkom/market-brief-agent/internal/core/ports"
)

const (
	defaultModel  = "tts-1"
	defaultVoice  = "alloy"
	defaultFormat = "mp3"
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Voice   string
}

// Client renders narrative text to audio through an OpenAI-compatible
// speech endpoint and stores the result as an artifact. Synthesize
// returns the storage key of the saved audio.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	voice      string
	httpClient *http.Client
	storage    ports.ObjectStorage
}

func New(cfg Config, storage ports.ObjectStorage) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, domain.WrapError(domain.ErrConfiguration, "speech client",
			errors.New("base url is required"))
	}
	if storage == nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "speech client",
			errors.New("artifact storage is required"))
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	voice := cfg.Voice
	if voice == "" {
		voice = defaultVoice
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      model,
		voice:      voice,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		storage:    storage,
	}, nil
}

func (c *Client) Synthesize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "synthesize", errors.New("empty text"))
	}

	payload, err := json.Marshal(map[string]any{
		"model":           c.model,
		"input":           text,
		"voice":           c.voice,
		"response_format": defaultFormat,
	})
	if err != nil {
		return "", fmt.Errorf("marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("speech status: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	key := fmt.Sprintf("voice/%s.%s", uuid.NewString(), defaultFormat)
	if err := c.storage.Save(ctx, key, resp.Body); err != nil {
		return "", fmt.Errorf("store audio artifact: %w", err)
	}
	return key, nil
}

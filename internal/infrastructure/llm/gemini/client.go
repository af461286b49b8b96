package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
)

const defaultModel = "gemini-2.0-flash"

type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

// Client talks to the Gemini API and implements both the ticker
// resolver and the narrative generator ports: both are prompt-only
// views over the same chat model.
type Client struct {
	genai       *genai.Client
	model       string
	temperature float32
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.WrapError(domain.ErrConfiguration, "gemini client",
			errors.New("api key is required"))
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}

	return &Client{
		genai:       client,
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

// ResolveTickers asks the model for a comma-separated ticker list and
// keeps only tokens that look like real symbols. The caller owns the
// fallback behavior for errors and empty results.
func (c *Client) ResolveTickers(ctx context.Context, query string) ([]string, error) {
	text, err := c.generate(ctx, tickerPrompt(query))
	if err != nil {
		return nil, fmt.Errorf("resolve tickers: %w", err)
	}
	return ParseTickerList(text), nil
}

// GenerateBrief renders the narrative for one run summary.
func (c *Client) GenerateBrief(ctx context.Context, summary domain.BriefSummary) (string, error) {
	text, err := c.generate(ctx, briefPrompt(summary))
	if err != nil {
		return "", fmt.Errorf("generate brief: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					out.WriteString(part.Text)
				}
			}
			if out.Len() > 0 {
				break
			}
		}
	}
	if out.Len() == 0 {
		return "", errors.New("empty model response")
	}
	return out.String(), nil
}

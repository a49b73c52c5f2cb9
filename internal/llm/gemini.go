package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	// DefaultModel is fast and handles documents well.
	DefaultModel = "gemini-2.5-flash"

	inlineTemperature     = 0.1
	inlineMaxOutputTokens = 256
)

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Gemini implements Generator against the Gemini API.
type Gemini struct {
	models  *genai.Models
	model   string
	timeout time.Duration
}

var _ Generator = (*Gemini)(nil)

// NewGemini creates a client for the Gemini developer API.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	slog.InfoContext(ctx, "Initialized Gemini client", "model", model, "timeout", cfg.Timeout)

	return &Gemini{
		models:  client.Models,
		model:   model,
		timeout: cfg.Timeout,
	}, nil
}

// Generate sends the prompt, plus the inline document when present, and
// returns the trimmed reply text. Inline requests use a low temperature and
// a short output budget since only a single figure is expected back.
func (g *Gemini) Generate(ctx context.Context, in Input) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var (
		parts  []*genai.Part
		config *genai.GenerateContentConfig
	)
	if in.HasData() {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: in.MIMEType, Data: in.Data},
		})
		config = &genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](inlineTemperature),
			MaxOutputTokens: inlineMaxOutputTokens,
		}
	}
	parts = append(parts, &genai.Part{Text: in.Prompt})

	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Package ai talks to an OpenAI-compatible chat completion endpoint.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/julianstephens/neurozen/internal/constants"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/logger"
)

type Config struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// Client generates text with a bounded timeout. Every failure, including an
// empty completion, wraps ErrGenerationFailed.
type Client struct {
	model       llms.Model
	timeout     time.Duration
	temperature float64
}

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI API key is not configured (run 'neurozen keyring set --ai')")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.DefaultAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultAIModel
	}

	llm, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}
	return NewWithModel(llm, cfg.Timeout), nil
}

// NewWithModel wraps an existing model.
func NewWithModel(model llms.Model, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = constants.DefaultAITimeout
	}
	return &Client{model: model, timeout: timeout, temperature: 0.7}
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, llms.WithTemperature(c.temperature))
	if err != nil {
		logger.Warn("Text generation failed", "error", err, "elapsed", time.Since(start))
		return "", fmt.Errorf("%w: %w", apperrors.ErrGenerationFailed, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: empty completion", apperrors.ErrGenerationFailed)
	}

	logger.Debug("Text generated", "chars", len(out), "elapsed", time.Since(start))
	return out, nil
}

package gemini

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"strings"
	"text/template"
	"time"

	"google.golang.org/genai"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

//go:embed prompt.tmpl
var defaultPrompt string

const systemInstruction = "You are a supportive mood journaling assistant. " +
	"You never give medical advice and you always answer in JSON."

// Config holds the settings New needs.
type Config struct {
	APIKey string
	Model  string
	// PromptTemplatePath overrides the built-in prompt. The template sees
	// the entry as {{.Text}}.
	PromptTemplatePath string
	MaxRetries         int
	RetryDelay         time.Duration
}

// contentGenerator is the part of the genai client the classifier uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Classifier implements types.Classifier with Gemini. It is safe for
// concurrent use.
type Classifier struct {
	logger     *slog.Logger
	generator  contentGenerator
	model      string
	prompt     *template.Template
	maxRetries int
	retryDelay time.Duration
}

var _ types.Classifier = (*Classifier)(nil)

type promptData struct {
	Text string
}

// responseSchema is the JSON shape requested from the model.
type responseSchema struct {
	Sentiment string `json:"sentiment"`
	Insight   string `json:"insight"`
	Habit     string `json:"habit"`
}

// New creates a Classifier backed by the Gemini API.
func New(ctx context.Context, logger *slog.Logger, cfg Config) (*Classifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}
	return newClassifier(logger, cfg, client.Models)
}

func newClassifier(logger *slog.Logger, cfg Config, generator contentGenerator) (*Classifier, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max retries cannot be negative", ErrInvalidConfig)
	}

	source := defaultPrompt
	if cfg.PromptTemplatePath != "" {
		content, err := os.ReadFile(cfg.PromptTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				ErrInvalidConfig, cfg.PromptTemplatePath, err)
		}
		source = string(content)
	}
	prompt, err := template.New("mood").Option("missingkey=error").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	return &Classifier{
		logger:     logger,
		generator:  generator,
		model:      cfg.Model,
		prompt:     prompt,
		maxRetries: cfg.MaxRetries,
		retryDelay: retryDelay,
	}, nil
}

// Classify asks the model for the mood of text.
func (c *Classifier) Classify(ctx context.Context, text string) (types.Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return types.Analysis{}, types.ErrEmptyText
	}

	prompt, err := c.createPrompt(text)
	if err != nil {
		return types.Analysis{}, err
	}

	reply, err := c.callWithRetry(ctx, prompt)
	if err != nil {
		return types.Analysis{}, err
	}

	sentiment, err := types.ParseSentiment(strings.ToLower(strings.TrimSpace(reply.Sentiment)))
	if err != nil {
		return types.Analysis{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return types.Analysis{
		Sentiment: sentiment,
		Insight:   strings.TrimSpace(reply.Insight),
		Habit:     strings.TrimSpace(reply.Habit),
	}, nil
}

func (c *Classifier) createPrompt(text string) (string, error) {
	var buf bytes.Buffer
	if err := c.prompt.Execute(&buf, promptData{Text: text}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

func (c *Classifier) generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"sentiment": {
					Type: genai.TypeString,
					Enum: []string{string(types.Happy), string(types.Sad), string(types.Neutral)},
				},
				"insight": {Type: genai.TypeString},
				"habit":   {Type: genai.TypeString},
			},
			Required: []string{"sentiment", "insight", "habit"},
		},
	}
}

// callWithRetry calls the model up to maxRetries+1 times. API errors are
// retried with backoff; an unusable reply or a safety block is returned at
// once.
func (c *Classifier) callWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	contents := genai.Text(prompt)
	config := c.generateConfig()

	for attempt := 0; ; attempt++ {
		c.logger.DebugContext(ctx, "calling gemini",
			"attempt", attempt+1,
			"max_attempts", c.maxRetries+1)

		resp, err := c.generator.GenerateContent(ctx, c.model, contents, config)
		if err == nil {
			reply, perr := parseResponse(resp)
			if perr != nil {
				c.logger.WarnContext(ctx, "permanent gemini error, not retrying", "error", perr)
				return nil, perr
			}
			return reply, nil
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransientFailure, ctx.Err())
		}
		c.logger.ErrorContext(ctx, "gemini call failed", "attempt", attempt+1, "error", err)

		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				ErrTransientFailure, c.maxRetries, err)
		}

		delay := c.backoff(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ErrTransientFailure, ctx.Err())
		}
	}
}

// backoff returns retryDelay * 2^attempt scaled by a jitter in [0.5, 1).
func (c *Classifier) backoff(attempt int) time.Duration {
	base := float64(c.retryDelay) * math.Pow(2, float64(attempt))
	return time.Duration(base * (0.5 + rand.Float64()*0.5))
}

func parseResponse(resp *genai.GenerateContentResponse) (*responseSchema, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, ErrContentBlocked
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	var reply responseSchema
	if err := json.Unmarshal([]byte(text.String()), &reply); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
	}
	return &reply, nil
}

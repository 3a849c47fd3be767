// Package remote classifies entries by calling a moodlog analyze server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// AnalyzePath is the endpoint the server exposes.
const AnalyzePath = "/api/analyze"

// maxResponseBytes caps how much of a reply is read.
const maxResponseBytes = 1 << 20

// ErrInvalidURL is returned by New when the base URL is unusable.
var ErrInvalidURL = errors.New("invalid analyze server URL")

// StatusError is a non-2xx reply from the server.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("analyze server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("analyze server returned %d: %s", e.StatusCode, e.Message)
}

// Classifier implements types.Classifier over HTTP.
type Classifier struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Classifier) { cl.client = c }
}

// New returns a Classifier posting to baseURL + AnalyzePath. Timeouts come
// from the caller's context; timeout bounds a single request when positive.
func New(baseURL string, timeout time.Duration, logger *slog.Logger, opts ...Option) (*Classifier, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}

	if logger == nil {
		logger = slog.Default()
	}
	c := &Classifier{
		endpoint: u.String() + AnalyzePath,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Classify sends text to the server and returns its analysis.
func (c *Classifier) Classify(ctx context.Context, text string) (types.Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return types.Analysis{}, types.ErrEmptyText
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return types.Analysis{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return types.Analysis{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return types.Analysis{}, fmt.Errorf("post %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return types.Analysis{}, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("analyze request finished",
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return types.Analysis{}, &StatusError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	var raw struct {
		Sentiment string `json:"sentiment"`
		Insight   string `json:"insight"`
		Habit     string `json:"habit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.Analysis{}, fmt.Errorf("decode response: %w", err)
	}
	sentiment, err := types.ParseSentiment(strings.ToLower(strings.TrimSpace(raw.Sentiment)))
	if err != nil {
		return types.Analysis{}, err
	}
	return types.Analysis{Sentiment: sentiment, Insight: raw.Insight, Habit: raw.Habit}, nil
}

var _ types.Classifier = (*Classifier)(nil)

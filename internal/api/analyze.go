package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mesh-intelligence/moodlog/internal/logger"
	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// MaxTextLength is the longest entry the endpoint accepts, in characters.
const MaxTextLength = 10000

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

// AnalyzeResponse is the reply of POST /api/analyze.
type AnalyzeResponse struct {
	Sentiment types.Sentiment `json:"sentiment"`
	Insight   string          `json:"insight"`
	Habit     string          `json:"habit"`
}

// AnalyzeHandler runs a classifier for HTTP callers.
type AnalyzeHandler struct {
	classifier types.Classifier
	timeout    time.Duration
	logger     *slog.Logger
}

// NewAnalyzeHandler returns a handler that gives each classification at most
// timeout.
func NewAnalyzeHandler(classifier types.Classifier, timeout time.Duration, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{classifier: classifier, timeout: timeout, logger: logger}
}

// Analyze handles POST /api/analyze.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := validate.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	analysis, err := h.classifier.Classify(ctx, req.Text)
	if err == nil && !analysis.Sentiment.Valid() {
		err = types.ErrInvalidSentiment
	}
	if err != nil {
		logger.FromContext(r.Context()).Error("analysis failed", "error", err)
		switch {
		case errors.Is(err, types.ErrEmptyText):
			RespondWithError(w, r, http.StatusBadRequest, "text is required")
		case errors.Is(err, context.DeadlineExceeded):
			RespondWithError(w, r, http.StatusGatewayTimeout, "analysis timed out")
		default:
			RespondWithError(w, r, http.StatusBadGateway, "failed to analyze mood")
		}
		return
	}

	RespondWithJSON(w, r, http.StatusOK, AnalyzeResponse{
		Sentiment: analysis.Sentiment,
		Insight:   analysis.Insight,
		Habit:     analysis.Habit,
	})
}

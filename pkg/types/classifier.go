package types

import (
	"context"
	"errors"
)

// Analysis is the classifier's verdict on one piece of text. Only Sentiment
// is kept with the entry; Insight and Habit are shown once.
type Analysis struct {
	Sentiment Sentiment `json:"sentiment"`
	Insight   string    `json:"insight"`
	Habit     string    `json:"habit"`
}

// Classifier turns raw entry text into an Analysis. Implementations must be
// safe for concurrent use and must honor ctx cancellation.
type Classifier interface {
	Classify(ctx context.Context, text string) (Analysis, error)
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, text string) (Analysis, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, text string) (Analysis, error) {
	return f(ctx, text)
}

// ErrClassification wraps every failure of the classification step:
// transport errors, timeouts and results with an unknown sentiment.
var ErrClassification = errors.New("classification failed")

package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Sentiment is the emotional tone assigned to an entry.
type Sentiment string

// Sentiment values, in the order analytics reports them.
const (
	Happy   Sentiment = "happy"
	Sad     Sentiment = "sad"
	Neutral Sentiment = "neutral"
)

// Sentiments lists every sentiment in reporting order.
var Sentiments = []Sentiment{Happy, Sad, Neutral}

// Valid reports whether s is one of the known sentiments.
func (s Sentiment) Valid() bool {
	switch s {
	case Happy, Sad, Neutral:
		return true
	}
	return false
}

// ParseSentiment converts a string to a Sentiment.
// Returns ErrInvalidSentiment for unknown values.
func ParseSentiment(s string) (Sentiment, error) {
	v := Sentiment(s)
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSentiment, s)
	}
	return v, nil
}

// UnmarshalJSON rejects sentiments outside the known set so a stored entry
// can never carry one.
func (s *Sentiment) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseSentiment(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Entry is one journaled mood record. Entries are never edited; they are
// created and eventually deleted.
type Entry struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Text      string    `json:"text"`
	Sentiment Sentiment `json:"sentiment"`
}

// Order selects how a collection of entries is presented.
type Order int

const (
	// Chronological lists the oldest entry first. This is the stored order.
	Chronological Order = iota
	// Reverse lists the newest entry first.
	Reverse
)

// String returns the flag spelling of the order.
func (o Order) String() string {
	if o == Reverse {
		return "reverse"
	}
	return "chronological"
}

// ParseOrder converts a flag value to an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "chronological", "oldest", "asc":
		return Chronological, nil
	case "reverse", "newest", "desc":
		return Reverse, nil
	}
	return Chronological, fmt.Errorf("unknown order %q", s)
}

// Entry errors.
var (
	ErrInvalidSentiment = errors.New("invalid sentiment")
	ErrIndexOutOfRange  = errors.New("entry position out of range")
	ErrEmptyText        = errors.New("entry text must not be empty")
)

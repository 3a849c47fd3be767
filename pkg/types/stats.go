package types

import "time"

// Summary holds the derived counts over a collection of entries.
type Summary struct {
	Total    int       `json:"total_entries"`
	Happy    int       `json:"happy_count"`
	Sad      int       `json:"sad_count"`
	Neutral  int       `json:"neutral_count"`
	Dominant Sentiment `json:"dominant_mood"`
}

// Count returns the number of entries with sentiment s.
func (s Summary) Count(sentiment Sentiment) int {
	switch sentiment {
	case Happy:
		return s.Happy
	case Sad:
		return s.Sad
	case Neutral:
		return s.Neutral
	}
	return 0
}

// Share returns the percentage (0-100) of entries with sentiment s.
// An empty summary has a zero share for every sentiment.
func (s Summary) Share(sentiment Sentiment) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Count(sentiment)) / float64(s.Total) * 100
}

// DayActivity is one bucket of the weekly activity histogram.
type DayActivity struct {
	Day   time.Time `json:"day"`   // Midnight of the calendar day.
	Label string    `json:"label"` // Abbreviated weekday name.
	Count int       `json:"count"`
}

// MoodCount is one slice of the mood distribution.
type MoodCount struct {
	Sentiment Sentiment `json:"sentiment"`
	Count     int       `json:"count"`
}

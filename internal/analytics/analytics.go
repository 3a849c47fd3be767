// Package analytics derives statistics from a snapshot of entries. Every
// function is pure and total: any slice of entries, including nil, yields a
// result.
package analytics

import (
	"time"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// WeekDays is the number of buckets in the weekly histogram.
const WeekDays = 7

// LabelFunc names a calendar day in the weekly histogram.
type LabelFunc func(day time.Time) string

// ShortWeekday labels a day with its three-letter English weekday, "Mon".
func ShortWeekday(day time.Time) string {
	return day.Weekday().String()[:3]
}

// Summarize counts entries per sentiment. Dominant is the sentiment with a
// strictly higher count than both others; any tie, including an empty
// journal, is neutral. An entry with an unknown sentiment counts as neutral,
// so Happy+Sad+Neutral always equals Total.
func Summarize(entries []types.Entry) types.Summary {
	s := types.Summary{Total: len(entries)}
	for _, e := range entries {
		switch e.Sentiment {
		case types.Happy:
			s.Happy++
		case types.Sad:
			s.Sad++
		default:
			s.Neutral++
		}
	}

	s.Dominant = types.Neutral
	switch {
	case s.Happy > s.Sad && s.Happy > s.Neutral:
		s.Dominant = types.Happy
	case s.Sad > s.Happy && s.Sad > s.Neutral:
		s.Dominant = types.Sad
	}
	return s
}

// WeeklyActivity counts entries per calendar day for the seven days ending
// on ref's day, oldest first. Days are taken in ref's location.
func WeeklyActivity(entries []types.Entry, ref time.Time) []types.DayActivity {
	return WeeklyActivityLabeled(entries, ref, ShortWeekday)
}

// WeeklyActivityLabeled is WeeklyActivity with a custom day label.
func WeeklyActivityLabeled(entries []types.Entry, ref time.Time, label LabelFunc) []types.DayActivity {
	loc := ref.Location()
	y, m, d := ref.Date()

	buckets := make([]types.DayActivity, WeekDays)
	index := make(map[civilDate]int, WeekDays)
	for i := range buckets {
		day := time.Date(y, m, d-(WeekDays-1-i), 0, 0, 0, 0, loc)
		buckets[i] = types.DayActivity{Day: day, Label: label(day)}
		index[dateOf(day)] = i
	}

	for _, e := range entries {
		if i, ok := index[dateOf(e.Date.In(loc))]; ok {
			buckets[i].Count++
		}
	}
	return buckets
}

// Distribution lists the sentiments that occur at least once, in the order
// happy, sad, neutral.
func Distribution(entries []types.Entry) []types.MoodCount {
	s := Summarize(entries)
	out := make([]types.MoodCount, 0, len(types.Sentiments))
	for _, sentiment := range types.Sentiments {
		if n := s.Count(sentiment); n > 0 {
			out = append(out, types.MoodCount{Sentiment: sentiment, Count: n})
		}
	}
	return out
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{y, m, d}
}

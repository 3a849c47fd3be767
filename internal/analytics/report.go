package analytics

import (
	"time"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// Share is one row of the mood breakdown.
type Share struct {
	Sentiment types.Sentiment `json:"sentiment"`
	Count     int             `json:"count"`
	Percent   float64         `json:"percent"`
}

// Report bundles every statistic shown on the dashboard.
type Report struct {
	Summary      types.Summary       `json:"summary"`
	Weekly       []types.DayActivity `json:"weekly"`
	Distribution []types.MoodCount   `json:"distribution"`
	Breakdown    []Share             `json:"breakdown"`
}

// BuildReport computes a Report for entries as seen at ref. The breakdown
// always lists all three sentiments.
func BuildReport(entries []types.Entry, ref time.Time) Report {
	summary := Summarize(entries)

	breakdown := make([]Share, 0, len(types.Sentiments))
	for _, s := range types.Sentiments {
		breakdown = append(breakdown, Share{
			Sentiment: s,
			Count:     summary.Count(s),
			Percent:   summary.Share(s),
		})
	}

	return Report{
		Summary:      summary,
		Weekly:       WeeklyActivity(entries, ref),
		Distribution: Distribution(entries),
		Breakdown:    breakdown,
	}
}

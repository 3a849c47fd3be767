package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/moodlog/internal/analytics"
	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// barWidth is the length of a full histogram bar.
const barWidth = 20

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize your moods",
		Long:  "Show entry counts, the dominant mood, the mood breakdown and the last seven days of activity.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			entries, err := a.journal.List(cmd.Context(), types.Chronological)
			if err != nil {
				return sysError(err)
			}
			report := analytics.BuildReport(entries, time.Now())

			if a.flags.jsonMode {
				return printJSON(cmd, report)
			}
			return printReport(cmd, s.Name, report)
		},
	}
}

func printReport(cmd *cobra.Command, name string, r analytics.Report) error {
	if err := printLines(cmd,
		fmt.Sprintf("Mood summary for %s", name),
		"",
		fmt.Sprintf("Entries:       %d", r.Summary.Total),
		fmt.Sprintf("Dominant mood: %s", r.Summary.Dominant),
		"",
		"Breakdown",
	); err != nil {
		return err
	}

	rows := [][]string{{"MOOD", "COUNT", "SHARE", ""}}
	for _, b := range r.Breakdown {
		rows = append(rows, []string{
			string(b.Sentiment),
			strconv.Itoa(b.Count),
			fmt.Sprintf("%.0f%%", b.Percent),
			bar(b.Count, r.Summary.Total),
		})
	}
	if err := printTable(cmd, rows); err != nil {
		return err
	}

	if err := printLines(cmd, "", "Last 7 days"); err != nil {
		return err
	}
	peak := 0
	for _, d := range r.Weekly {
		peak = max(peak, d.Count)
	}
	rows = rows[:0]
	for _, d := range r.Weekly {
		rows = append(rows, []string{
			d.Label,
			d.Day.Format("Jan 2"),
			strconv.Itoa(d.Count),
			bar(d.Count, peak),
		})
	}
	return printTable(cmd, rows)
}

// bar renders n out of total as a bar of at most barWidth cells.
func bar(n, total int) string {
	if total == 0 || n == 0 {
		return ""
	}
	cells := n * barWidth / total
	if cells == 0 {
		cells = 1
	}
	return strings.Repeat("#", cells)
}

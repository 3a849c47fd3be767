package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// writeResult is the JSON output of write.
type writeResult struct {
	Entry    types.Entry    `json:"entry"`
	Analysis types.Analysis `json:"analysis"`
}

func newWriteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "write [text...]",
		Short: "Journal a new entry",
		Long: "Classify the text and save it as a new entry. Without arguments the\n" +
			"text is read from stdin.\n\n" +
			"Example:\n  moodlog write \"Long walk by the river, felt calm.\"\n  echo \"rough day\" | moodlog write",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.session(); err != nil {
				return err
			}

			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return sysError(fmt.Errorf("read entry: %w", err))
				}
				text = string(data)
			}
			text = strings.TrimSpace(text)
			if text == "" {
				return userError(types.ErrEmptyText)
			}

			classifier, err := a.classifier(cmd.Context())
			if err != nil {
				return err
			}
			entry, analysis, err := a.journal.Create(cmd.Context(), text, classifier)
			if err != nil {
				return sysError(err)
			}

			if a.flags.jsonMode {
				return printJSON(cmd, writeResult{Entry: entry, Analysis: analysis})
			}
			return printLines(cmd,
				"Saved entry from "+formatDate(entry.Date)+".",
				"",
				"Mood:    "+string(analysis.Sentiment),
				"Insight: "+analysis.Insight,
				"Habit:   "+analysis.Habit,
			)
		},
	}
}

// orderFlag registers --order, defaulting to newest first.
func orderFlag(cmd *cobra.Command, order *string) {
	cmd.Flags().StringVar(order, "order", types.Reverse.String(), "entry order: reverse (newest first) or chronological")
}

func parseOrder(s string) (types.Order, error) {
	o, err := types.ParseOrder(s)
	if err != nil {
		return o, userError(err)
	}
	return o, nil
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		order string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journal entries",
		Long: "List entries, newest first by default. The # column is the position\n" +
			"'moodlog delete' takes with the same --order.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.session(); err != nil {
				return err
			}
			o, err := parseOrder(order)
			if err != nil {
				return err
			}
			if limit < 0 {
				return userError(errors.New("--limit must not be negative"))
			}

			entries, err := a.journal.List(cmd.Context(), o)
			if err != nil {
				return sysError(err)
			}
			total := len(entries)
			if limit > 0 && limit < len(entries) {
				entries = entries[:limit]
			}

			if a.flags.jsonMode {
				return printJSON(cmd, entries)
			}
			if len(entries) == 0 {
				return printLines(cmd, "No entries yet. Write one with 'moodlog write'.")
			}
			rows := [][]string{{"#", "DATE", "MOOD", "TEXT"}}
			for i, e := range entries {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					formatDate(e.Date),
					string(e.Sentiment),
					truncate(e.Text, 60),
				})
			}
			if err := printTable(cmd, rows); err != nil {
				return err
			}
			return printLines(cmd, fmt.Sprintf("Total: %d entr%s", total, plural(total, "y", "ies")))
		},
	}
	orderFlag(cmd, &order)
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many entries (0 = all)")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var order string
	cmd := &cobra.Command{
		Use:   "delete <position>",
		Short: "Delete one entry",
		Long: "Delete the entry at a 1-based position as listed by 'moodlog history'\n" +
			"with the same --order.\n\n" +
			"Example:\n  moodlog delete 1          # newest entry\n  moodlog delete 1 --order chronological  # oldest entry",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.session(); err != nil {
				return err
			}
			o, err := parseOrder(order)
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return userError(fmt.Errorf("invalid position %q: must be a positive number", args[0]))
			}

			removed, err := a.journal.Delete(cmd.Context(), n-1, o)
			if err != nil {
				if errors.Is(err, types.ErrIndexOutOfRange) {
					return userError(fmt.Errorf("no entry at position %d: %w", n, err))
				}
				return sysError(err)
			}

			if a.flags.jsonMode {
				return printJSON(cmd, removed)
			}
			return printLines(cmd, fmt.Sprintf("Deleted entry from %s: %s", formatDate(removed.Date), truncate(removed.Text, 60)))
		},
	}
	orderFlag(cmd, &order)
	return cmd
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

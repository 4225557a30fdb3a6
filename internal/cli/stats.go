package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"introxpection-quiz/internal/config"
	"introxpection-quiz/internal/domain"
	"introxpection-quiz/internal/infra/sqlite"
	"github.com/spf13/cobra"
)

// NewStatsCmd prints the completions recorded by play.
func NewStatsCmd(configPath *string) *cobra.Command {
	var (
		quizID string
		dbPath string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show local completion statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			store, err := sqlite.Open(cmd.Context(), firstNonEmpty(dbPath, cfg.SQLite.Path))
			if err != nil {
				return err
			}
			defer store.Close()
			return printStats(cmd.Context(), cmd.OutOrStdout(), store, quizID)
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "only show this quiz")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite stats file")
	return cmd
}

func printStats(ctx context.Context, out io.Writer, store *sqlite.StatsStore, quizID string) error {
	ids := []string{quizID}
	if quizID == "" {
		var err error
		if ids, err = store.QuizIDs(ctx); err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No completions recorded yet.")
		return nil
	}
	for _, id := range ids {
		stats, err := store.Stats(ctx, id)
		if err != nil {
			return err
		}
		writeStats(out, stats)
	}
	return nil
}

func writeStats(out io.Writer, stats domain.QuizStats) {
	fmt.Fprintf(out, "%s: %d completion(s)\n", stats.QuizID, stats.Completions)
	for _, id := range sortedKeys(stats.Results) {
		n := stats.Results[id]
		pct := 0.0
		if stats.Completions > 0 {
			pct = float64(n) * 100 / float64(stats.Completions)
		}
		fmt.Fprintf(out, "  %-16s %4d  %5.1f%%\n", id, n, pct)
	}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/config"
	"github.com/vovakirdan/termania/internal/registry"
	"github.com/vovakirdan/termania/internal/storage"
)

var (
	flagScoresLimit  int
	flagScoresClear  bool
	flagScoresRecent bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [beatmap]",
	Short: "Show local results",
	Long: `Display the best local results for every difficulty in a chart file,
or the most recent plays across all charts with --recent.

Results are only recorded when a database is configured (--db or
storage.enabled in the config).

Examples:
  termania scores song.osz --db ~/.termania/results.db
  termania scores --recent
  termania scores chart.osu --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of results to show")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete the stored results for the chart")
	scoresCmd.Flags().BoolVar(&flagScoresRecent, "recent", false, "Show the most recent plays across all charts")
}

func runScores(cmd *cobra.Command, args []string) {
	cfg, _, err := loadConfig(config.Overrides{})
	if err != nil {
		fail("%v", err)
	}

	path := dbPath(cfg)
	if path == "" {
		fail("no results database configured; pass --db or set storage.enabled")
	}
	store, err := storage.Open(path)
	if err != nil {
		fail("opening results database: %v", err)
	}
	defer store.Close()

	if flagScoresRecent {
		printRecent(store)
		return
	}
	if len(args) == 0 {
		fail("a beatmap is required unless --recent is set")
	}

	maps, err := registry.Load(args[0])
	if err != nil {
		fail("%v", err)
	}

	for _, bm := range maps {
		if flagScoresClear {
			if err := store.ClearResults(bm.Key()); err != nil {
				fail("%v", err)
			}
			fmt.Printf("Cleared results for %s\n", bm.Title())
			continue
		}
		printTop(store, bm)
	}
}

func printTop(store *storage.Store, bm *beatmap.Beatmap) {
	fmt.Printf("Results - %s\n", bm.Title())
	fmt.Println()

	results, err := store.TopResults(bm.Key(), flagScoresLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving results: %v\n", err)
		return
	}
	if len(results) == 0 {
		fmt.Println("  No results recorded yet.")
		fmt.Println()
		return
	}

	fmt.Printf("  %-4s  %-10s  %-8s  %-5s  %-6s  %s\n", "Rank", "Score", "Acc", "Grade", "Combo", "Date")
	fmt.Printf("  %-4s  %-10s  %-8s  %-5s  %-6s  %s\n", "----", "-----", "---", "-----", "-----", "----")
	for i, r := range results {
		fmt.Printf("  %-4d  %-10d  %-8s  %-5s  %-6d  %s\n",
			i+1, r.Score, fmt.Sprintf("%.2f%%", r.Accuracy), r.Grade, r.MaxCombo,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}

	if stats, err := store.Stats(bm.Key()); err == nil {
		fmt.Println()
		fmt.Printf("  Plays: %d  Best: %d  Best accuracy: %.2f%%\n", stats.Plays, stats.BestScore, stats.BestAccuracy)
	}
	fmt.Println()
}

func printRecent(store *storage.Store) {
	results, err := store.RecentResults(flagScoresLimit)
	if err != nil {
		fail("retrieving results: %v", err)
	}
	if len(results) == 0 {
		fmt.Println("No results recorded yet.")
		return
	}

	fmt.Println("Recent plays")
	fmt.Println()
	for _, r := range results {
		state := "cleared"
		if r.Failed {
			state = "failed"
		}
		fmt.Printf("  %s  %-40s  %-10d  %-5s  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), truncateTitle(r.Title, 40), r.Score, r.Grade, state)
	}
}

func truncateTitle(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

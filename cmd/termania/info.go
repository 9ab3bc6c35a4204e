package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/termania/internal/registry"
)

var infoCmd = &cobra.Command{
	Use:   "info <beatmap>",
	Short: "Show the difficulties in a chart file",
	Long: `List every playable difficulty in a chart file with its key count,
note counts, length and starting BPM.

Examples:
  termania info song.osz
  termania info chart.sm`,
	Args: cobra.ExactArgs(1),
	Run:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) {
	maps, err := registry.Load(args[0])
	if err != nil {
		fail("%v", err)
	}

	first := maps[0].Metadata
	fmt.Printf("%s - %s\n", first.Artist, first.Title)
	if first.Creator != "" {
		fmt.Printf("Charted by %s\n", first.Creator)
	}
	fmt.Println()

	fmt.Printf("  %-3s  %-24s  %-4s  %6s  %6s  %6s  %6s\n", "#", "Difficulty", "Keys", "Notes", "Holds", "Length", "BPM")
	fmt.Printf("  %-3s  %-24s  %-4s  %6s  %6s  %6s  %6s\n", "-", "----------", "----", "-----", "-----", "------", "---")
	for i, bm := range maps {
		fmt.Printf("  %-3d  %-24s  %-4s  %6d  %6d  %6s  %6.1f\n",
			i+1,
			bm.Metadata.Version,
			fmt.Sprintf("%dK", bm.KeyCount),
			len(bm.Notes),
			bm.HoldCount(),
			formatLength(bm.TotalLength()),
			bm.InitialBPM(),
		)
	}

	if a := maps[0].AudioPath; a != "" {
		fmt.Println()
		fmt.Printf("Audio: %s\n", a)
	}
}

func formatLength(ms int64) string {
	s := ms / 1000
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

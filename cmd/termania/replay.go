package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/config"
	"github.com/vovakirdan/termania/internal/judge"
	"github.com/vovakirdan/termania/internal/registry"
	"github.com/vovakirdan/termania/internal/session"
)

var replayCmd = &cobra.Command{
	Use:   "replay <beatmap> <trace>",
	Short: "Re-judge a recorded input trace",
	Long: `Run a trace written by 'termania play --record' through the judge again
and print the result. Judging is deterministic, so an unchanged config
reproduces the recorded play exactly; a changed config shows how the same
inputs would have scored under it.

Examples:
  termania play chart.osu --record trace.yaml
  termania replay chart.osu trace.yaml`,
	Args: cobra.ExactArgs(2),
	Run:  runReplay,
}

func runReplay(cmd *cobra.Command, args []string) {
	cfg, _, err := loadConfig(config.Overrides{})
	if err != nil {
		fail("%v", err)
	}

	maps, err := registry.Load(args[0])
	if err != nil {
		fail("%v", err)
	}
	tf, err := readTrace(args[1])
	if err != nil {
		fail("%v", err)
	}
	bm := traceBeatmap(maps, tf)
	if bm == nil {
		fail("trace was recorded on %q, which is not in %s", tf.Beatmap, args[0])
	}

	opts, err := cfg.SessionOptions(log.New(io.Discard))
	if err != nil {
		fail("%v", err)
	}
	s, err := session.Replay(bm, tf.Ticks, opts)
	if err != nil {
		fail("%v", err)
	}

	sum := s.Summary()
	fmt.Printf("%s\n", bm.Title())
	fmt.Printf("State:     %s\n", s.State())
	fmt.Printf("Score:     %d\n", sum.Score)
	fmt.Printf("Accuracy:  %.2f%%\n", sum.Accuracy)
	fmt.Printf("Grade:     %s\n", sum.Grade)
	fmt.Printf("Max combo: %d\n", sum.MaxCombo)
	fmt.Printf("Hit error: %+.1f ms ± %.1f\n", sum.MeanError, sum.StdDev)
	for t := judge.Marv; t <= judge.Miss; t++ {
		fmt.Printf("  %-6s %d\n", t, sum.Counts[t])
	}
}

func traceBeatmap(maps []*beatmap.Beatmap, tf traceFile) *beatmap.Beatmap {
	for _, bm := range maps {
		if bm.Key() == tf.Beatmap {
			return bm
		}
	}
	return nil
}

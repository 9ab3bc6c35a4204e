package main

import (
	"fmt"
	"os"

	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/platform/tui"
)

// menuLoop shows the difficulty picker until the player quits. A chart file
// with one difficulty goes straight to play.
func (p *player) menuLoop(maps []*beatmap.Beatmap) error {
	if len(maps) == 1 {
		_, err := p.playLoop(maps[0])
		return err
	}

	title := maps[0].Metadata.Title
	if artist := maps[0].Metadata.Artist; artist != "" {
		title = artist + " - " + title
	}

	for {
		menuResult, err := tui.RunMenu(title, maps, p.store, p.runtime)
		if err != nil {
			return err
		}

		// Update config with any size changes
		p.runtime = menuResult.Config

		if menuResult.Quit {
			return nil
		}

		if menuResult.WantsScoreboard {
			goBack, sbErr := tui.RunScoreboard(maps, p.store, p.runtime.ScreenW, p.runtime.ScreenH)
			if sbErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", sbErr)
			}
			if goBack {
				continue
			}
			return nil
		}

		if menuResult.Beatmap == nil {
			return nil
		}

		quit, err := p.playLoop(menuResult.Beatmap)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/termania/internal/core"
)

var plainStyle = lipgloss.NewStyle()

// styleFor returns the lipgloss style that draws a cell color.
func styleFor(c core.Color) lipgloss.Style {
	code := c.ANSI()
	if code == "" {
		return plainStyle
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(code))
}

// RenderScreen converts a Screen buffer to a styled string. Adjacent cells
// of one color share a single styled run.
func RenderScreen(s *core.Screen) string {
	w, h := s.Width(), s.Height()
	styles := make(map[core.Color]lipgloss.Style)

	var sb strings.Builder
	sb.Grow(w*h*2 + h)
	run := make([]rune, 0, w)

	for y := range h {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < w; {
			color := s.GetCell(x, y).Color
			run = run[:0]
			for ; x < w; x++ {
				cell := s.GetCell(x, y)
				if cell.Color != color {
					break
				}
				run = append(run, cell.Rune)
			}

			style, ok := styles[color]
			if !ok {
				style = styleFor(color)
				styles[color] = style
			}
			sb.WriteString(style.Render(string(run)))
		}
	}
	return sb.String()
}

package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/termania/internal/input"
)

// KeyMapper translates Bubble Tea key messages to lanes and menu actions.
// Lane bindings win over everything but ctrl+c, so any key may be bound.
type KeyMapper struct {
	lanes *input.Keymap
}

// NewKeyMapper creates a key mapper over the given lane bindings. lanes may
// be nil for menus that never deliver lane presses.
func NewKeyMapper(lanes *input.Keymap) *KeyMapper {
	return &KeyMapper{lanes: lanes}
}

// PlayAction is what a key means during play.
type PlayAction int

const (
	PlayActionNone PlayAction = iota
	PlayActionLane
	PlayActionAbort
)

// MapKey translates a key message during play. For PlayActionLane the lane
// index is returned as well.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (PlayAction, int) {
	key := msg.String()
	if key == "ctrl+c" {
		return PlayActionAbort, 0
	}
	if km.lanes != nil {
		if lane, ok := km.lanes.Lane(key); ok {
			return PlayActionLane, lane
		}
	}
	if key == "esc" {
		return PlayActionAbort, 0
	}
	return PlayActionNone, 0
}

// Lanes returns the bound lane count, or 0 without bindings.
func (km *KeyMapper) Lanes() int {
	if km.lanes == nil {
		return 0
	}
	return km.lanes.Lanes()
}

// Label returns the key label drawn under a lane.
func (km *KeyMapper) Label(lane int) string {
	if km.lanes == nil {
		return ""
	}
	return km.lanes.Label(lane)
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	}
	return MenuActionNone
}

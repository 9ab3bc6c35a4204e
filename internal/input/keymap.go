package input

import (
	"fmt"
	"strings"
)

// Keymap binds one key label per lane.
type Keymap struct {
	labels []string
	lanes  map[string]int
}

// NewKeymap builds a keymap from lane labels, left to right. Labels are
// case-insensitive and must be unique.
func NewKeymap(labels []string) (*Keymap, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("input: empty keymap")
	}
	km := &Keymap{lanes: make(map[string]int, len(labels))}
	for i, l := range labels {
		l = normalize(l)
		if l == "" {
			return nil, fmt.Errorf("input: lane %d has no key", i)
		}
		if prev, dup := km.lanes[l]; dup {
			return nil, fmt.Errorf("input: key %q bound to lanes %d and %d", l, prev, i)
		}
		km.lanes[l] = i
		km.labels = append(km.labels, l)
	}
	return km, nil
}

// Lane returns the column bound to a key label.
func (k *Keymap) Lane(label string) (int, bool) {
	c, ok := k.lanes[normalize(label)]
	return c, ok
}

// Label returns the key label of a column.
func (k *Keymap) Label(column int) string {
	if column < 0 || column >= len(k.labels) {
		return ""
	}
	return k.labels[column]
}

// Lanes is the number of bound columns.
func (k *Keymap) Lanes() int { return len(k.labels) }

// normalize lowercases a label. Space may be written "space" or " ".
func normalize(label string) string {
	if label == " " {
		return label
	}
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "space" {
		return " "
	}
	return label
}

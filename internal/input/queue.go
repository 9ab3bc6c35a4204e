// Package input carries key events from their capture goroutines to the
// session tick. It has no terminal dependencies.
package input

import (
	"sort"
	"sync/atomic"
	"time"
)

// DefaultQueueSize holds well over one second of mashing on seven keys.
const DefaultQueueSize = 256

// Event is one edge of one lane key, stamped when it was captured.
type Event struct {
	Column  int
	Pressed bool
	At      time.Time
}

// Queue is a bounded multi-producer, single-consumer event buffer.
type Queue struct {
	ch      chan Event
	dropped atomic.Int64
}

// NewQueue creates a queue holding up to size events.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Event, size)}
}

// Push enqueues without blocking. A full queue drops the event and
// returns false.
func (q *Queue) Push(e Event) bool {
	select {
	case q.ch <- e:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Drain removes every event queued at the time of the call and returns
// them ordered by capture time. Events with equal timestamps keep their
// arrival order. An empty queue returns nil immediately.
func (q *Queue) Drain() []Event {
	n := len(q.ch)
	if n == 0 {
		return nil
	}
	events := make([]Event, 0, n)
	for range n {
		select {
		case e := <-q.ch:
			events = append(events, e)
		default:
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.Before(events[j].At)
	})
	return events
}

// Len is the number of queued events.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Dropped counts events rejected because the queue was full.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}

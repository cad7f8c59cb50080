// Package notify delivers human-readable engine messages.
package notify

import (
	"sync"
	"time"
)

type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

func (s Severity) IsValid() bool {
	return s == SeverityDefault || s == SeverityDestructive
}

type Notification struct {
	Title       string
	Description string
	Severity    Severity
	At          time.Time
}

// Sink receives notifications. Implementations must not block the caller for
// long; Notify has no error return.
type Sink interface {
	Notify(Notification)
}

// Fanout forwards every notification to each sink in order.
type Fanout []Sink

func (f Fanout) Notify(n Notification) {
	for _, s := range f {
		if s != nil {
			s.Notify(n)
		}
	}
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification)

func (fn SinkFunc) Notify(n Notification) { fn(n) }

const DefaultFeedSize = 50

// Feed keeps the most recent notifications in memory for display. It is safe
// for concurrent use.
type Feed struct {
	mu    sync.Mutex
	items []Notification
	limit int
	total uint64
}

func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = DefaultFeedSize
	}
	return &Feed{limit: limit}
}

func (f *Feed) Notify(n Notification) {
	if !n.Severity.IsValid() {
		n.Severity = SeverityDefault
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if len(f.items) > f.limit {
		f.items = append(f.items[:0:0], f.items[len(f.items)-f.limit:]...)
	}
	f.total++
}

// Recent returns up to n notifications, newest first.
func (f *Feed) Recent(n int) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n <= 0 || n > len(f.items) {
		n = len(f.items)
	}
	out := make([]Notification, 0, n)
	for i := len(f.items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, f.items[i])
	}
	return out
}

// Latest returns the newest notification.
func (f *Feed) Latest() (Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == 0 {
		return Notification{}, false
	}
	return f.items[len(f.items)-1], true
}

// Total counts every notification ever received, including evicted ones.
func (f *Feed) Total() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

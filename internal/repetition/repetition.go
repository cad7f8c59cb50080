// Package repetition decides whether completed units may be reset for another
// cycle and whether a subobjective is inside a cooldown window.
package repetition

import (
	"errors"
	"fmt"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
)

var (
	ErrNotRepeatable        = errors.New("repetition: not repeatable")
	ErrRepetitionsExhausted = errors.New("repetition: maximum repetitions reached")
	ErrCooldownActive       = errors.New("repetition: cooldown active")
)

// CooldownError reports how long a subobjective stays locked.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: %s remaining", ErrCooldownActive, FormatRemaining(e.Remaining))
}

func (e *CooldownError) Unwrap() error { return ErrCooldownActive }

// CanRepeat ignores IsRepeatable; callers check it through CheckRepeat.
func CanRepeat(r model.Repetition) bool {
	return r.IsInfiniteLoop || r.MaxRepetitions == 0 || r.CurrentRepetitions < r.MaxRepetitions
}

func CheckRepeat(r model.Repetition) error {
	if !r.IsRepeatable {
		return ErrNotRepeatable
	}
	if !CanRepeat(r) {
		return fmt.Errorf("%w: %d/%d", ErrRepetitionsExhausted, r.CurrentRepetitions, r.MaxRepetitions)
	}
	return nil
}

// CheckObjectiveRepeat applies the repeat rule to an objective's completion
// counter. Objectives have no infinite loop flag.
func CheckObjectiveRepeat(o model.Objective) error {
	return CheckRepeat(model.Repetition{
		IsRepeatable:       o.IsRepeatable,
		MaxRepetitions:     o.MaxCompletions,
		CurrentRepetitions: o.CurrentCompletions,
	})
}

// CooldownRemaining is zero unless c has an open window that has not elapsed.
func CooldownRemaining(c model.Cooldown, now time.Time) time.Duration {
	if !c.Active() {
		return 0
	}
	remaining := c.Duration - now.Sub(c.StartedAt)
	if remaining <= 0 {
		return 0
	}
	return remaining
}

// CheckIncrement returns a *CooldownError when a positive increment must be
// rejected.
func CheckIncrement(c model.Cooldown, now time.Time) error {
	if remaining := CooldownRemaining(c, now); remaining > 0 {
		return &CooldownError{Remaining: remaining}
	}
	return nil
}

// StartWindow opens a window at now, kept to the millisecond precision the
// store round-trips.
func StartWindow(c model.Cooldown, now time.Time) model.Cooldown {
	c.StartedAt = now.Truncate(time.Millisecond)
	c.Progress = 0
	return c
}

func ClearWindow(c model.Cooldown) model.Cooldown {
	c.StartedAt = time.Time{}
	c.Progress = 0
	return c
}

// ExpiresAt is the instant an open window elapses.
func ExpiresAt(c model.Cooldown) (time.Time, bool) {
	if !c.Active() {
		return time.Time{}, false
	}
	return c.StartedAt.Add(c.Duration), true
}

// Progress is the elapsed share of the window in percent, clamped to [0, 100].
func Progress(c model.Cooldown, now time.Time) int {
	if !c.Active() || c.Duration <= 0 {
		return 0
	}
	elapsed := now.Sub(c.StartedAt)
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= c.Duration {
		return 100
	}
	return int(elapsed * 100 / c.Duration)
}

// Refresh recomputes the cached progress and closes the window once it reaches
// 100. The bool reports whether anything changed.
func Refresh(c model.Cooldown, now time.Time) (model.Cooldown, bool) {
	if !c.Active() {
		return c, false
	}
	progress := Progress(c, now)
	if progress >= 100 {
		return ClearWindow(c), true
	}
	if progress == c.Progress {
		return c, false
	}
	c.Progress = progress
	return c, true
}

// FormatRemaining renders d as "1h 2m 3s", "2m 3s" or "3s", rounding up to the
// whole second.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64((d + time.Second - 1) / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

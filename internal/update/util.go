package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/questd/internal/scheduler"
)

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func waitForExpiryCmd(ch <-chan scheduler.ExpiryEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return CooldownExpiredMsg{Event: ev}
	}
}

func cooldownTickCmd() tea.Cmd {
	return tea.Tick(cooldownTickInterval, func(t time.Time) tea.Msg {
		return CooldownTickMsg{At: t}
	})
}

// RunnerFor returns a job runner that hands fn to the program's update loop.
func RunnerFor(p *tea.Program) func(fn func()) {
	return func(fn func()) {
		p.Send(RunFuncMsg{Fn: fn})
	}
}

// Package player accumulates XP and gold and derives the player level.
package player

import "sync"

const (
	DefaultBaseXPPerLevel     = 3000
	DefaultXPIncreasePerLevel = 500
)

// Stats is the persisted player state.
type Stats struct {
	Level              int `json:"level"`
	XP                 int `json:"xp"`
	NextLevelXP        int `json:"nextLevelXp"`
	BaseXPPerLevel     int `json:"baseXpPerLevel"`
	XPIncreasePerLevel int `json:"xpIncreasePerLevel"`
	Gold               int `json:"gold"`
}

func DefaultStats() Stats {
	return NewStats(DefaultBaseXPPerLevel, DefaultXPIncreasePerLevel)
}

func NewStats(base, increase int) Stats {
	base = max(base, 1)
	increase = max(increase, 0)
	return Stats{
		Level:              1,
		NextLevelXP:        NextLevelXP(1, base, increase),
		BaseXPPerLevel:     base,
		XPIncreasePerLevel: increase,
	}
}

// NextLevelXP is the XP needed to leave level.
func NextLevelXP(level, base, increase int) int {
	return base + (max(level, 1)-1)*increase
}

// Ledger is safe for concurrent use. OnChange, when set, receives a copy of the
// stats after every change and runs with the lock released.
type Ledger struct {
	mu       sync.Mutex
	stats    Stats
	OnChange func(Stats)
}

func NewLedger(stats Stats) *Ledger {
	return &Ledger{stats: sanitize(stats)}
}

func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// AddXP adds amount and carries leftover XP across as many levels as it covers.
func (l *Ledger) AddXP(amount int) {
	if amount <= 0 {
		return
	}
	l.update(func(s *Stats) {
		s.XP += amount
		levelUp(s)
	})
}

func (l *Ledger) AddGold(amount int) {
	if amount <= 0 {
		return
	}
	l.update(func(s *Stats) { s.Gold += amount })
}

// RemoveGold never takes the balance below zero.
func (l *Ledger) RemoveGold(amount int) {
	if amount <= 0 {
		return
	}
	l.update(func(s *Stats) { s.Gold = max(0, s.Gold-amount) })
}

func (l *Ledger) SetBaseXPPerLevel(base int) {
	l.update(func(s *Stats) {
		s.BaseXPPerLevel = max(base, 1)
		s.NextLevelXP = NextLevelXP(s.Level, s.BaseXPPerLevel, s.XPIncreasePerLevel)
		levelUp(s)
	})
}

func (l *Ledger) SetXPIncreasePerLevel(increase int) {
	l.update(func(s *Stats) {
		s.XPIncreasePerLevel = max(increase, 0)
		s.NextLevelXP = NextLevelXP(s.Level, s.BaseXPPerLevel, s.XPIncreasePerLevel)
		levelUp(s)
	})
}

// levelUp spends XP on as many levels as it covers.
func levelUp(s *Stats) {
	for s.XP >= s.NextLevelXP {
		s.XP -= s.NextLevelXP
		s.Level++
		s.NextLevelXP = NextLevelXP(s.Level, s.BaseXPPerLevel, s.XPIncreasePerLevel)
	}
}

func (l *Ledger) update(fn func(*Stats)) {
	l.mu.Lock()
	fn(&l.stats)
	snapshot := l.stats
	hook := l.OnChange
	l.mu.Unlock()
	if hook != nil {
		hook(snapshot)
	}
}

func sanitize(s Stats) Stats {
	if s.Level < 1 {
		s.Level = 1
	}
	if s.BaseXPPerLevel < 1 {
		s.BaseXPPerLevel = DefaultBaseXPPerLevel
	}
	s.XPIncreasePerLevel = max(s.XPIncreasePerLevel, 0)
	s.XP = max(s.XP, 0)
	s.Gold = max(s.Gold, 0)
	if s.NextLevelXP <= 0 {
		s.NextLevelXP = NextLevelXP(s.Level, s.BaseXPPerLevel, s.XPIncreasePerLevel)
	}
	return s
}

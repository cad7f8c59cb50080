package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidType         = errors.New("model: invalid objective type")
	ErrInvalidTarget       = errors.New("model: target value must be positive")
	ErrValueOutOfRange     = errors.New("model: current value out of range")
	ErrNegativeReward      = errors.New("model: reward must be non-negative")
	ErrPhaseIndexRange     = errors.New("model: current phase index out of range")
	ErrCompletionMismatch  = errors.New("model: completion flag does not match children")
	ErrInvalidCooldown     = errors.New("model: cooldown duration must be positive")
	ErrInvalidRepetitions  = errors.New("model: max repetitions must be non-negative")
	ErrLegacyTypeMismatch  = errors.New("model: legacy progress does not match objective type")
	ErrDuplicateIdentifier = errors.New("model: duplicate id")
)

type ObjectiveType string

const (
	TypeCollection  ObjectiveType = "collection"
	TypeSteps       ObjectiveType = "steps"
	TypePercentage  ObjectiveType = "percentage"
	TypeKill        ObjectiveType = "kill"
	TypeResource    ObjectiveType = "resource"
	TypeDungeon     ObjectiveType = "dungeon"
	TypeAchievement ObjectiveType = "achievement"
	TypeCustom      ObjectiveType = "custom"
)

func (t ObjectiveType) IsValid() bool {
	switch t {
	case TypeCollection, TypeSteps, TypePercentage, TypeKill, TypeResource, TypeDungeon, TypeAchievement, TypeCustom:
		return true
	default:
		return false
	}
}

// RewardPair holds the flat and per-point amounts of one reward channel.
type RewardPair struct {
	PerCompletion int
	PerPoint      int
}

func (r RewardPair) IsZero() bool { return r.PerCompletion == 0 && r.PerPoint == 0 }

// Repetition describes how many reset cycles a phase or subobjective allows.
// MaxRepetitions of zero means unbounded.
type Repetition struct {
	IsRepeatable       bool
	IsInfiniteLoop     bool
	MaxRepetitions     int
	CurrentRepetitions int
}

// Cooldown is the per-point lockout of a subobjective. A zero StartedAt means no
// window is open.
type Cooldown struct {
	Enabled   bool
	Duration  time.Duration
	StartedAt time.Time
	Progress  int
}

func (c Cooldown) Active() bool { return c.Enabled && !c.StartedAt.IsZero() }

type Location struct {
	Zone        string
	Coordinates string
	Notes       string
}

type SubObjective struct {
	ID              string
	Name            string
	Description     string
	CurrentValue    int
	TargetValue     int
	Completed       bool
	XPReward        RewardPair
	GoldReward      RewardPair
	TotalGoldEarned int
	Repetition      Repetition
	Cooldown        Cooldown
	Location        *Location
}

type Phase struct {
	ID              string
	Name            string
	Description     string
	SubObjectives   []SubObjective
	Completed       bool
	XPReward        RewardPair
	GoldReward      RewardPair
	TotalGoldEarned int
	Repetition      Repetition
	TargetValue     int
	Location        *Location
}

// AllSubObjectivesCompleted reports whether every subobjective is completed. An
// empty phase counts as completed.
func (p Phase) AllSubObjectivesCompleted() bool {
	for _, sub := range p.SubObjectives {
		if !sub.Completed {
			return false
		}
	}
	return true
}

// FocusSubObjective returns the index of the first incomplete subobjective, or -1.
func (p Phase) FocusSubObjective() int {
	for i, sub := range p.SubObjectives {
		if !sub.Completed {
			return i
		}
	}
	return -1
}

func (p Phase) SubObjectiveIndex(id string) int {
	for i := range p.SubObjectives {
		if p.SubObjectives[i].ID == id {
			return i
		}
	}
	return -1
}

type Objective struct {
	ID                 string
	Name               string
	Description        string
	Category           string
	Type               ObjectiveType
	Phases             []Phase
	CurrentPhaseIndex  int
	Completed          bool
	IsRepeatable       bool
	MaxCompletions     int
	CurrentCompletions int
	XPReward           RewardPair
	GoldReward         RewardPair
	TotalGoldEarned    int
	Legacy             LegacyProgress
	ExpiresAt          *time.Time
	ProfileID          string
	ImageURL           string
	Location           *Location
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (o Objective) PhaseIndex(id string) int {
	for i := range o.Phases {
		if o.Phases[i].ID == id {
			return i
		}
	}
	return -1
}

// CurrentPhase returns the phase at CurrentPhaseIndex.
func (o Objective) CurrentPhase() (Phase, bool) {
	if o.CurrentPhaseIndex < 0 || o.CurrentPhaseIndex >= len(o.Phases) {
		return Phase{}, false
	}
	return o.Phases[o.CurrentPhaseIndex], true
}

func (o Objective) AllPhasesCompleted() bool {
	for _, p := range o.Phases {
		if !p.Completed {
			return false
		}
	}
	return true
}

// Expired reports whether the objective has an expiry at or before now.
func (o Objective) Expired(now time.Time) bool {
	return o.ExpiresAt != nil && !o.ExpiresAt.After(now)
}

// ProgressPercent is the share of completed phases, or the legacy ratio for
// objectives without phases.
func (o Objective) ProgressPercent() int {
	if len(o.Phases) > 0 {
		done := 0
		for _, p := range o.Phases {
			if p.Completed {
				done++
			}
		}
		return done * 100 / len(o.Phases)
	}
	if o.Completed {
		return 100
	}
	if o.Legacy != nil {
		return o.Legacy.Percent()
	}
	return 0
}

func (o Objective) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("model: objective id is required")
	}
	if strings.TrimSpace(o.Name) == "" {
		return errors.New("model: objective name is required")
	}
	if !o.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, o.Type)
	}
	if err := validateRewards(o.XPReward, o.GoldReward); err != nil {
		return fmt.Errorf("objective %s: %w", o.ID, err)
	}
	if o.MaxCompletions < 0 {
		return fmt.Errorf("%w: objective %s", ErrInvalidRepetitions, o.ID)
	}
	if o.Legacy != nil && !o.Legacy.Matches(o.Type) {
		return fmt.Errorf("%w: %q", ErrLegacyTypeMismatch, o.Type)
	}
	if len(o.Phases) == 0 {
		if o.CurrentPhaseIndex != 0 {
			return fmt.Errorf("%w: %d with no phases", ErrPhaseIndexRange, o.CurrentPhaseIndex)
		}
		return nil
	}
	if o.CurrentPhaseIndex < 0 || o.CurrentPhaseIndex >= len(o.Phases) {
		return fmt.Errorf("%w: %d of %d", ErrPhaseIndexRange, o.CurrentPhaseIndex, len(o.Phases))
	}
	seen := map[string]bool{o.ID: true}
	for _, p := range o.Phases {
		if seen[p.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateIdentifier, p.ID)
		}
		seen[p.ID] = true
		if err := p.validate(seen); err != nil {
			return err
		}
	}
	if o.Completed != o.AllPhasesCompleted() {
		return fmt.Errorf("%w: objective %s", ErrCompletionMismatch, o.ID)
	}
	return nil
}

func (p Phase) validate(seen map[string]bool) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("model: phase id is required")
	}
	if err := validateRewards(p.XPReward, p.GoldReward); err != nil {
		return fmt.Errorf("phase %s: %w", p.ID, err)
	}
	if p.Repetition.MaxRepetitions < 0 {
		return fmt.Errorf("%w: phase %s", ErrInvalidRepetitions, p.ID)
	}
	for _, sub := range p.SubObjectives {
		if seen[sub.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateIdentifier, sub.ID)
		}
		seen[sub.ID] = true
		if err := sub.Validate(); err != nil {
			return err
		}
	}
	if p.Completed != p.AllSubObjectivesCompleted() {
		return fmt.Errorf("%w: phase %s", ErrCompletionMismatch, p.ID)
	}
	return nil
}

func (s SubObjective) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("model: subobjective id is required")
	}
	if s.TargetValue <= 0 {
		return fmt.Errorf("%w: subobjective %s has %d", ErrInvalidTarget, s.ID, s.TargetValue)
	}
	if s.CurrentValue < 0 || s.CurrentValue > s.TargetValue {
		return fmt.Errorf("%w: subobjective %s has %d/%d", ErrValueOutOfRange, s.ID, s.CurrentValue, s.TargetValue)
	}
	if err := validateRewards(s.XPReward, s.GoldReward); err != nil {
		return fmt.Errorf("subobjective %s: %w", s.ID, err)
	}
	if s.Repetition.MaxRepetitions < 0 {
		return fmt.Errorf("%w: subobjective %s", ErrInvalidRepetitions, s.ID)
	}
	if s.Cooldown.Enabled && s.Cooldown.Duration <= 0 {
		return fmt.Errorf("%w: subobjective %s", ErrInvalidCooldown, s.ID)
	}
	return nil
}

func validateRewards(pairs ...RewardPair) error {
	for _, r := range pairs {
		if r.PerCompletion < 0 || r.PerPoint < 0 {
			return fmt.Errorf("%w: %+v", ErrNegativeReward, r)
		}
	}
	return nil
}

package model

import "encoding/json"

// LegacyProgress is the scalar progress of objectives created before phases
// existed. Exactly one case exists per legacy objective type.
type LegacyProgress interface {
	isLegacyProgress()
	// Matches reports whether the case belongs to the objective type.
	Matches(ObjectiveType) bool
	// Reset returns the same case with progress zeroed.
	Reset() LegacyProgress
	Percent() int
	clone() LegacyProgress
}

type CollectionItem struct {
	Name          string
	TargetAmount  int
	CurrentAmount int
}

type CollectionProgress struct {
	Items []CollectionItem
}

type StepProgress struct {
	Current int
	Total   int
}

type PercentageProgress struct {
	Current          int
	Target           int
	EstimatedMinutes int
}

type KillProgress struct {
	Current int
	Target  int
}

// CustomProgress carries free-form data for custom, resource, dungeon and
// achievement objectives.
type CustomProgress struct {
	Data json.RawMessage
}

func (CollectionProgress) isLegacyProgress() {}
func (StepProgress) isLegacyProgress()       {}
func (PercentageProgress) isLegacyProgress() {}
func (KillProgress) isLegacyProgress()       {}
func (CustomProgress) isLegacyProgress()     {}

func (CollectionProgress) Matches(t ObjectiveType) bool { return t == TypeCollection }
func (StepProgress) Matches(t ObjectiveType) bool       { return t == TypeSteps }
func (PercentageProgress) Matches(t ObjectiveType) bool { return t == TypePercentage }
func (KillProgress) Matches(t ObjectiveType) bool       { return t == TypeKill }

func (CustomProgress) Matches(t ObjectiveType) bool {
	switch t {
	case TypeCustom, TypeResource, TypeDungeon, TypeAchievement:
		return true
	default:
		return false
	}
}

func (c CollectionProgress) Reset() LegacyProgress {
	out := c.clone().(CollectionProgress)
	for i := range out.Items {
		out.Items[i].CurrentAmount = 0
	}
	return out
}

func (s StepProgress) Reset() LegacyProgress       { s.Current = 0; return s }
func (p PercentageProgress) Reset() LegacyProgress { p.Current = 0; return p }
func (k KillProgress) Reset() LegacyProgress       { k.Current = 0; return k }
func (c CustomProgress) Reset() LegacyProgress     { return c.clone() }

func (c CollectionProgress) Percent() int {
	target, current := 0, 0
	for _, item := range c.Items {
		target += item.TargetAmount
		current += min(item.CurrentAmount, item.TargetAmount)
	}
	return ratio(current, target)
}

func (s StepProgress) Percent() int { return ratio(s.Current, s.Total) }

func (p PercentageProgress) Percent() int {
	target := p.Target
	if target <= 0 {
		target = 100
	}
	return ratio(p.Current, target)
}

func (k KillProgress) Percent() int { return ratio(k.Current, k.Target) }
func (CustomProgress) Percent() int { return 0 }

func (s StepProgress) clone() LegacyProgress       { return s }
func (p PercentageProgress) clone() LegacyProgress { return p }
func (k KillProgress) clone() LegacyProgress       { return k }

func (c CollectionProgress) clone() LegacyProgress {
	items := make([]CollectionItem, len(c.Items))
	copy(items, c.Items)
	return CollectionProgress{Items: items}
}

func (c CustomProgress) clone() LegacyProgress {
	if c.Data == nil {
		return CustomProgress{}
	}
	data := make(json.RawMessage, len(c.Data))
	copy(data, c.Data)
	return CustomProgress{Data: data}
}

// NewLegacyProgress returns the empty case for t.
func NewLegacyProgress(t ObjectiveType) LegacyProgress {
	switch t {
	case TypeCollection:
		return CollectionProgress{}
	case TypeSteps:
		return StepProgress{}
	case TypePercentage:
		return PercentageProgress{Target: 100}
	case TypeKill:
		return KillProgress{}
	default:
		return CustomProgress{}
	}
}

// CloneLegacy deep-copies p; nil stays nil.
func CloneLegacy(p LegacyProgress) LegacyProgress {
	if p == nil {
		return nil
	}
	return p.clone()
}

func ratio(current, target int) int {
	if target <= 0 {
		return 0
	}
	if current <= 0 {
		return 0
	}
	if current >= target {
		return 100
	}
	return current * 100 / target
}

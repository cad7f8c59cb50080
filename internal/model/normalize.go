package model

import "time"

const (
	DefaultTargetValue      = 100
	DefaultCooldownDuration = 60 * time.Second
)

// Normalize fills creation defaults and re-derives every completion flag so the
// structural invariants hold. The returned objective shares no slices with o.
func Normalize(o Objective) Objective {
	if !o.Type.IsValid() {
		o.Type = TypeCustom
	}
	o.XPReward = clampReward(o.XPReward)
	o.GoldReward = clampReward(o.GoldReward)
	o.MaxCompletions = max(o.MaxCompletions, 0)
	o.CurrentCompletions = max(o.CurrentCompletions, 0)
	o.TotalGoldEarned = max(o.TotalGoldEarned, 0)

	if len(o.Phases) == 0 {
		o.Phases = nil
		o.CurrentPhaseIndex = 0
		if o.Legacy == nil || !o.Legacy.Matches(o.Type) {
			o.Legacy = NewLegacyProgress(o.Type)
		} else {
			o.Legacy = normalizeLegacy(o.Legacy)
		}
		return o
	}

	phases := make([]Phase, len(o.Phases))
	for i, p := range o.Phases {
		phases[i] = normalizePhase(p)
	}
	o.Phases = phases
	o.Legacy = CloneLegacy(o.Legacy)
	if o.Legacy != nil && !o.Legacy.Matches(o.Type) {
		o.Legacy = nil
	}
	o.CurrentPhaseIndex = min(max(o.CurrentPhaseIndex, 0), len(phases)-1)
	o.Completed = o.AllPhasesCompleted()
	return o
}

func normalizePhase(p Phase) Phase {
	p.XPReward = clampReward(p.XPReward)
	p.GoldReward = clampReward(p.GoldReward)
	p.TotalGoldEarned = max(p.TotalGoldEarned, 0)
	p.Repetition = normalizeRepetition(p.Repetition)
	if p.TargetValue <= 0 {
		p.TargetValue = DefaultTargetValue
	}
	if len(p.SubObjectives) > 0 {
		subs := make([]SubObjective, len(p.SubObjectives))
		for i, sub := range p.SubObjectives {
			subs[i] = NormalizeSubObjective(sub)
		}
		p.SubObjectives = subs
	} else {
		p.SubObjectives = nil
	}
	p.Completed = p.AllSubObjectivesCompleted()
	return p
}

// NormalizeSubObjective applies the subobjective defaults: a positive target, a
// clamped current value, a positive cooldown duration and a consistent
// completion flag.
func NormalizeSubObjective(s SubObjective) SubObjective {
	if s.TargetValue <= 0 {
		s.TargetValue = DefaultTargetValue
	}
	s.CurrentValue = min(max(s.CurrentValue, 0), s.TargetValue)
	if s.Completed {
		s.CurrentValue = s.TargetValue
	} else if s.CurrentValue >= s.TargetValue {
		s.Completed = true
	}
	s.XPReward = clampReward(s.XPReward)
	s.GoldReward = clampReward(s.GoldReward)
	s.TotalGoldEarned = max(s.TotalGoldEarned, 0)
	s.Repetition = normalizeRepetition(s.Repetition)
	if s.Cooldown.Duration <= 0 {
		s.Cooldown.Duration = DefaultCooldownDuration
	}
	s.Cooldown.Progress = min(max(s.Cooldown.Progress, 0), 100)
	if !s.Cooldown.Enabled {
		s.Cooldown.StartedAt = time.Time{}
	}
	return s
}

func normalizeRepetition(r Repetition) Repetition {
	r.MaxRepetitions = max(r.MaxRepetitions, 0)
	r.CurrentRepetitions = max(r.CurrentRepetitions, 0)
	return r
}

func normalizeLegacy(p LegacyProgress) LegacyProgress {
	switch v := p.clone().(type) {
	case CollectionProgress:
		for i := range v.Items {
			v.Items[i].TargetAmount = max(v.Items[i].TargetAmount, 0)
			v.Items[i].CurrentAmount = max(v.Items[i].CurrentAmount, 0)
		}
		return v
	case StepProgress:
		v.Total = max(v.Total, 0)
		v.Current = min(max(v.Current, 0), v.Total)
		return v
	case PercentageProgress:
		if v.Target <= 0 {
			v.Target = 100
		}
		v.Current = min(max(v.Current, 0), v.Target)
		return v
	case KillProgress:
		v.Target = max(v.Target, 0)
		v.Current = max(v.Current, 0)
		if v.Target > 0 {
			v.Current = min(v.Current, v.Target)
		}
		return v
	default:
		return v
	}
}

func clampReward(r RewardPair) RewardPair {
	return RewardPair{PerCompletion: max(r.PerCompletion, 0), PerPoint: max(r.PerPoint, 0)}
}

// AssignIDs fills every empty id in the tree using next.
func AssignIDs(o Objective, next func() string) Objective {
	if o.ID == "" {
		o.ID = next()
	}
	if len(o.Phases) == 0 {
		return o
	}
	phases := make([]Phase, len(o.Phases))
	for i, p := range o.Phases {
		if p.ID == "" {
			p.ID = next()
		}
		if len(p.SubObjectives) > 0 {
			subs := make([]SubObjective, len(p.SubObjectives))
			for j, sub := range p.SubObjectives {
				if sub.ID == "" {
					sub.ID = next()
				}
				subs[j] = sub
			}
			p.SubObjectives = subs
		}
		phases[i] = p
	}
	o.Phases = phases
	return o
}

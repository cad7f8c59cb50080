package model

import "time"

// CopySuffix is appended to the name of a cloned objective.
const CopySuffix = " (Copy)"

// CloneFresh deep-copies o with fresh ids at every level and every progress
// field zeroed. Reward configuration, repetition limits, cooldown durations and
// metadata are kept.
func CloneFresh(o Objective, next func() string) Objective {
	out := o
	out.ID = next()
	out.Name = o.Name + CopySuffix
	out.Completed = false
	out.CurrentPhaseIndex = 0
	out.CurrentCompletions = 0
	out.TotalGoldEarned = 0
	out.Location = cloneLocation(o.Location)
	if o.ExpiresAt != nil {
		at := *o.ExpiresAt
		out.ExpiresAt = &at
	}
	if o.Legacy != nil {
		out.Legacy = o.Legacy.Reset()
	}

	out.Phases = nil
	if len(o.Phases) > 0 {
		out.Phases = make([]Phase, len(o.Phases))
		for i, p := range o.Phases {
			out.Phases[i] = clonePhase(p, next)
		}
	}
	return out
}

func clonePhase(p Phase, next func() string) Phase {
	out := p
	out.ID = next()
	out.Completed = false
	out.TotalGoldEarned = 0
	out.Repetition.CurrentRepetitions = 0
	out.Location = cloneLocation(p.Location)
	out.SubObjectives = nil
	if len(p.SubObjectives) > 0 {
		out.SubObjectives = make([]SubObjective, len(p.SubObjectives))
		for i, sub := range p.SubObjectives {
			sub.ID = next()
			sub.CurrentValue = 0
			sub.Completed = false
			sub.TotalGoldEarned = 0
			sub.Repetition.CurrentRepetitions = 0
			sub.Cooldown.StartedAt = time.Time{}
			sub.Cooldown.Progress = 0
			sub.Location = cloneLocation(sub.Location)
			out.SubObjectives[i] = sub
		}
	}
	out.Completed = out.AllSubObjectivesCompleted()
	return out
}

func cloneLocation(l *Location) *Location {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

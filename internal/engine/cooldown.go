package engine

import (
	"slices"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/repetition"
	"github.com/sandeepkv93/questd/internal/scheduler"
)

// TickCooldowns refreshes the cached progress of every open cooldown window
// and closes the elapsed ones. It returns how many windows changed; calling it
// again with the same instant changes nothing.
func (e *Engine) TickCooldowns(now time.Time) int {
	var next []model.Objective
	changed := 0
	for i, o := range e.objectives {
		updated, n := refreshCooldowns(o, now)
		if n == 0 {
			continue
		}
		if next == nil {
			next = slices.Clone(e.objectives)
		}
		next[i] = updated
		changed += n
	}
	if changed == 0 {
		return 0
	}
	e.objectives = next
	e.persist()
	return changed
}

// ExpireCooldown closes the window named by key if it is still open and has
// elapsed. Keys of deleted entities and windows that were already closed or
// restarted are ignored.
func (e *Engine) ExpireCooldown(key scheduler.CooldownKey) Outcome {
	loc, err := e.locateSubObjective(key.ObjectiveID, key.PhaseID, key.SubObjectiveID)
	if err != nil {
		return Outcome{}
	}
	now := e.now()
	current := e.objectives[loc.oi]
	sub := current.Phases[loc.pi].SubObjectives[loc.si]
	if !sub.Cooldown.Active() {
		return noop(current)
	}
	if repetition.CooldownRemaining(sub.Cooldown, now) > 0 {
		e.scheduleWindow(key.ObjectiveID, key.PhaseID, sub)
		return noop(current)
	}

	o := editPhase(current, loc.pi)
	sub.Cooldown = repetition.ClearWindow(sub.Cooldown)
	o.Phases[loc.pi].SubObjectives[loc.si] = sub
	ev := Event{Kind: EventCooldownExpired, ObjectiveID: o.ID, PhaseID: key.PhaseID, SubObjectiveID: sub.ID, Subject: sub.Name}
	return e.commit("expire_cooldown", loc.oi, o, []Event{ev})
}

// refreshCooldowns copies only the phases whose windows changed.
func refreshCooldowns(o model.Objective, now time.Time) (model.Objective, int) {
	changed := 0
	copied := false
	for pi, p := range o.Phases {
		subsCopied := false
		for si, sub := range p.SubObjectives {
			c, ok := repetition.Refresh(sub.Cooldown, now)
			if !ok {
				continue
			}
			if !copied {
				o.Phases = slices.Clone(o.Phases)
				copied = true
			}
			if !subsCopied {
				o.Phases[pi].SubObjectives = slices.Clone(p.SubObjectives)
				subsCopied = true
			}
			o.Phases[pi].SubObjectives[si].Cooldown = c
			changed++
		}
	}
	return o, changed
}

func (e *Engine) scheduleWindows(o model.Objective) {
	for _, p := range o.Phases {
		for _, sub := range p.SubObjectives {
			e.scheduleWindow(o.ID, p.ID, sub)
		}
	}
}

func (e *Engine) scheduleWindow(objectiveID, phaseID string, sub model.SubObjective) {
	if e.deps.Cooldowns == nil {
		return
	}
	at, ok := repetition.ExpiresAt(sub.Cooldown)
	if !ok {
		return
	}
	ev := scheduler.ExpiryEvent{
		Key:       scheduler.CooldownKey{ObjectiveID: objectiveID, PhaseID: phaseID, SubObjectiveID: sub.ID},
		ExpiresAt: at,
	}
	if err := e.deps.Cooldowns.Schedule(ev); err != nil {
		e.log.WithError(err).WithField("subobjective", sub.ID).Warn("schedule cooldown expiry")
	}
}

func (e *Engine) cancelWindow(objectiveID, phaseID, subID string) {
	if e.deps.Cooldowns == nil {
		return
	}
	e.deps.Cooldowns.Cancel(scheduler.CooldownKey{ObjectiveID: objectiveID, PhaseID: phaseID, SubObjectiveID: subID})
}

func (e *Engine) cancelObjective(objectiveID string) {
	if e.deps.Cooldowns == nil {
		return
	}
	e.deps.Cooldowns.CancelObjective(objectiveID)
}

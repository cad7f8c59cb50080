package engine

import (
	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/repetition"
	"github.com/sandeepkv93/questd/internal/reward"
)

// CompleteSubObjective forces the subobjective to its target and awards its
// completion rewards every time it is called. Phase and objective completion
// rewards are awarded once, on their incomplete to complete edge. Completing
// the current phase moves the objective on to the next one.
func (e *Engine) CompleteSubObjective(objectiveID, phaseID, subID string) (Outcome, error) {
	loc, err := e.locateSubObjective(objectiveID, phaseID, subID)
	if err != nil {
		return Outcome{}, err
	}
	o := editPhase(e.objectives[loc.oi], loc.pi)
	p := o.Phases[loc.pi]
	sub := p.SubObjectives[loc.si]
	base := Event{ObjectiveID: o.ID, PhaseID: p.ID, SubObjectiveID: sub.ID}

	sub.Completed = true
	sub.CurrentValue = sub.TargetValue
	grants := reward.ForCompletion(reward.LevelSubObjective, sub.Name, sub.XPReward, sub.GoldReward)
	sub.TotalGoldEarned += reward.Total(grants, reward.ChannelGold)
	p.SubObjectives[loc.si] = sub

	events := []Event{withKind(base, EventSubObjectiveCompleted, sub.Name)}
	events = append(events, rewardEvents(base, grants)...)

	wasCompleted := p.Completed
	p.Completed = p.AllSubObjectivesCompleted()
	phaseDone := p.Completed && !wasCompleted
	if phaseDone {
		phaseBase := Event{ObjectiveID: o.ID, PhaseID: p.ID}
		grants := reward.ForCompletion(reward.LevelPhase, p.Name, p.XPReward, p.GoldReward)
		p.TotalGoldEarned += reward.Total(grants, reward.ChannelGold)
		events = append(events, withKind(phaseBase, EventPhaseCompleted, p.Name))
		events = append(events, rewardEvents(phaseBase, grants)...)
	}
	o.Phases[loc.pi] = p

	wasCompleted = o.Completed
	o.Completed = o.AllPhasesCompleted()
	if o.Completed && !wasCompleted {
		objBase := Event{ObjectiveID: o.ID}
		grants := reward.ForCompletion(reward.LevelObjective, o.Name, o.XPReward, o.GoldReward)
		o.TotalGoldEarned += reward.Total(grants, reward.ChannelGold)
		events = append(events, rewardEvents(objBase, grants)...)
		events = append(events, withKind(objBase, EventObjectiveCompleted, o.Name))
	}

	if phaseDone && loc.pi == o.CurrentPhaseIndex && o.CurrentPhaseIndex < len(o.Phases)-1 {
		o.CurrentPhaseIndex++
		events = append(events, withKind(Event{ObjectiveID: o.ID, PhaseID: o.Phases[o.CurrentPhaseIndex].ID}, EventPhaseAdvanced, o.Phases[o.CurrentPhaseIndex].Name))
	}
	return e.commit("complete_subobjective", loc.oi, o, events), nil
}

// UpdateSubObjective sets the subobjective value, clamped to [0, target], and
// awards per-point rewards for any increase. Reaching the target here updates
// completion flags but never awards phase or objective completion rewards.
// Increases are refused while a cooldown window is open; an accepted increase
// on a cooldown subobjective opens a new window.
func (e *Engine) UpdateSubObjective(objectiveID, phaseID, subID string, value int) (Outcome, error) {
	loc, err := e.locateSubObjective(objectiveID, phaseID, subID)
	if err != nil {
		return Outcome{}, err
	}
	now := e.now()
	current := e.objectives[loc.oi]
	sub := current.Phases[loc.pi].SubObjectives[loc.si]

	if value > sub.CurrentValue {
		if err := repetition.CheckIncrement(sub.Cooldown, now); err != nil {
			return e.reject("update_subobjective", current, Event{PhaseID: phaseID, SubObjectiveID: subID, Subject: sub.Name, Err: err}), nil
		}
	}
	newValue := min(max(value, 0), sub.TargetValue)
	if newValue == sub.CurrentValue {
		return noop(current), nil
	}

	o := editPhase(current, loc.pi)
	p := o.Phases[loc.pi]
	base := Event{ObjectiveID: o.ID, PhaseID: p.ID, SubObjectiveID: sub.ID}
	grants := reward.ForProgress(sub.Name, sub.XPReward, sub.GoldReward, sub.CurrentValue, newValue)
	events := []Event{withKind(base, EventSubObjectiveProgressed, sub.Name)}
	events = append(events, rewardEvents(base, grants)...)

	increased := newValue > sub.CurrentValue
	sub.TotalGoldEarned += reward.Total(grants, reward.ChannelGold)
	sub.CurrentValue = newValue
	sub.Completed = newValue >= sub.TargetValue
	if increased && sub.Cooldown.Enabled {
		sub.Cooldown = repetition.StartWindow(sub.Cooldown, now)
		events = append(events, withKind(base, EventCooldownStarted, sub.Name))
	}
	p.SubObjectives[loc.si] = sub
	p.Completed = p.AllSubObjectivesCompleted()
	o.Phases[loc.pi] = p
	o.Completed = o.AllPhasesCompleted()

	if increased && sub.Cooldown.Enabled {
		e.scheduleWindow(o.ID, p.ID, sub)
	}
	return e.commit("update_subobjective", loc.oi, o, events), nil
}

// AdjustSubObjective moves the subobjective value by change.
func (e *Engine) AdjustSubObjective(objectiveID, phaseID, subID string, change int) (Outcome, error) {
	loc, err := e.locateSubObjective(objectiveID, phaseID, subID)
	if err != nil {
		return Outcome{}, err
	}
	sub := e.objectives[loc.oi].Phases[loc.pi].SubObjectives[loc.si]
	return e.UpdateSubObjective(objectiveID, phaseID, subID, sub.CurrentValue+change)
}

// CompletePhase forces every subobjective of the phase to its target and
// awards the phase completion rewards every time it is called. Subobjective
// and objective rewards are not awarded.
func (e *Engine) CompletePhase(objectiveID, phaseID string) (Outcome, error) {
	loc, err := e.locatePhase(objectiveID, phaseID)
	if err != nil {
		return Outcome{}, err
	}
	o := editPhase(e.objectives[loc.oi], loc.pi)
	p := completeAll(o.Phases[loc.pi])
	base := Event{ObjectiveID: o.ID, PhaseID: p.ID}
	grants := reward.ForCompletion(reward.LevelPhase, p.Name, p.XPReward, p.GoldReward)
	p.TotalGoldEarned += reward.Total(grants, reward.ChannelGold)
	o.Phases[loc.pi] = p
	o.Completed = o.AllPhasesCompleted()

	events := []Event{withKind(base, EventPhaseCompleted, p.Name)}
	events = append(events, rewardEvents(base, grants)...)
	return e.commit("complete_phase", loc.oi, o, events), nil
}

// GoToNextPhase advances the current phase pointer unless it is on the last
// phase.
func (e *Engine) GoToNextPhase(objectiveID string) (Outcome, error) {
	loc, err := e.locateObjective(objectiveID)
	if err != nil {
		return Outcome{}, err
	}
	o := e.objectives[loc.oi]
	if o.CurrentPhaseIndex >= len(o.Phases)-1 {
		return noop(o), nil
	}
	o.CurrentPhaseIndex++
	next := o.Phases[o.CurrentPhaseIndex]
	ev := withKind(Event{ObjectiveID: o.ID, PhaseID: next.ID}, EventPhaseAdvanced, next.Name)
	return e.commit("next_phase", loc.oi, o, []Event{ev}), nil
}

// ResetPhase clears the phase and its subobjectives for another repetition.
// Subobjective repetition counters are kept.
func (e *Engine) ResetPhase(objectiveID, phaseID string) (Outcome, error) {
	loc, err := e.locatePhase(objectiveID, phaseID)
	if err != nil {
		return Outcome{}, err
	}
	current := e.objectives[loc.oi]
	p := current.Phases[loc.pi]
	if err := repetition.CheckRepeat(p.Repetition); err != nil {
		return e.reject("reset_phase", current, Event{PhaseID: p.ID, Subject: p.Name, Err: err, Count: p.Repetition.CurrentRepetitions, Limit: p.Repetition.MaxRepetitions}), nil
	}

	o := editPhase(current, loc.pi)
	for _, sub := range p.SubObjectives {
		e.cancelWindow(o.ID, p.ID, sub.ID)
	}
	p = resetPhaseProgress(p)
	p.Repetition.CurrentRepetitions++
	o.Phases[loc.pi] = p
	o.Completed = o.AllPhasesCompleted()

	ev := Event{Kind: EventPhaseReset, ObjectiveID: o.ID, PhaseID: p.ID, Subject: p.Name, Count: p.Repetition.CurrentRepetitions, Limit: limitOf(p.Repetition)}
	return e.commit("reset_phase", loc.oi, o, []Event{ev}), nil
}

// ResetSubObjective clears one subobjective for another repetition.
func (e *Engine) ResetSubObjective(objectiveID, phaseID, subID string) (Outcome, error) {
	loc, err := e.locateSubObjective(objectiveID, phaseID, subID)
	if err != nil {
		return Outcome{}, err
	}
	current := e.objectives[loc.oi]
	sub := current.Phases[loc.pi].SubObjectives[loc.si]
	if err := repetition.CheckRepeat(sub.Repetition); err != nil {
		return e.reject("reset_subobjective", current, Event{PhaseID: phaseID, SubObjectiveID: sub.ID, Subject: sub.Name, Err: err, Count: sub.Repetition.CurrentRepetitions, Limit: sub.Repetition.MaxRepetitions}), nil
	}

	o := editPhase(current, loc.pi)
	p := o.Phases[loc.pi]
	e.cancelWindow(o.ID, p.ID, sub.ID)
	sub = resetSubProgress(sub)
	sub.Repetition.CurrentRepetitions++
	p.SubObjectives[loc.si] = sub
	p.Completed = p.AllSubObjectivesCompleted()
	o.Phases[loc.pi] = p
	o.Completed = o.AllPhasesCompleted()

	ev := Event{Kind: EventSubObjectiveReset, ObjectiveID: o.ID, PhaseID: p.ID, SubObjectiveID: sub.ID, Subject: sub.Name, Count: sub.Repetition.CurrentRepetitions, Limit: limitOf(sub.Repetition)}
	return e.commit("reset_subobjective", loc.oi, o, []Event{ev}), nil
}

func withKind(ev Event, kind EventKind, subject string) Event {
	ev.Kind = kind
	ev.Subject = subject
	return ev
}

func limitOf(r model.Repetition) int {
	if r.IsInfiniteLoop {
		return 0
	}
	return r.MaxRepetitions
}

package engine

import (
	"slices"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/repetition"
	"github.com/sandeepkv93/questd/internal/reward"
	"github.com/sandeepkv93/questd/internal/storage"
)

// ObjectivePatch lists the fields UpdateObjective may replace. Nil fields are
// left alone.
type ObjectivePatch struct {
	Name              *string
	Description       *string
	Category          *string
	Type              *model.ObjectiveType
	Phases            *[]model.Phase
	CurrentPhaseIndex *int
	XPReward          *model.RewardPair
	GoldReward        *model.RewardPair
	IsRepeatable      *bool
	MaxCompletions    *int
	ExpiresAt         *time.Time
	ClearExpiry       bool
	ProfileID         *string
	ImageURL          *string
	Location          *model.Location
	Legacy            model.LegacyProgress
}

// AddObjective normalizes in, fills missing ids and appends it. A non-empty
// profileID overrides the one carried by in.
func (e *Engine) AddObjective(in model.Objective, profileID string) string {
	return e.insert(in, profileID, EventObjectiveCreated)
}

func (e *Engine) insert(in model.Objective, profileID string, kind EventKind) string {
	now := e.now()
	o := model.AssignIDs(model.Normalize(in), e.newID)
	if e.indexOf(o.ID) >= 0 {
		o.ID = e.newID()
	}
	if profileID != "" {
		o.ProfileID = profileID
	}
	o.CreatedAt = now
	o.UpdatedAt = now

	e.objectives = append(slices.Clone(e.objectives), o)
	e.scheduleWindows(o)
	e.dispatch([]Event{{Kind: kind, ObjectiveID: o.ID, Subject: o.Name}})
	e.persist()
	e.log.WithField("objective", o.ID).Debug("objective added")
	return o.ID
}

// UpdateObjective merges patch into the objective and re-derives every
// completion flag.
func (e *Engine) UpdateObjective(id string, patch ObjectivePatch) error {
	loc, err := e.locateObjective(id)
	if err != nil {
		return err
	}
	o := e.objectives[loc.oi]
	if patch.Name != nil {
		o.Name = *patch.Name
	}
	if patch.Description != nil {
		o.Description = *patch.Description
	}
	if patch.Category != nil {
		o.Category = *patch.Category
	}
	if patch.Type != nil {
		o.Type = *patch.Type
	}
	if patch.Phases != nil {
		o.Phases = *patch.Phases
	}
	if patch.CurrentPhaseIndex != nil {
		o.CurrentPhaseIndex = *patch.CurrentPhaseIndex
	}
	if patch.XPReward != nil {
		o.XPReward = *patch.XPReward
	}
	if patch.GoldReward != nil {
		o.GoldReward = *patch.GoldReward
	}
	if patch.IsRepeatable != nil {
		o.IsRepeatable = *patch.IsRepeatable
	}
	if patch.MaxCompletions != nil {
		o.MaxCompletions = *patch.MaxCompletions
	}
	if patch.ClearExpiry {
		o.ExpiresAt = nil
	}
	if patch.ExpiresAt != nil {
		at := *patch.ExpiresAt
		o.ExpiresAt = &at
	}
	if patch.ProfileID != nil {
		o.ProfileID = *patch.ProfileID
	}
	if patch.ImageURL != nil {
		o.ImageURL = *patch.ImageURL
	}
	if patch.Location != nil {
		l := *patch.Location
		o.Location = &l
	}
	if patch.Legacy != nil {
		o.Legacy = patch.Legacy
	}
	o = model.AssignIDs(model.Normalize(o), e.newID)

	if patch.Phases != nil {
		e.cancelObjective(o.ID)
		e.scheduleWindows(o)
	}
	e.commit("update_objective", loc.oi, o, []Event{{Kind: EventObjectiveUpdated, ObjectiveID: o.ID, Subject: o.Name}})
	return nil
}

func (e *Engine) DeleteObjective(id string) error {
	loc, err := e.locateObjective(id)
	if err != nil {
		return err
	}
	o := e.objectives[loc.oi]
	e.objectives = slices.Delete(slices.Clone(e.objectives), loc.oi, loc.oi+1)
	e.cancelObjective(o.ID)
	e.dispatch([]Event{{Kind: EventObjectiveDeleted, ObjectiveID: o.ID, Subject: o.Name}})
	e.persist()
	e.log.WithField("objective", o.ID).Debug("objective deleted")
	return nil
}

// CloneObjective adds a fresh copy of the objective with progress zeroed and
// returns the new id.
func (e *Engine) CloneObjective(id string) (string, error) {
	loc, err := e.locateObjective(id)
	if err != nil {
		return "", err
	}
	src := e.objectives[loc.oi]
	return e.insert(model.CloneFresh(src, e.newID), src.ProfileID, EventObjectiveCloned), nil
}

// CompleteObjective marks the objective and everything below it completed and
// awards the objective's completion rewards. Completing an already completed
// objective does nothing.
func (e *Engine) CompleteObjective(id string) (Outcome, error) {
	loc, err := e.locateObjective(id)
	if err != nil {
		return Outcome{}, err
	}
	o := e.objectives[loc.oi]
	if o.Completed {
		return noop(o), nil
	}

	if len(o.Phases) > 0 {
		phases := make([]model.Phase, len(o.Phases))
		for i, p := range o.Phases {
			phases[i] = completeAll(p)
		}
		o.Phases = phases
	}
	o.Completed = true
	grants := reward.ForCompletion(reward.LevelObjective, o.Name, o.XPReward, o.GoldReward)
	o.TotalGoldEarned += reward.Total(grants, reward.ChannelGold)

	events := rewardEvents(Event{ObjectiveID: o.ID}, grants)
	events = append(events, Event{Kind: EventObjectiveCompleted, ObjectiveID: o.ID, Subject: o.Name})
	return e.commit("complete_objective", loc.oi, o, events), nil
}

// ResetObjective starts another completion cycle. Phase and subobjective
// repetition counters are kept.
func (e *Engine) ResetObjective(id string) (Outcome, error) {
	loc, err := e.locateObjective(id)
	if err != nil {
		return Outcome{}, err
	}
	o := e.objectives[loc.oi]
	if err := repetition.CheckObjectiveRepeat(o); err != nil {
		return e.reject("reset_objective", o, Event{Subject: o.Name, Err: err, Count: o.CurrentCompletions, Limit: o.MaxCompletions}), nil
	}

	if len(o.Phases) > 0 {
		phases := make([]model.Phase, len(o.Phases))
		for i, p := range o.Phases {
			phases[i] = resetPhaseProgress(p)
		}
		o.Phases = phases
	}
	o.CurrentPhaseIndex = 0
	o.Completed = len(o.Phases) > 0 && o.AllPhasesCompleted()
	if o.Legacy != nil {
		o.Legacy = o.Legacy.Reset()
	}
	o.CurrentCompletions++
	e.cancelObjective(o.ID)

	ev := Event{Kind: EventObjectiveReset, ObjectiveID: o.ID, Subject: o.Name, Count: o.CurrentCompletions, Limit: o.MaxCompletions}
	return e.commit("reset_objective", loc.oi, o, []Event{ev}), nil
}

// PruneExpired removes objectives whose expiry is at or before now and returns
// their ids.
func (e *Engine) PruneExpired(now time.Time) []string {
	kept, removed := storage.PruneExpired(e.objectives, now)
	if len(removed) == 0 {
		return nil
	}
	ids := make([]string, 0, len(removed))
	for _, o := range removed {
		e.cancelObjective(o.ID)
		ids = append(ids, o.ID)
	}
	e.objectives = kept
	e.dispatch([]Event{{Kind: EventObjectivesExpired, Count: len(removed)}})
	e.persist()
	e.log.WithField("removed", len(ids)).Info("expired objectives pruned")
	return ids
}

// completeAll forces every subobjective of p to its target without rewards.
func completeAll(p model.Phase) model.Phase {
	subs := make([]model.SubObjective, len(p.SubObjectives))
	for i, sub := range p.SubObjectives {
		sub.Completed = true
		sub.CurrentValue = sub.TargetValue
		subs[i] = sub
	}
	if len(subs) == 0 {
		subs = nil
	}
	p.SubObjectives = subs
	p.Completed = true
	return p
}

// resetPhaseProgress clears completion, values and cooldown windows while
// keeping every repetition counter.
func resetPhaseProgress(p model.Phase) model.Phase {
	if len(p.SubObjectives) > 0 {
		subs := make([]model.SubObjective, len(p.SubObjectives))
		for i, sub := range p.SubObjectives {
			subs[i] = resetSubProgress(sub)
		}
		p.SubObjectives = subs
	}
	p.Completed = p.AllSubObjectivesCompleted()
	return p
}

func resetSubProgress(s model.SubObjective) model.SubObjective {
	s.Completed = false
	s.CurrentValue = 0
	s.Cooldown = repetition.ClearWindow(s.Cooldown)
	return s
}

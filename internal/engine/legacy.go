package engine

import "github.com/sandeepkv93/questd/internal/model"

// The legacy operations move the scalar progress of objectives without phases.
// They award nothing and stay silent; an objective holding a different
// progress case is left unchanged.

func (e *Engine) IncrementCollectionItem(objectiveID string, index, amount int) (Outcome, error) {
	return e.updateLegacy("increment_collection_item", objectiveID, func(p model.LegacyProgress) (model.LegacyProgress, bool) {
		coll, ok := p.(model.CollectionProgress)
		if !ok || index < 0 || index >= len(coll.Items) {
			return nil, false
		}
		item := coll.Items[index]
		next := max(item.CurrentAmount+amount, 0)
		if item.TargetAmount > 0 {
			next = min(next, item.TargetAmount)
		}
		if next == item.CurrentAmount {
			return nil, false
		}
		items := make([]model.CollectionItem, len(coll.Items))
		copy(items, coll.Items)
		items[index].CurrentAmount = next
		return model.CollectionProgress{Items: items}, true
	})
}

func (e *Engine) IncrementStep(objectiveID string, steps int) (Outcome, error) {
	return e.updateLegacy("increment_step", objectiveID, func(p model.LegacyProgress) (model.LegacyProgress, bool) {
		s, ok := p.(model.StepProgress)
		if !ok || s.Total <= 0 {
			return nil, false
		}
		next := min(max(s.Current+steps, 0), s.Total)
		if next == s.Current {
			return nil, false
		}
		s.Current = next
		return s, true
	})
}

func (e *Engine) UpdatePercentage(objectiveID string, percentage int) (Outcome, error) {
	return e.updateLegacy("update_percentage", objectiveID, func(p model.LegacyProgress) (model.LegacyProgress, bool) {
		pct, ok := p.(model.PercentageProgress)
		if !ok {
			return nil, false
		}
		target := pct.Target
		if target <= 0 {
			target = 100
		}
		next := min(max(percentage, 0), target)
		if next == pct.Current {
			return nil, false
		}
		pct.Current = next
		return pct, true
	})
}

// IncrementKills is unbounded above when the kill target is zero.
func (e *Engine) IncrementKills(objectiveID string, kills int) (Outcome, error) {
	return e.updateLegacy("increment_kills", objectiveID, func(p model.LegacyProgress) (model.LegacyProgress, bool) {
		k, ok := p.(model.KillProgress)
		if !ok {
			return nil, false
		}
		next := max(k.Current+kills, 0)
		if k.Target > 0 {
			next = min(next, k.Target)
		}
		if next == k.Current {
			return nil, false
		}
		k.Current = next
		return k, true
	})
}

func (e *Engine) updateLegacy(op, objectiveID string, fn func(model.LegacyProgress) (model.LegacyProgress, bool)) (Outcome, error) {
	loc, err := e.locateObjective(objectiveID)
	if err != nil {
		return Outcome{}, err
	}
	o := e.objectives[loc.oi]
	if o.Legacy == nil {
		return noop(o), nil
	}
	next, ok := fn(o.Legacy)
	if !ok {
		return noop(o), nil
	}
	o.Legacy = next
	ev := Event{Kind: EventLegacyProgressed, ObjectiveID: o.ID, Subject: o.Name}
	return e.commit(op, loc.oi, o, []Event{ev}), nil
}

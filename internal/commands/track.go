package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/questd/internal/engine"
	"github.com/sandeepkv93/questd/internal/model"
)

// track moves the scalar progress of an objective without phases. Relative
// amounts add to the current value; "=n" sets it.
func (s Session) track(a TrackArgs) (Result, error) {
	t, err := Resolve(s.Engine.Objectives(), a.Target)
	if err != nil {
		return Result{}, err
	}
	o := t.Objective
	if len(o.Phases) > 0 {
		return Result{}, invalid("%s has phases; use progress", o.Name)
	}

	var out engine.Outcome
	var opErr error
	switch p := o.Legacy.(type) {
	case model.CollectionProgress:
		i, err := collectionItem(p.Items, a.Item)
		if err != nil {
			return Result{}, err
		}
		out, opErr = s.Engine.IncrementCollectionItem(o.ID, i, delta(a, p.Items[i].CurrentAmount))
	case model.StepProgress:
		out, opErr = s.Engine.IncrementStep(o.ID, delta(a, p.Current))
	case model.PercentageProgress:
		out, opErr = s.Engine.UpdatePercentage(o.ID, p.Current+delta(a, p.Current))
	case model.KillProgress:
		out, opErr = s.Engine.IncrementKills(o.ID, delta(a, p.Current))
	default:
		return Result{}, invalid("%s (%s) has no trackable progress", o.Name, o.Type)
	}
	if opErr != nil || !out.Applied {
		return outcomeResult(out, opErr, "")
	}
	return Result{Message: fmt.Sprintf("%s: %d%%", o.Name, out.Objective.Legacy.Percent())}, nil
}

func delta(a TrackArgs, current int) int {
	if a.Absolute {
		return a.Amount - current
	}
	return a.Amount
}

// collectionItem resolves a name or 1-based position. A single-item
// collection needs no selector.
func collectionItem(items []model.CollectionItem, sel string) (int, error) {
	if len(items) == 0 {
		return 0, invalid("collection has no items")
	}
	sel = strings.TrimSpace(sel)
	if sel == "" {
		if len(items) == 1 {
			return 0, nil
		}
		return 0, invalid("collection has %d items; name one", len(items))
	}
	if n, err := strconv.Atoi(sel); err == nil {
		if n < 1 || n > len(items) {
			return 0, invalid("item %d out of range 1-%d", n, len(items))
		}
		return n - 1, nil
	}
	for i, it := range items {
		if strings.EqualFold(it.Name, sel) {
			return i, nil
		}
	}
	return 0, &CommandError{Code: ErrCodeNotFound, Message: fmt.Sprintf("no collection item %q", sel)}
}

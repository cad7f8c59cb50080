package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/questd/internal/engine"
	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/player"
)

// Session binds command handlers to an engine. Ledger and Profile are
// optional; without a ledger the player commands fail.
type Session struct {
	Engine  *engine.Engine
	Ledger  *player.Ledger
	Profile string
}

// Run parses input and executes it against the engine.
func (s Session) Run(input string) (Result, error) {
	cmd, err := Parse(input)
	if err != nil {
		return Result{}, err
	}
	return Execute(cmd, s.Handlers())
}

func (s Session) Handlers() Handlers {
	return Handlers{
		Add:      s.add,
		Complete: s.complete,
		Progress: s.progress,
		Reset:    s.reset,
		Clone:    s.clone,
		Delete:   s.delete,
		Next:     s.next,
		Show:     s.show,
		Track:    s.track,
		Rename:   s.rename,
		Spend:    s.spend,
		Set:      s.set,
	}
}

func (s Session) add(a AddArgs) (Result, error) {
	id := s.Engine.AddObjective(model.Objective{Name: a.Name}, s.Profile)
	return Result{Message: fmt.Sprintf("added objective %s (%s)", a.Name, ShortID(id)), Created: id}, nil
}

func (s Session) complete(a TargetArgs) (Result, error) {
	t, err := Resolve(s.Engine.Objectives(), a.Target)
	if err != nil {
		return Result{}, err
	}
	var out engine.Outcome
	var subject string
	switch {
	case t.SubObjective != nil:
		subject = "subobjective " + t.SubObjective.Name
		out, err = s.Engine.CompleteSubObjective(t.Objective.ID, t.Phase.ID, t.SubObjective.ID)
	case t.Phase != nil:
		subject = "phase " + t.Phase.Name
		out, err = s.Engine.CompletePhase(t.Objective.ID, t.Phase.ID)
	default:
		subject = "objective " + t.Objective.Name
		out, err = s.Engine.CompleteObjective(t.Objective.ID)
	}
	return outcomeResult(out, err, "completed "+subject)
}

func (s Session) progress(a ProgressArgs) (Result, error) {
	t, err := Resolve(s.Engine.Objectives(), a.Target)
	if err != nil {
		return Result{}, err
	}
	var out engine.Outcome
	if a.Absolute {
		out, err = s.Engine.UpdateSubObjective(t.Objective.ID, t.Phase.ID, t.SubObjective.ID, a.Amount)
	} else {
		out, err = s.Engine.AdjustSubObjective(t.Objective.ID, t.Phase.ID, t.SubObjective.ID, a.Amount)
	}
	if err != nil || out.Rejection != nil {
		return outcomeResult(out, err, "")
	}
	sub := t.SubObjective
	if o, ok := s.Engine.Objective(t.Objective.ID); ok {
		if pi := o.PhaseIndex(t.Phase.ID); pi >= 0 {
			if si := o.Phases[pi].SubObjectiveIndex(sub.ID); si >= 0 {
				sub = &o.Phases[pi].SubObjectives[si]
			}
		}
	}
	return Result{Message: fmt.Sprintf("%s: %d/%d", sub.Name, sub.CurrentValue, sub.TargetValue)}, nil
}

func (s Session) reset(a TargetArgs) (Result, error) {
	t, err := Resolve(s.Engine.Objectives(), a.Target)
	if err != nil {
		return Result{}, err
	}
	var out engine.Outcome
	var subject string
	switch {
	case t.SubObjective != nil:
		subject = t.SubObjective.Name
		out, err = s.Engine.ResetSubObjective(t.Objective.ID, t.Phase.ID, t.SubObjective.ID)
	case t.Phase != nil:
		subject = t.Phase.Name
		out, err = s.Engine.ResetPhase(t.Objective.ID, t.Phase.ID)
	default:
		subject = t.Objective.Name
		out, err = s.Engine.ResetObjective(t.Objective.ID)
	}
	return outcomeResult(out, err, "reset "+subject)
}

func (s Session) clone(a TargetArgs) (Result, error) {
	t, err := Resolve(s.Engine.Objectives(), a.Target)
	if err != nil {
		return Result{}, err
	}
	id, err := s.Engine.CloneObjective(t.Objective.ID)
	if err != nil {
		return Result{}, notFound(err)
	}
	return Result{Message: fmt.Sprintf("cloned %s as %s", t.Objective.Name, ShortID(id)), Created: id}, nil
}

func (s Session) delete(a TargetArgs) (Result, error) {
	t, err := Resolve(s.Engine.Objectives(), a.Target)
	if err != nil {
		return Result{}, err
	}
	if err := s.Engine.DeleteObjective(t.Objective.ID); err != nil {
		return Result{}, notFound(err)
	}
	return Result{Message: "deleted " + t.Objective.Name}, nil
}

func (s Session) next(a TargetArgs) (Result, error) {
	t, err := Resolve(s.Engine.Objectives(), a.Target)
	if err != nil {
		return Result{}, err
	}
	out, err := s.Engine.GoToNextPhase(t.Objective.ID)
	if err != nil {
		return Result{}, notFound(err)
	}
	if !out.Applied {
		return Result{Message: t.Objective.Name + " is already on its last phase"}, nil
	}
	p, _ := out.Objective.CurrentPhase()
	return Result{Message: fmt.Sprintf("%s: now on phase %s", t.Objective.Name, p.Name)}, nil
}

func (s Session) show(a ShowArgs) (Result, error) {
	profile := a.Profile
	if profile == "" {
		profile = s.Profile
	}
	objs := s.Engine.ObjectivesForProfile(profile)
	switch a.Subject {
	case "objectives", "all":
		return Result{Message: summarize(objs, func(model.Objective) bool { return true })}, nil
	case "active":
		return Result{Message: summarize(objs, func(o model.Objective) bool { return !o.Completed })}, nil
	case "completed", "done":
		return Result{Message: summarize(objs, func(o model.Objective) bool { return o.Completed })}, nil
	case "player":
		if s.Ledger == nil {
			return Result{}, noLedger()
		}
		return Result{Message: playerLine(s.Ledger.Stats())}, nil
	default:
		return Result{}, invalid("unknown show subject: %s", a.Subject)
	}
}

func (s Session) rename(a RenameArgs) (Result, error) {
	t, err := Resolve(s.Engine.Objectives(), a.Target)
	if err != nil {
		return Result{}, err
	}
	name := a.Name
	if err := s.Engine.UpdateObjective(t.Objective.ID, engine.ObjectivePatch{Name: &name}); err != nil {
		return Result{}, notFound(err)
	}
	return Result{Message: fmt.Sprintf("renamed %s to %s", t.Objective.Name, name)}, nil
}

func (s Session) spend(a SpendArgs) (Result, error) {
	if s.Ledger == nil {
		return Result{}, noLedger()
	}
	if gold := s.Ledger.Stats().Gold; gold < a.Amount {
		return Result{}, &CommandError{Code: ErrCodeRejected, Message: fmt.Sprintf("only %d gold available", gold)}
	}
	s.Ledger.RemoveGold(a.Amount)
	return Result{Message: playerLine(s.Ledger.Stats())}, nil
}

func (s Session) set(a SetArgs) (Result, error) {
	if s.Ledger == nil {
		return Result{}, noLedger()
	}
	switch a.Key {
	case SettingBaseXP:
		if a.Value == 0 {
			return Result{}, invalid("%s must be positive", a.Key)
		}
		s.Ledger.SetBaseXPPerLevel(a.Value)
	case SettingXPIncrease:
		s.Ledger.SetXPIncreasePerLevel(a.Value)
	}
	return Result{Message: playerLine(s.Ledger.Stats())}, nil
}

func playerLine(st player.Stats) string {
	return fmt.Sprintf("level %d, %d/%d XP, %d gold", st.Level, st.XP, st.NextLevelXP, st.Gold)
}

func noLedger() error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: "player stats not available"}
}

func summarize(objs []model.Objective, keep func(model.Objective) bool) string {
	var names []string
	for _, o := range objs {
		if keep(o) {
			names = append(names, fmt.Sprintf("%s (%d%%)", o.Name, o.ProgressPercent()))
		}
	}
	if len(names) == 0 {
		return "no objectives"
	}
	return fmt.Sprintf("%d objective(s): %s", len(names), strings.Join(names, ", "))
}

func outcomeResult(out engine.Outcome, err error, applied string) (Result, error) {
	if err != nil {
		return Result{}, notFound(err)
	}
	if out.Rejection != nil {
		return Result{}, &CommandError{Code: ErrCodeRejected, Message: out.Rejection.Error()}
	}
	if !out.Applied {
		return Result{Message: "nothing to do"}, nil
	}
	return Result{Message: applied}, nil
}

func notFound(err error) error {
	if errors.Is(err, engine.ErrNotFound) {
		return &CommandError{Code: ErrCodeNotFound, Message: err.Error()}
	}
	return err
}

// ShortID is the display form of an id.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

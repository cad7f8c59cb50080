// Package engine owns the objective collection and every mutation of it.
//
// An Engine is not safe for concurrent use. Callers drive it from one
// goroutine (the TUI update loop or a CLI command) and feed scheduler expiry
// events back through ExpireCooldown on that same goroutine.
package engine

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/notify"
	"github.com/sandeepkv93/questd/internal/reward"
	"github.com/sandeepkv93/questd/internal/scheduler"
	"github.com/sandeepkv93/questd/internal/storage"
)

var ErrNotFound = errors.New("engine: not found")

// Accumulator receives awarded XP and gold.
type Accumulator interface {
	AddXP(amount int)
	AddGold(amount int)
}

type Notifier interface {
	Notify(notify.Notification)
}

// Saver persists a snapshot without making the caller wait.
type Saver interface {
	Save(key string, payload []byte)
}

// CooldownScheduler tracks cooldown expiry deadlines.
type CooldownScheduler interface {
	Schedule(scheduler.ExpiryEvent) error
	Cancel(scheduler.CooldownKey)
	CancelObjective(objectiveID string)
}

// Deps are the collaborators of an Engine. Any of them may be nil.
type Deps struct {
	Player    Accumulator
	Notifier  Notifier
	Store     Saver
	Cooldowns CooldownScheduler
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithIDGenerator(next func() string) Option {
	return func(e *Engine) {
		if next != nil {
			e.newID = next
		}
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

type Engine struct {
	objectives []model.Objective
	deps       Deps
	now        func() time.Time
	newID      func() string
	log        *logrus.Entry
}

func New(deps Deps, opts ...Option) *Engine {
	discard := logrus.New()
	discard.SetLevel(logrus.PanicLevel)
	e := &Engine{
		deps:  deps,
		now:   time.Now,
		newID: uuid.NewString,
		log:   logrus.NewEntry(discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load replaces the collection with objs after normalizing them. Elapsed
// cooldown windows are closed and open ones are scheduled again. Nothing is
// saved or announced.
func (e *Engine) Load(objs []model.Objective) {
	now := e.now()
	next := make([]model.Objective, 0, len(objs))
	seen := make(map[string]bool, len(objs))
	for _, in := range objs {
		o := model.AssignIDs(model.Normalize(in), e.newID)
		if seen[o.ID] {
			o.ID = e.newID()
		}
		seen[o.ID] = true
		o, _ = refreshCooldowns(o, now)
		next = append(next, o)
	}
	if e.deps.Cooldowns != nil {
		for _, o := range e.objectives {
			e.deps.Cooldowns.CancelObjective(o.ID)
		}
	}
	e.objectives = next
	for _, o := range next {
		e.scheduleWindows(o)
	}
	e.log.WithField("objectives", len(next)).Debug("objectives loaded")
}

// Objectives returns the current collection. The slice and everything it
// reaches must be treated as read-only; mutations never touch it.
func (e *Engine) Objectives() []model.Objective {
	return e.objectives
}

func (e *Engine) Objective(id string) (model.Objective, bool) {
	i := e.indexOf(id)
	if i < 0 {
		return model.Objective{}, false
	}
	return e.objectives[i], true
}

// ObjectivesForProfile returns the objectives tagged with profileID. An empty
// profileID selects everything.
func (e *Engine) ObjectivesForProfile(profileID string) []model.Objective {
	if profileID == "" {
		return e.objectives
	}
	out := make([]model.Objective, 0)
	for _, o := range e.objectives {
		if o.ProfileID == profileID {
			out = append(out, o)
		}
	}
	return out
}

// Snapshot encodes the collection in its persisted shape.
func (e *Engine) Snapshot() ([]byte, error) {
	return storage.EncodeObjectives(e.objectives)
}

func (e *Engine) indexOf(id string) int {
	for i := range e.objectives {
		if e.objectives[i].ID == id {
			return i
		}
	}
	return -1
}

// location addresses one node of the tree; pi and si are -1 when unused.
type location struct {
	oi, pi, si int
}

func (e *Engine) locateObjective(id string) (location, error) {
	i := e.indexOf(id)
	if i < 0 {
		return location{}, fmt.Errorf("%w: objective %q", ErrNotFound, id)
	}
	return location{oi: i, pi: -1, si: -1}, nil
}

func (e *Engine) locatePhase(objectiveID, phaseID string) (location, error) {
	loc, err := e.locateObjective(objectiveID)
	if err != nil {
		return loc, err
	}
	loc.pi = e.objectives[loc.oi].PhaseIndex(phaseID)
	if loc.pi < 0 {
		return location{}, fmt.Errorf("%w: phase %q in objective %q", ErrNotFound, phaseID, objectiveID)
	}
	return loc, nil
}

func (e *Engine) locateSubObjective(objectiveID, phaseID, subID string) (location, error) {
	loc, err := e.locatePhase(objectiveID, phaseID)
	if err != nil {
		return loc, err
	}
	loc.si = e.objectives[loc.oi].Phases[loc.pi].SubObjectiveIndex(subID)
	if loc.si < 0 {
		return location{}, fmt.Errorf("%w: subobjective %q in phase %q", ErrNotFound, subID, phaseID)
	}
	return loc, nil
}

// editPhase returns a copy of o whose phases slice and phase pi's subobjective
// slice are private, so the caller may assign into both.
func editPhase(o model.Objective, pi int) model.Objective {
	o.Phases = slices.Clone(o.Phases)
	o.Phases[pi].SubObjectives = slices.Clone(o.Phases[pi].SubObjectives)
	return o
}

// commit stores o at index oi, stamps it, announces events and saves.
func (e *Engine) commit(op string, oi int, o model.Objective, events []Event) Outcome {
	o.UpdatedAt = e.now()
	next := slices.Clone(e.objectives)
	next[oi] = o
	e.objectives = next
	e.dispatch(events)
	e.persist()
	e.log.WithFields(logrus.Fields{"op": op, "objective": o.ID, "events": len(events)}).Debug("objective updated")
	return Outcome{Objective: o, Events: events, Applied: true}
}

// reject announces a refused operation without touching state.
func (e *Engine) reject(op string, o model.Objective, ev Event) Outcome {
	ev.Kind = EventRejected
	ev.ObjectiveID = o.ID
	e.dispatch([]Event{ev})
	e.log.WithFields(logrus.Fields{"op": op, "objective": o.ID}).WithError(ev.Err).Info("operation rejected")
	return Outcome{Objective: o, Events: []Event{ev}, Rejection: ev.Err}
}

func noop(o model.Objective) Outcome {
	return Outcome{Objective: o}
}

func (e *Engine) dispatch(events []Event) {
	now := e.now()
	for _, ev := range events {
		if ev.Kind == EventReward && e.deps.Player != nil {
			switch ev.Grant.Channel {
			case reward.ChannelXP:
				e.deps.Player.AddXP(ev.Grant.Amount)
			case reward.ChannelGold:
				e.deps.Player.AddGold(ev.Grant.Amount)
			}
		}
		if e.deps.Notifier == nil {
			continue
		}
		if n, ok := notification(ev, now); ok {
			e.deps.Notifier.Notify(n)
		}
	}
}

func (e *Engine) persist() {
	if e.deps.Store == nil {
		return
	}
	payload, err := storage.EncodeObjectives(e.objectives)
	if err != nil {
		e.log.WithError(err).Error("encode objectives")
		return
	}
	e.deps.Store.Save(storage.KeyObjectives, payload)
}

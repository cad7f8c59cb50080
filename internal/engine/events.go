package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/notify"
	"github.com/sandeepkv93/questd/internal/repetition"
	"github.com/sandeepkv93/questd/internal/reward"
)

type EventKind string

const (
	EventObjectiveCreated       EventKind = "objective_created"
	EventObjectiveUpdated       EventKind = "objective_updated"
	EventObjectiveDeleted       EventKind = "objective_deleted"
	EventObjectiveCloned        EventKind = "objective_cloned"
	EventObjectiveCompleted     EventKind = "objective_completed"
	EventObjectiveReset         EventKind = "objective_reset"
	EventObjectivesExpired      EventKind = "objectives_expired"
	EventPhaseCompleted         EventKind = "phase_completed"
	EventPhaseAdvanced          EventKind = "phase_advanced"
	EventPhaseReset             EventKind = "phase_reset"
	EventSubObjectiveCompleted  EventKind = "subobjective_completed"
	EventSubObjectiveProgressed EventKind = "subobjective_progressed"
	EventSubObjectiveReset      EventKind = "subobjective_reset"
	EventLegacyProgressed       EventKind = "legacy_progressed"
	EventCooldownStarted        EventKind = "cooldown_started"
	EventCooldownExpired        EventKind = "cooldown_expired"
	EventReward                 EventKind = "reward"
	EventRejected               EventKind = "rejected"
)

// Event is one observable effect of an operation. Reward events carry a Grant;
// rejections carry Err; reset events carry the new counter in Count and its
// limit (zero when unbounded) in Limit.
type Event struct {
	Kind           EventKind
	ObjectiveID    string
	PhaseID        string
	SubObjectiveID string
	Subject        string
	Grant          reward.Grant
	Count          int
	Limit          int
	Err            error
}

// Outcome is the result of a mutating operation. Applied is false for no-ops
// and rejections; Rejection holds the reason for the latter.
type Outcome struct {
	Objective model.Objective
	Events    []Event
	Applied   bool
	Rejection error
}

func rewardEvents(base Event, grants []reward.Grant) []Event {
	out := make([]Event, 0, len(grants))
	for _, g := range grants {
		ev := base
		ev.Kind = EventReward
		ev.Subject = g.Source
		ev.Grant = g
		out = append(out, ev)
	}
	return out
}

// notification renders the message for ev. Progress, cooldown and field
// updates are silent.
func notification(ev Event, at time.Time) (notify.Notification, bool) {
	n := notify.Notification{Severity: notify.SeverityDefault, At: at}
	switch ev.Kind {
	case EventReward:
		n.Title, n.Description = describeGrant(ev.Grant)
	case EventRejected:
		n.Severity = notify.SeverityDestructive
		n.Title, n.Description = describeRejection(ev)
	case EventObjectiveCreated:
		n.Title = "Objective created"
		n.Description = fmt.Sprintf("%s was created.", ev.Subject)
	case EventObjectiveCloned:
		n.Title = "Objective cloned"
		n.Description = fmt.Sprintf("%s was created.", ev.Subject)
	case EventObjectiveDeleted:
		n.Title = "Objective deleted"
		n.Description = fmt.Sprintf("%s was deleted.", ev.Subject)
	case EventObjectiveCompleted:
		n.Title = "Objective completed"
		n.Description = fmt.Sprintf("%s was marked complete.", ev.Subject)
	case EventPhaseCompleted:
		n.Title = "Phase completed"
		n.Description = fmt.Sprintf("%s is complete.", ev.Subject)
	case EventSubObjectiveCompleted:
		n.Title = "Subobjective completed"
		n.Description = fmt.Sprintf("%s is complete.", ev.Subject)
	case EventObjectiveReset:
		n.Title = "Objective reset"
		n.Description = fmt.Sprintf("%s was reset. Completion %s.", ev.Subject, counter(ev.Count, ev.Limit))
	case EventPhaseReset:
		n.Title = "Phase reset"
		n.Description = fmt.Sprintf("%s was reset. Repetition %s.", ev.Subject, counter(ev.Count, ev.Limit))
	case EventSubObjectiveReset:
		n.Title = "Subobjective reset"
		n.Description = fmt.Sprintf("%s was reset. Repetition %s.", ev.Subject, counter(ev.Count, ev.Limit))
	case EventObjectivesExpired:
		n.Title = "Objectives expired"
		n.Description = fmt.Sprintf("%d temporary objective(s) expired and were removed.", ev.Count)
	default:
		return notify.Notification{}, false
	}
	return n, true
}

func describeGrant(g reward.Grant) (string, string) {
	unit := "XP"
	if g.Channel == reward.ChannelGold {
		unit = "gold"
	}
	if g.Basis == reward.BasisPoints {
		title := "Progress XP"
		if g.Channel == reward.ChannelGold {
			title = "Progress gold"
		}
		return title, fmt.Sprintf("+%d %s for %d point(s) in %s", g.Amount, unit, g.Points, g.Source)
	}
	var title string
	switch g.Level {
	case reward.LevelPhase:
		title = "Phase " + unit
	case reward.LevelObjective:
		title = "Objective " + unit
	default:
		title = unit + " earned"
		if g.Channel == reward.ChannelGold {
			title = "Gold earned"
		}
	}
	return title, fmt.Sprintf("+%d %s for completing %s", g.Amount, unit, g.Source)
}

func describeRejection(ev Event) (string, string) {
	var cd *repetition.CooldownError
	switch {
	case errors.As(ev.Err, &cd):
		return "Cooldown active", fmt.Sprintf("Wait %s before adding points to %s.", repetition.FormatRemaining(cd.Remaining), ev.Subject)
	case errors.Is(ev.Err, repetition.ErrRepetitionsExhausted):
		return "Cannot reset", fmt.Sprintf("%s reached its limit of %d repetitions.", ev.Subject, ev.Limit)
	case errors.Is(ev.Err, repetition.ErrNotRepeatable):
		return "Cannot reset", fmt.Sprintf("%s is not repeatable.", ev.Subject)
	default:
		return "Rejected", fmt.Sprintf("%s: %v", ev.Subject, ev.Err)
	}
}

func counter(count, limit int) string {
	if limit > 0 {
		return fmt.Sprintf("%d/%d", count, limit)
	}
	return fmt.Sprintf("%d", count)
}

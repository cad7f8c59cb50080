// Package reward computes XP and gold grants. It never applies them.
package reward

import "github.com/sandeepkv93/questd/internal/model"

type Channel string

const (
	ChannelXP   Channel = "xp"
	ChannelGold Channel = "gold"
)

type Basis string

const (
	BasisCompletion Basis = "completion"
	BasisPoints     Basis = "points"
)

type Level string

const (
	LevelSubObjective Level = "subobjective"
	LevelPhase        Level = "phase"
	LevelObjective    Level = "objective"
)

// Grant is one non-zero award on one channel.
type Grant struct {
	Channel Channel
	Amount  int
	Basis   Basis
	Level   Level
	// Source is the display name of the awarding entity.
	Source string
	// Points is the positive progress delta for point grants.
	Points int
}

// ForCompletion returns the flat completion grants of an entity, XP first.
func ForCompletion(level Level, source string, xp, gold model.RewardPair) []Grant {
	var grants []Grant
	if xp.PerCompletion > 0 {
		grants = append(grants, Grant{Channel: ChannelXP, Amount: xp.PerCompletion, Basis: BasisCompletion, Level: level, Source: source})
	}
	if gold.PerCompletion > 0 {
		grants = append(grants, Grant{Channel: ChannelGold, Amount: gold.PerCompletion, Basis: BasisCompletion, Level: level, Source: source})
	}
	return grants
}

// ForProgress returns per-point grants for a subobjective value change.
// Decreases award nothing.
func ForProgress(source string, xp, gold model.RewardPair, oldValue, newValue int) []Grant {
	delta := newValue - oldValue
	if delta <= 0 {
		return nil
	}
	var grants []Grant
	if amount := delta * xp.PerPoint; amount > 0 {
		grants = append(grants, Grant{Channel: ChannelXP, Amount: amount, Basis: BasisPoints, Level: LevelSubObjective, Source: source, Points: delta})
	}
	if amount := delta * gold.PerPoint; amount > 0 {
		grants = append(grants, Grant{Channel: ChannelGold, Amount: amount, Basis: BasisPoints, Level: LevelSubObjective, Source: source, Points: delta})
	}
	return grants
}

func Total(grants []Grant, channel Channel) int {
	total := 0
	for _, g := range grants {
		if g.Channel == channel {
			total += g.Amount
		}
	}
	return total
}

// LifetimeGold sums the gold ledgers of the objective and every phase and
// subobjective below it.
func LifetimeGold(o model.Objective) int {
	total := o.TotalGoldEarned
	for _, p := range o.Phases {
		total += p.TotalGoldEarned
		for _, sub := range p.SubObjectives {
			total += sub.TotalGoldEarned
		}
	}
	return total
}

// PotentialGold is the gold still obtainable from incomplete units.
func PotentialGold(o model.Objective) int {
	return potential(o, func(r model.Objective) model.RewardPair { return r.GoldReward },
		func(p model.Phase) model.RewardPair { return p.GoldReward },
		func(s model.SubObjective) model.RewardPair { return s.GoldReward })
}

// PotentialXP is the XP still obtainable from incomplete units.
func PotentialXP(o model.Objective) int {
	return potential(o, func(r model.Objective) model.RewardPair { return r.XPReward },
		func(p model.Phase) model.RewardPair { return p.XPReward },
		func(s model.SubObjective) model.RewardPair { return s.XPReward })
}

func potential(o model.Objective, objective func(model.Objective) model.RewardPair, phase func(model.Phase) model.RewardPair, sub func(model.SubObjective) model.RewardPair) int {
	total := 0
	if !o.Completed {
		total += objective(o).PerCompletion
	}
	for _, p := range o.Phases {
		if !p.Completed {
			total += phase(p).PerCompletion
		}
		for _, s := range p.SubObjectives {
			if s.Completed {
				continue
			}
			r := sub(s)
			total += r.PerCompletion + r.PerPoint*max(s.TargetValue-s.CurrentValue, 0)
		}
	}
	return total
}

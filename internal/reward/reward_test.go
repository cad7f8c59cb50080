package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/questd/internal/model"
)

func TestForProgressAwardsPositiveDelta(t *testing.T) {
	grants := ForProgress("Herbs", model.RewardPair{PerPoint: 2}, model.RewardPair{PerPoint: 1}, 0, 3)

	require.Len(t, grants, 2)
	assert.Equal(t, Grant{Channel: ChannelXP, Amount: 6, Basis: BasisPoints, Level: LevelSubObjective, Source: "Herbs", Points: 3}, grants[0])
	assert.Equal(t, 3, Total(grants, ChannelGold))
	assert.Equal(t, 6, Total(grants, ChannelXP))
}

func TestForProgressIgnoresDecreaseAndZeroRates(t *testing.T) {
	assert.Empty(t, ForProgress("x", model.RewardPair{PerPoint: 5}, model.RewardPair{PerPoint: 5}, 4, 1))
	assert.Empty(t, ForProgress("x", model.RewardPair{PerPoint: 5}, model.RewardPair{PerPoint: 5}, 4, 4))
	assert.Empty(t, ForProgress("x", model.RewardPair{PerCompletion: 5}, model.RewardPair{}, 0, 4))

	grants := ForProgress("x", model.RewardPair{}, model.RewardPair{PerPoint: 3}, 1, 2)
	require.Len(t, grants, 1)
	assert.Equal(t, ChannelGold, grants[0].Channel)
}

func TestForCompletion(t *testing.T) {
	grants := ForCompletion(LevelPhase, "Gather", model.RewardPair{PerCompletion: 50, PerPoint: 9}, model.RewardPair{})
	require.Len(t, grants, 1)
	assert.Equal(t, Grant{Channel: ChannelXP, Amount: 50, Basis: BasisCompletion, Level: LevelPhase, Source: "Gather"}, grants[0])

	assert.Nil(t, ForCompletion(LevelObjective, "none", model.RewardPair{}, model.RewardPair{PerPoint: 4}))
}

func TestLifetimeAndPotentialGold(t *testing.T) {
	o := model.Objective{
		GoldReward:      model.RewardPair{PerCompletion: 100},
		XPReward:        model.RewardPair{PerCompletion: 30},
		TotalGoldEarned: 5,
		Phases: []model.Phase{
			{
				Completed:       true,
				GoldReward:      model.RewardPair{PerCompletion: 40},
				TotalGoldEarned: 40,
				SubObjectives: []model.SubObjective{
					{Completed: true, CurrentValue: 1, TargetValue: 1, TotalGoldEarned: 3, GoldReward: model.RewardPair{PerCompletion: 3}},
				},
			},
			{
				GoldReward: model.RewardPair{PerCompletion: 20},
				XPReward:   model.RewardPair{PerCompletion: 10},
				SubObjectives: []model.SubObjective{
					{CurrentValue: 2, TargetValue: 5, TotalGoldEarned: 4, GoldReward: model.RewardPair{PerCompletion: 7, PerPoint: 2}, XPReward: model.RewardPair{PerPoint: 1}},
				},
			},
		},
	}

	assert.Equal(t, 5+40+3+4, LifetimeGold(o))
	assert.Equal(t, 100+20+7+3*2, PotentialGold(o))
	assert.Equal(t, 30+10+3, PotentialXP(o))

	o.Completed = true
	assert.Equal(t, 20+7+3*2, PotentialGold(o))
}

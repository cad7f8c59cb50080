package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/notify"
	"github.com/sandeepkv93/questd/internal/repetition"
)

func singleSubFixture() model.Objective {
	return model.Objective{
		Name:     "Chop wood",
		XPReward: model.RewardPair{PerCompletion: 200},
		Phases: []model.Phase{{
			ID:       "p",
			Name:     "Only phase",
			XPReward: model.RewardPair{PerCompletion: 50},
			SubObjectives: []model.SubObjective{{
				ID:          "s",
				Name:        "Logs",
				TargetValue: 5,
				XPReward:    model.RewardPair{PerPoint: 2},
				GoldReward:  model.RewardPair{PerPoint: 1},
			}},
		}},
	}
}

func TestPointRewardsWithoutCompletionCascade(t *testing.T) {
	h := newHarness(t)
	id := h.add(singleSubFixture())

	out, err := h.engine.UpdateSubObjective(id, "p", "s", 3)
	require.NoError(t, err)
	require.True(t, out.Applied)
	sub := out.Objective.Phases[0].SubObjectives[0]
	assert.Equal(t, 3, sub.CurrentValue)
	assert.False(t, sub.Completed)
	assert.Equal(t, 6, h.player.xp)
	assert.Equal(t, 3, h.player.gold)
	assert.Equal(t, []string{"Progress XP", "Progress gold"}, h.notes.titles())
	assert.Equal(t, "+6 XP for 3 point(s) in Logs", h.notes.got[0].Description)

	out, err = h.engine.AdjustSubObjective(id, "p", "s", 2)
	require.NoError(t, err)
	sub = out.Objective.Phases[0].SubObjectives[0]
	assert.Equal(t, 5, sub.CurrentValue)
	assert.True(t, sub.Completed)
	assert.True(t, out.Objective.Phases[0].Completed)
	assert.True(t, out.Objective.Completed)
	assert.Equal(t, 10, h.player.xp)
	assert.Equal(t, 5, h.player.gold)
	assert.Equal(t, 5, sub.TotalGoldEarned)
	h.requireValid(t)
}

func TestUpdateSubObjectiveClampsAndIgnoresNoChange(t *testing.T) {
	h := newHarness(t)
	id := h.add(singleSubFixture())

	out, err := h.engine.UpdateSubObjective(id, "p", "s", 99)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Objective.Phases[0].SubObjectives[0].CurrentValue)
	assert.Equal(t, 10, h.player.xp)

	out, err = h.engine.UpdateSubObjective(id, "p", "s", 7)
	require.NoError(t, err)
	assert.False(t, out.Applied)

	out, err = h.engine.UpdateSubObjective(id, "p", "s", -4)
	require.NoError(t, err)
	require.True(t, out.Applied)
	sub := out.Objective.Phases[0].SubObjectives[0]
	assert.Zero(t, sub.CurrentValue)
	assert.False(t, sub.Completed)
	assert.False(t, out.Objective.Phases[0].Completed)
	assert.False(t, out.Objective.Completed)
	assert.Equal(t, 10, h.player.xp, "decreases never take rewards back")
	h.requireValid(t)
}

func TestPhaseRewardFiresOnceOnLastSubObjective(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())

	_, err := h.engine.CompleteSubObjective(id, "p1", "s1")
	require.NoError(t, err)
	assert.Zero(t, h.player.xp)
	assert.False(t, h.get(t, id).Phases[0].Completed)

	out, err := h.engine.CompleteSubObjective(id, "p1", "s2")
	require.NoError(t, err)
	assert.True(t, out.Objective.Phases[0].Completed)
	assert.Equal(t, 60, h.player.xp)
	assert.Equal(t, 1, out.Objective.CurrentPhaseIndex)
	assert.False(t, out.Objective.Completed)

	var kinds []EventKind
	for _, ev := range out.Events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{EventSubObjectiveCompleted, EventReward, EventPhaseCompleted, EventReward, EventPhaseAdvanced}, kinds)
	h.requireValid(t)
}

func TestAdvanceOnlyFromCurrentPhase(t *testing.T) {
	h := newHarness(t)
	fixture := questFixture()
	fixture.Phases = append(fixture.Phases, model.Phase{
		ID:            "p3",
		Name:          "Defend",
		SubObjectives: []model.SubObjective{{ID: "s4", Name: "Wall", TargetValue: 1}},
	})
	id := h.add(fixture)

	out, err := h.engine.CompletePhase(id, "p1")
	require.NoError(t, err)
	assert.True(t, out.Objective.Phases[0].Completed)
	assert.Equal(t, 0, out.Objective.CurrentPhaseIndex)

	out, err = h.engine.CompleteSubObjective(id, "p3", "s4")
	require.NoError(t, err)
	assert.True(t, out.Objective.Phases[2].Completed)
	assert.Equal(t, 0, out.Objective.CurrentPhaseIndex, "p3 is not the current phase")
	for _, ev := range out.Events {
		assert.NotEqual(t, EventPhaseAdvanced, ev.Kind)
	}

	out, err = h.engine.CompleteSubObjective(id, "p1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, out.Objective.CurrentPhaseIndex, "p1 was already complete")
	h.requireValid(t)
}

func TestCompleteSubObjectiveAwardsEveryCall(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())

	for i := 0; i < 3; i++ {
		_, err := h.engine.CompleteSubObjective(id, "p1", "s2")
		require.NoError(t, err)
	}
	assert.Equal(t, 30, h.player.xp)
	assert.Equal(t, 0, h.get(t, id).CurrentPhaseIndex)
}

func TestCompletingLastPhaseCompletesObjective(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())

	_, err := h.engine.CompleteSubObjective(id, "p1", "s1")
	require.NoError(t, err)
	_, err = h.engine.CompleteSubObjective(id, "p1", "s2")
	require.NoError(t, err)
	out, err := h.engine.CompleteSubObjective(id, "p2", "s3")
	require.NoError(t, err)

	assert.True(t, out.Objective.Completed)
	assert.Equal(t, 1, out.Objective.CurrentPhaseIndex)
	assert.Equal(t, 10+50+200, h.player.xp)
	assert.Equal(t, 20, h.player.gold)
	assert.Equal(t, "Objective completed", h.notes.last().Title)

	_, err = h.engine.CompleteSubObjective(id, "p2", "s3")
	require.NoError(t, err)
	assert.Equal(t, 260, h.player.xp, "objective reward is not repeated")
}

func TestCompletePhaseAwardsEveryCall(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())

	out, err := h.engine.CompletePhase(id, "p1")
	require.NoError(t, err)
	for _, sub := range out.Objective.Phases[0].SubObjectives {
		assert.True(t, sub.Completed)
		assert.Equal(t, sub.TargetValue, sub.CurrentValue)
	}
	assert.Equal(t, 50, h.player.xp, "subobjective rewards are not awarded")
	assert.Equal(t, 0, out.Objective.CurrentPhaseIndex)

	_, err = h.engine.CompletePhase(id, "p1")
	require.NoError(t, err)
	assert.Equal(t, 100, h.player.xp)

	out, err = h.engine.CompletePhase(id, "p2")
	require.NoError(t, err)
	assert.True(t, out.Objective.Completed)
	assert.Equal(t, 100, h.player.xp, "objective rewards need CompleteObjective")
	h.requireValid(t)
}

func TestGoToNextPhase(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())

	out, err := h.engine.GoToNextPhase(id)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, 1, out.Objective.CurrentPhaseIndex)

	out, err = h.engine.GoToNextPhase(id)
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.Equal(t, 1, out.Objective.CurrentPhaseIndex)

	legacy := h.add(model.Objective{Name: "Steps", Type: model.TypeSteps})
	out, err = h.engine.GoToNextPhase(legacy)
	require.NoError(t, err)
	assert.False(t, out.Applied)
}

func TestResetSubObjectiveNotRepeatable(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())
	_, err := h.engine.CompleteSubObjective(id, "p1", "s2")
	require.NoError(t, err)
	before := h.get(t, id).Phases[0].SubObjectives[1]

	out, err := h.engine.ResetSubObjective(id, "p1", "s2")
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.ErrorIs(t, out.Rejection, repetition.ErrNotRepeatable)

	after := h.get(t, id).Phases[0].SubObjectives[1]
	assert.Equal(t, before, after)
	last := h.notes.last()
	assert.Equal(t, notify.SeverityDestructive, last.Severity)
	assert.Equal(t, "Cannot reset", last.Title)
	assert.Equal(t, "Stone is not repeatable.", last.Description)
}

func TestResetSubObjectiveInfiniteLoop(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())

	for i := 1; i <= 3; i++ {
		_, err := h.engine.CompleteSubObjective(id, "p2", "s3")
		require.NoError(t, err)
		out, err := h.engine.ResetSubObjective(id, "p2", "s3")
		require.NoError(t, err)
		require.True(t, out.Applied)
		sub := out.Objective.Phases[1].SubObjectives[0]
		assert.Equal(t, i, sub.Repetition.CurrentRepetitions)
		assert.Zero(t, sub.CurrentValue)
		assert.False(t, out.Objective.Phases[1].Completed)
		assert.False(t, out.Objective.Completed)
	}
	assert.Equal(t, "Hut was reset. Repetition 3.", h.notes.last().Description)
	h.requireValid(t)
}

func TestResetPhaseHonorsLimit(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())
	_, err := h.engine.CompletePhase(id, "p2")
	require.NoError(t, err)

	out, err := h.engine.ResetPhase(id, "p2")
	require.NoError(t, err)
	require.True(t, out.Applied)
	p := out.Objective.Phases[1]
	assert.Equal(t, 1, p.Repetition.CurrentRepetitions)
	assert.False(t, p.Completed)
	assert.Zero(t, p.SubObjectives[0].CurrentValue)
	assert.Zero(t, p.SubObjectives[0].Repetition.CurrentRepetitions, "subobjective counters are kept")
	assert.Equal(t, "Build was reset. Repetition 1/1.", h.notes.last().Description)

	out, err = h.engine.ResetPhase(id, "p2")
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.ErrorIs(t, out.Rejection, repetition.ErrRepetitionsExhausted)
	assert.Equal(t, "Build reached its limit of 1 repetitions.", h.notes.last().Description)
	assert.Equal(t, 1, h.get(t, id).Phases[1].Repetition.CurrentRepetitions)
}

func TestRepetitionCountersNeverDecrease(t *testing.T) {
	h := newHarness(t)
	fixture := questFixture()
	fixture.IsRepeatable = true
	id := h.add(fixture)

	_, err := h.engine.ResetSubObjective(id, "p2", "s3")
	require.NoError(t, err)
	_, err = h.engine.ResetPhase(id, "p2")
	require.NoError(t, err)
	_, err = h.engine.ResetObjective(id)
	require.NoError(t, err)
	_, err = h.engine.CompleteObjective(id)
	require.NoError(t, err)

	o := h.get(t, id)
	assert.Equal(t, 1, o.CurrentCompletions)
	assert.Equal(t, 1, o.Phases[1].Repetition.CurrentRepetitions)
	assert.Equal(t, 1, o.Phases[1].SubObjectives[0].Repetition.CurrentRepetitions)
}

package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/notify"
	"github.com/sandeepkv93/questd/internal/scheduler"
	"github.com/sandeepkv93/questd/internal/storage"
)

type fakePlayer struct {
	xp, gold int
}

func (p *fakePlayer) AddXP(amount int)   { p.xp += amount }
func (p *fakePlayer) AddGold(amount int) { p.gold += amount }

type fakeNotifier struct {
	got []notify.Notification
}

func (n *fakeNotifier) Notify(x notify.Notification) { n.got = append(n.got, x) }

func (n *fakeNotifier) titles() []string {
	out := make([]string, 0, len(n.got))
	for _, x := range n.got {
		out = append(out, x.Title)
	}
	return out
}

func (n *fakeNotifier) last() notify.Notification {
	if len(n.got) == 0 {
		return notify.Notification{}
	}
	return n.got[len(n.got)-1]
}

type fakeSaver struct {
	saves int
	last  []byte
}

func (s *fakeSaver) Save(key string, payload []byte) {
	if key != storage.KeyObjectives {
		return
	}
	s.saves++
	s.last = payload
}

type fakeCooldowns struct {
	scheduled           map[scheduler.CooldownKey]time.Time
	cancelled           []scheduler.CooldownKey
	cancelledObjectives []string
}

func newFakeCooldowns() *fakeCooldowns {
	return &fakeCooldowns{scheduled: make(map[scheduler.CooldownKey]time.Time)}
}

func (c *fakeCooldowns) Schedule(ev scheduler.ExpiryEvent) error {
	c.scheduled[ev.Key] = ev.ExpiresAt
	return nil
}

func (c *fakeCooldowns) Cancel(key scheduler.CooldownKey) {
	delete(c.scheduled, key)
	c.cancelled = append(c.cancelled, key)
}

func (c *fakeCooldowns) CancelObjective(objectiveID string) {
	for key := range c.scheduled {
		if key.ObjectiveID == objectiveID {
			delete(c.scheduled, key)
		}
	}
	c.cancelledObjectives = append(c.cancelledObjectives, objectiveID)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type harness struct {
	engine    *Engine
	player    *fakePlayer
	notes     *fakeNotifier
	saver     *fakeSaver
	cooldowns *fakeCooldowns
	clock     *fakeClock
}

var epoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		player:    &fakePlayer{},
		notes:     &fakeNotifier{},
		saver:     &fakeSaver{},
		cooldowns: newFakeCooldowns(),
		clock:     &fakeClock{now: epoch},
	}
	n := 0
	h.engine = New(Deps{
		Player:    h.player,
		Notifier:  h.notes,
		Store:     h.saver,
		Cooldowns: h.cooldowns,
	}, WithClock(h.clock.Now), WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}))
	return h
}

// add inserts o and clears the creation notification.
func (h *harness) add(o model.Objective) string {
	id := h.engine.AddObjective(o, "")
	h.notes.got = nil
	return id
}

func (h *harness) get(t *testing.T, id string) model.Objective {
	t.Helper()
	o, ok := h.engine.Objective(id)
	require.True(t, ok, "objective %s missing", id)
	return o
}

func (h *harness) requireValid(t *testing.T) {
	t.Helper()
	for _, o := range h.engine.Objectives() {
		require.NoError(t, o.Validate())
	}
}

func questFixture() model.Objective {
	return model.Objective{
		Name:       "Forest camp",
		Type:       model.TypeDungeon,
		XPReward:   model.RewardPair{PerCompletion: 200},
		GoldReward: model.RewardPair{PerCompletion: 20},
		Phases: []model.Phase{
			{
				ID:       "p1",
				Name:     "Gather",
				XPReward: model.RewardPair{PerCompletion: 50},
				SubObjectives: []model.SubObjective{
					{ID: "s1", Name: "Wood", TargetValue: 5, XPReward: model.RewardPair{PerPoint: 2}, GoldReward: model.RewardPair{PerPoint: 1}},
					{ID: "s2", Name: "Stone", TargetValue: 3, XPReward: model.RewardPair{PerCompletion: 10}},
				},
			},
			{
				ID:         "p2",
				Name:       "Build",
				Repetition: model.Repetition{IsRepeatable: true, MaxRepetitions: 1},
				SubObjectives: []model.SubObjective{
					{
						ID:          "s3",
						Name:        "Hut",
						TargetValue: 10,
						Repetition:  model.Repetition{IsRepeatable: true, IsInfiniteLoop: true},
						Cooldown:    model.Cooldown{Enabled: true, Duration: 60 * time.Second},
					},
				},
			},
		},
	}
}

func TestAddObjectiveNormalizesAndAnnounces(t *testing.T) {
	h := newHarness(t)
	id := h.engine.AddObjective(model.Objective{
		Name:   "Untyped",
		Type:   "bogus",
		Phases: []model.Phase{{Name: "Only", SubObjectives: []model.SubObjective{{Name: "Thing"}}}},
	}, "alt")

	o := h.get(t, id)
	assert.Equal(t, "gen-1", o.ID)
	assert.Equal(t, model.TypeCustom, o.Type)
	assert.Equal(t, "alt", o.ProfileID)
	assert.Equal(t, epoch, o.CreatedAt)
	assert.Equal(t, model.DefaultTargetValue, o.Phases[0].SubObjectives[0].TargetValue)
	assert.NotEmpty(t, o.Phases[0].ID)
	assert.NotEmpty(t, o.Phases[0].SubObjectives[0].ID)
	assert.Equal(t, []string{"Objective created"}, h.notes.titles())
	assert.Equal(t, 1, h.saver.saves)
	h.requireValid(t)
}

func TestUnknownIDsReturnNotFound(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())
	saves := h.saver.saves

	_, err := h.engine.UpdateSubObjective("missing", "p1", "s1", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.engine.UpdateSubObjective(id, "nope", "s1", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.engine.CompleteSubObjective(id, "p1", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.engine.ResetPhase(id, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.engine.CompleteObjective("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, h.engine.DeleteObjective("missing"), ErrNotFound)
	_, err = h.engine.CloneObjective("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.engine.IncrementStep("missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, h.notes.got)
	assert.Equal(t, saves, h.saver.saves)
	assert.Zero(t, h.player.xp)
}

func TestCompleteObjectiveIsIdempotent(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())

	out, err := h.engine.CompleteObjective(id)
	require.NoError(t, err)
	require.True(t, out.Applied)
	assert.True(t, out.Objective.Completed)
	assert.Equal(t, 0, out.Objective.CurrentPhaseIndex, "index is left where it was")
	for _, p := range out.Objective.Phases {
		assert.True(t, p.Completed)
		for _, sub := range p.SubObjectives {
			assert.True(t, sub.Completed)
			assert.Equal(t, sub.TargetValue, sub.CurrentValue)
		}
	}
	assert.Equal(t, 200, h.player.xp)
	assert.Equal(t, 20, h.player.gold)
	assert.Equal(t, 20, out.Objective.TotalGoldEarned)
	assert.Equal(t, []string{"Objective XP", "Objective gold", "Objective completed"}, h.notes.titles())

	again, err := h.engine.CompleteObjective(id)
	require.NoError(t, err)
	assert.False(t, again.Applied)
	assert.Equal(t, 200, h.player.xp)
	assert.Len(t, h.notes.got, 3)
	h.requireValid(t)
}

func TestResetObjectiveStartsNewCycle(t *testing.T) {
	h := newHarness(t)
	fixture := questFixture()
	fixture.IsRepeatable = true
	fixture.MaxCompletions = 2
	id := h.add(fixture)

	_, err := h.engine.UpdateSubObjective(id, "p2", "s3", 4)
	require.NoError(t, err)
	_, err = h.engine.CompleteObjective(id)
	require.NoError(t, err)

	out, err := h.engine.ResetObjective(id)
	require.NoError(t, err)
	require.True(t, out.Applied)
	o := out.Objective
	assert.Equal(t, 1, o.CurrentCompletions)
	assert.Equal(t, 0, o.CurrentPhaseIndex)
	assert.False(t, o.Completed)
	for _, p := range o.Phases {
		assert.False(t, p.Completed)
		for _, sub := range p.SubObjectives {
			assert.Zero(t, sub.CurrentValue)
			assert.False(t, sub.Completed)
			assert.True(t, sub.Cooldown.StartedAt.IsZero())
		}
	}
	assert.Contains(t, h.cooldowns.cancelledObjectives, id)
	assert.Empty(t, h.cooldowns.scheduled)
	assert.Equal(t, "Objective reset", h.notes.last().Title)
	assert.Equal(t, "Forest camp was reset. Completion 1/2.", h.notes.last().Description)
	h.requireValid(t)
}

// An objective at its completion cap refuses another reset.
func TestResetObjectiveAtLimitIsRejected(t *testing.T) {
	h := newHarness(t)
	fixture := questFixture()
	fixture.IsRepeatable = true
	fixture.MaxCompletions = 2
	fixture.CurrentCompletions = 2
	id := h.add(fixture)
	before := h.get(t, id)
	saves := h.saver.saves

	out, err := h.engine.ResetObjective(id)
	require.NoError(t, err)
	assert.False(t, out.Applied)
	require.Error(t, out.Rejection)
	assert.Equal(t, before, h.get(t, id))
	assert.Equal(t, saves, h.saver.saves)

	last := h.notes.last()
	assert.Equal(t, notify.SeverityDestructive, last.Severity)
	assert.Equal(t, "Cannot reset", last.Title)
	assert.Equal(t, "Forest camp reached its limit of 2 repetitions.", last.Description)
}

func TestResetObjectiveNotRepeatable(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())

	out, err := h.engine.ResetObjective(id)
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.Equal(t, "Forest camp is not repeatable.", h.notes.last().Description)
}

func TestCloneObjectiveZeroesProgress(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())
	_, err := h.engine.UpdateSubObjective(id, "p1", "s1", 3)
	require.NoError(t, err)
	_, err = h.engine.CompleteSubObjective(id, "p1", "s2")
	require.NoError(t, err)

	cloneID, err := h.engine.CloneObjective(id)
	require.NoError(t, err)
	require.NotEqual(t, id, cloneID)

	src := h.get(t, id)
	clone := h.get(t, cloneID)
	assert.Equal(t, "Forest camp (Copy)", clone.Name)
	assert.Equal(t, src.XPReward, clone.XPReward)
	assert.Equal(t, src.GoldReward, clone.GoldReward)
	assert.Zero(t, clone.TotalGoldEarned)
	assert.Zero(t, clone.CurrentPhaseIndex)

	srcIDs := map[string]bool{src.ID: true}
	for _, p := range src.Phases {
		srcIDs[p.ID] = true
		for _, sub := range p.SubObjectives {
			srcIDs[sub.ID] = true
		}
	}
	for pi, p := range clone.Phases {
		assert.False(t, srcIDs[p.ID])
		assert.Equal(t, src.Phases[pi].Repetition.MaxRepetitions, p.Repetition.MaxRepetitions)
		for si, sub := range p.SubObjectives {
			assert.False(t, srcIDs[sub.ID])
			assert.Zero(t, sub.CurrentValue)
			assert.False(t, sub.Completed)
			assert.Equal(t, src.Phases[pi].SubObjectives[si].XPReward, sub.XPReward)
		}
	}
	assert.Equal(t, "Objective cloned", h.notes.last().Title)
	h.requireValid(t)
}

func TestDeleteObjective(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())
	keep := h.add(questFixture())

	require.NoError(t, h.engine.DeleteObjective(id))
	_, ok := h.engine.Objective(id)
	assert.False(t, ok)
	assert.Len(t, h.engine.Objectives(), 1)
	assert.Equal(t, keep, h.engine.Objectives()[0].ID)
	assert.Contains(t, h.cooldowns.cancelledObjectives, id)
	assert.Equal(t, "Objective deleted", h.notes.last().Title)
	assert.ErrorIs(t, h.engine.DeleteObjective(id), ErrNotFound)
}

func TestUpdateObjectivePatch(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())
	name := "Renamed"
	expires := epoch.Add(time.Hour)

	require.NoError(t, h.engine.UpdateObjective(id, ObjectivePatch{Name: &name, ExpiresAt: &expires}))
	o := h.get(t, id)
	assert.Equal(t, "Renamed", o.Name)
	require.NotNil(t, o.ExpiresAt)
	assert.Equal(t, expires, *o.ExpiresAt)
	assert.Len(t, o.Phases, 2)

	phases := []model.Phase{{Name: "Fresh", SubObjectives: []model.SubObjective{{Name: "One", CurrentValue: 7, TargetValue: 5}}}}
	require.NoError(t, h.engine.UpdateObjective(id, ObjectivePatch{Phases: &phases, ClearExpiry: true}))
	o = h.get(t, id)
	assert.Nil(t, o.ExpiresAt)
	require.Len(t, o.Phases, 1)
	assert.Equal(t, 5, o.Phases[0].SubObjectives[0].CurrentValue)
	assert.True(t, o.Completed)
	assert.NotEmpty(t, o.Phases[0].ID)
	h.requireValid(t)
}

func TestObjectivesForProfile(t *testing.T) {
	h := newHarness(t)
	h.engine.AddObjective(model.Objective{Name: "A"}, "main")
	h.engine.AddObjective(model.Objective{Name: "B"}, "alt")
	h.engine.AddObjective(model.Objective{Name: "C"}, "main")

	assert.Len(t, h.engine.ObjectivesForProfile("main"), 2)
	assert.Len(t, h.engine.ObjectivesForProfile("alt"), 1)
	assert.Empty(t, h.engine.ObjectivesForProfile("none"))
	assert.Len(t, h.engine.ObjectivesForProfile(""), 3)
}

func TestPruneExpired(t *testing.T) {
	h := newHarness(t)
	soon := epoch.Add(time.Minute)
	later := epoch.Add(time.Hour)
	gone := h.add(model.Objective{Name: "Temp", ExpiresAt: &soon})
	kept := h.add(model.Objective{Name: "Later", ExpiresAt: &later})
	h.add(model.Objective{Name: "Forever"})

	assert.Nil(t, h.engine.PruneExpired(epoch))

	removed := h.engine.PruneExpired(epoch.Add(2 * time.Minute))
	assert.Equal(t, []string{gone}, removed)
	assert.Len(t, h.engine.Objectives(), 2)
	_, ok := h.engine.Objective(kept)
	assert.True(t, ok)
	assert.Equal(t, "Objectives expired", h.notes.last().Title)
	assert.Equal(t, "1 temporary objective(s) expired and were removed.", h.notes.last().Description)
}

func TestMutationsSaveSnapshot(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())
	_, err := h.engine.UpdateSubObjective(id, "p1", "s1", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, h.saver.saves)
	decoded, err := storage.DecodeObjectives(h.saver.last)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, 2, decoded[0].Phases[0].SubObjectives[0].CurrentValue)

	snap, err := h.engine.Snapshot()
	require.NoError(t, err)
	assert.JSONEq(t, string(h.saver.last), string(snap))
}

func TestMutationsLeaveEarlierSnapshotsUntouched(t *testing.T) {
	h := newHarness(t)
	id := h.add(questFixture())
	before := h.engine.Objectives()
	held := before[0]

	_, err := h.engine.UpdateSubObjective(id, "p1", "s1", 4)
	require.NoError(t, err)
	_, err = h.engine.CompletePhase(id, "p2")
	require.NoError(t, err)

	assert.Zero(t, before[0].Phases[0].SubObjectives[0].CurrentValue)
	assert.False(t, before[0].Phases[1].Completed)
	assert.Zero(t, held.Phases[1].SubObjectives[0].CurrentValue)
	assert.Equal(t, 4, h.get(t, id).Phases[0].SubObjectives[0].CurrentValue)
}

func TestLoadNormalizesAndDedupes(t *testing.T) {
	h := newHarness(t)
	h.engine.Load([]model.Objective{
		{ID: "dup", Name: "First"},
		{ID: "dup", Name: "Second"},
		{Name: "No id", Phases: []model.Phase{{SubObjectives: []model.SubObjective{{CurrentValue: 500}}}}},
	})

	objs := h.engine.Objectives()
	require.Len(t, objs, 3)
	assert.Equal(t, "dup", objs[0].ID)
	assert.NotEqual(t, "dup", objs[1].ID)
	assert.NotEmpty(t, objs[2].ID)
	assert.True(t, objs[2].Completed)
	assert.Empty(t, h.notes.got)
	assert.Zero(t, h.saver.saves)
	h.requireValid(t)
}

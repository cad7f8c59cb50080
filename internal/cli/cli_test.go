package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/questd/internal/config"
)

const campYAML = `name: Camp
category: Outdoors
type: dungeon
xp:
  perCompletion: 200
phases:
  - name: Gather
    subObjectives:
      - name: Wood
        target: 5
        xp:
          perPoint: 2
        gold:
          perPoint: 1
      - name: Stone
        target: 3
  - name: Build
    repeat:
      max: 1
    subObjectives:
      - name: Hut
        target: 10
        cooldown: 60s
`

func setupEnv(t *testing.T, store string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("QUESTD_DATA_DIR", dir)
	t.Setenv("QUESTD_STORE", store)
	t.Setenv("QUESTD_LOG_LEVEL", "error")
	t.Setenv("QUESTD_PROFILE", "")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAddFromFileThenListAndShow(t *testing.T) {
	dir := setupEnv(t, "file")
	path := writeFile(t, dir, "camp.yaml", campYAML)

	out, err := run(t, "add", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "added objective Camp")

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Camp")
	assert.Contains(t, out, "Gather")
	assert.Contains(t, out, "0%")

	out, err = run(t, "show", "camp")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Camp")
	assert.Contains(t, out, "target: 5")

	_, err = os.Stat(filepath.Join(dir, "state", "objectives.json"))
	assert.NoError(t, err)
}

func TestProgressPersistsAcrossRuns(t *testing.T) {
	dir := setupEnv(t, "sqlite")
	path := writeFile(t, dir, "camp.yaml", campYAML)
	_, err := run(t, "add", "-f", path)
	require.NoError(t, err)

	out, err := run(t, "progress", "camp/gather/wood", "+3")
	require.NoError(t, err)
	assert.Contains(t, out, "Wood: 3/5")

	out, err = run(t, "player")
	require.NoError(t, err)
	assert.Equal(t, "level 1, 6/3000 XP, 3 gold\n", out)

	out, err = run(t, "progress", "camp/gather/wood", "=1")
	require.NoError(t, err)
	assert.Contains(t, out, "Wood: 1/5")
}

func TestCompleteSubObjectiveAndPhase(t *testing.T) {
	dir := setupEnv(t, "file")
	_, err := run(t, "add", "-f", writeFile(t, dir, "camp.yaml", campYAML))
	require.NoError(t, err)

	out, err := run(t, "complete", "camp/gather/stone")
	require.NoError(t, err)
	assert.Contains(t, out, "completed subobjective Stone")

	out, err = run(t, "complete", "camp/gather")
	require.NoError(t, err)
	assert.Contains(t, out, "completed phase Gather")

	out, err = run(t, "show", "camp")
	require.NoError(t, err)
	assert.Contains(t, out, "current: 5")
}

func TestCommandErrorsSurface(t *testing.T) {
	setupEnv(t, "file")

	_, err := run(t, "complete", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not_found")

	_, err = run(t, "add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "add needs a name")

	_, err = run(t, "do", "fly", "away")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown_command")
}

func TestDoRunsPaletteLine(t *testing.T) {
	setupEnv(t, "file")

	out, err := run(t, "do", "add", "Quick", "errand")
	require.NoError(t, err)
	assert.Contains(t, out, "added objective Quick errand")

	out, err = run(t, "do", "show", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "Quick errand")
}

func TestProfilesScopeListing(t *testing.T) {
	setupEnv(t, "file")
	_, err := run(t, "--profile", "alt", "add", "Side", "quest")
	require.NoError(t, err)

	out, err := run(t, "--profile", "main", "list")
	require.NoError(t, err)
	assert.Equal(t, "no objectives\n", out)

	out, err = run(t, "--profile", "alt", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Side quest")
}

func TestExpiredObjectivesDroppedOnLoad(t *testing.T) {
	dir := setupEnv(t, "file")
	expired := "name: Old\nexpiresAt: 2020-01-01T00:00:00Z\n"
	_, err := run(t, "add", "-f", writeFile(t, dir, "old.yaml", expired))
	require.NoError(t, err)

	out, err := run(t, "list", "--all")
	require.NoError(t, err)
	assert.Equal(t, "no objectives\n", out)

	out, err = run(t, "prune")
	require.NoError(t, err)
	assert.Equal(t, "pruned 0 expired objective(s)\n", out)
}

func TestOpenAnnouncesExpiredObjectives(t *testing.T) {
	dir := setupEnv(t, "file")
	expired := "name: Old\nexpiresAt: 2020-01-01T00:00:00Z\n"
	_, err := run(t, "add", "-f", writeFile(t, dir, "old.yaml", expired))
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	app, err := Open(context.Background(), cfg, false)
	require.NoError(t, err)
	assert.Empty(t, app.Engine.Objectives())
	latest, ok := app.Feed.Latest()
	require.True(t, ok)
	assert.Equal(t, "Objectives expired", latest.Title)
	assert.Equal(t, "1 temporary objective(s) expired and were removed.", latest.Description)
	require.NoError(t, app.Close())

	app, err = Open(context.Background(), cfg, false)
	require.NoError(t, err)
	_, ok = app.Feed.Latest()
	assert.False(t, ok, "the pruned snapshot was saved")
	require.NoError(t, app.Close())
}

func TestTrackAndPlayerCommandsThroughDo(t *testing.T) {
	dir := setupEnv(t, "file")
	steps := "name: Pilgrimage\ntype: steps\nprogress:\n  target: 4\n"
	_, err := run(t, "add", "-f", writeFile(t, dir, "steps.yaml", steps))
	require.NoError(t, err)

	out, err := run(t, "do", "track", "pilgrimage", "+2")
	require.NoError(t, err)
	assert.Contains(t, out, "Pilgrimage: 50%")

	out, err = run(t, "show", "pilgrimage")
	require.NoError(t, err)
	assert.Contains(t, out, "current: 2")

	out, err = run(t, "do", "set", "base-xp", "1000")
	require.NoError(t, err)
	assert.Equal(t, "level 1, 0/1000 XP, 0 gold\n", out)

	out, err = run(t, "player")
	require.NoError(t, err)
	assert.Equal(t, "level 1, 0/1000 XP, 0 gold\n", out)
}

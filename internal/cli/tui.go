package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/questd/internal/jobs"
	"github.com/sandeepkv93/questd/internal/logging"
	"github.com/sandeepkv93/questd/internal/update"
)

// runTUI drives the engine from the bubbletea loop. Cooldown expiries and
// scheduled prunes reach the engine as messages on that loop.
func runTUI(ctx context.Context, app *App) error {
	m := update.NewModel(update.Deps{
		Engine:   app.Engine,
		Ledger:   app.Ledger,
		Feed:     app.Feed,
		Expiries: app.Cooldowns.C(),
		Profile:  app.Config.Profile,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	pruner, err := jobs.NewPruneScheduler(app.Config.PruneSchedule, app.Engine,
		jobs.Runner(update.RunnerFor(program)), nil, logging.Component(app.Log, "jobs"))
	if err != nil {
		return err
	}
	pruner.Start()
	defer pruner.Stop()

	app.Log.WithField("objectives", len(app.Engine.Objectives())).Info("questd started")
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sandeepkv93/questd/internal/commands"
	"github.com/sandeepkv93/questd/internal/config"
	"github.com/sandeepkv93/questd/internal/engine"
	"github.com/sandeepkv93/questd/internal/logging"
	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/notify"
	"github.com/sandeepkv93/questd/internal/player"
	"github.com/sandeepkv93/questd/internal/scheduler"
	"github.com/sandeepkv93/questd/internal/storage"
)

// App is one running instance: a loaded engine with its persistence and
// notification plumbing.
type App struct {
	Config    config.Config
	Log       *logrus.Logger
	Engine    *engine.Engine
	Ledger    *player.Ledger
	Feed      *notify.Feed
	Cooldowns *scheduler.Scheduler

	writer  *storage.Writer
	closers []func() error
}

// Open loads state from the configured store. Interactive apps also log to a
// file, raise desktop notifications when enabled and run the cooldown
// scheduler.
func Open(ctx context.Context, cfg config.Config, interactive bool) (*App, error) {
	logOpts := logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}
	if interactive && logOpts.File == "" {
		logOpts.File = filepath.Join(cfg.DataDir, "questd.log")
	}
	log, closeLog, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Log: log, closers: []func() error{closeLog}}

	store, err := app.openStore()
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	stats, err := loadPlayerStats(ctx, store, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	objs, err := loadObjectives(ctx, store)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.writer = storage.NewWriter(store, logging.Component(log, "storage"))
	app.Ledger = player.NewLedger(stats)
	app.Ledger.OnChange = func(s player.Stats) {
		payload, err := storage.EncodePlayerStats(s)
		if err != nil {
			log.WithError(err).Error("encode player stats")
			return
		}
		app.writer.Save(storage.KeyPlayerStats, payload)
	}

	app.Feed = notify.NewFeed(cfg.NotificationHistory)
	sinks := notify.Fanout{app.Feed}
	if interactive {
		sinks = append(sinks, notify.LogSink{Log: logging.Component(log, "notify")})
		if cfg.DesktopNotifications {
			sinks = append(sinks, notify.NewDesktopSink(logging.Component(log, "desktop")))
		}
	}

	deps := engine.Deps{Player: app.Ledger, Notifier: sinks, Store: app.writer}
	if interactive {
		app.Cooldowns = scheduler.New(cfg.SchedulerBuffer)
		app.Cooldowns.Start()
		app.closers = append(app.closers, func() error {
			app.Cooldowns.Stop()
			return nil
		})
		deps.Cooldowns = app.Cooldowns
	}
	app.Engine = engine.New(deps, engine.WithLogger(logging.Component(log, "engine")))
	app.Engine.Load(objs)
	app.Engine.PruneExpired(time.Now())
	return app, nil
}

// Session runs palette-style commands against the app's engine.
func (a *App) Session() commands.Session {
	return commands.Session{Engine: a.Engine, Ledger: a.Ledger, Profile: a.Config.Profile}
}

// Close flushes pending writes and releases everything Open acquired.
func (a *App) Close() error {
	if a.writer != nil {
		a.writer.Close()
		if n := a.writer.Failures(); n > 0 {
			a.Log.WithField("failures", n).Warn("some snapshots were not saved")
		}
		a.writer = nil
	}
	var errs []error
	for _, fn := range slices.Backward(a.closers) {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openStore() (storage.SnapshotStore, error) {
	switch a.Config.Store {
	case config.StoreFile:
		return storage.NewFileStore(a.Config.StateDir), nil
	default:
		if err := os.MkdirAll(filepath.Dir(a.Config.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		store, err := storage.OpenSQLite(a.Config.DBPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	}
}

// A player with nothing stored starts on the configured level curve.
func loadPlayerStats(ctx context.Context, store storage.SnapshotStore, cfg config.Config) (player.Stats, error) {
	raw, err := store.Load(ctx, storage.KeyPlayerStats)
	if errors.Is(err, storage.ErrNotFound) {
		return player.NewStats(cfg.BaseXPPerLevel, cfg.XPIncreasePerLevel), nil
	}
	if err != nil {
		return player.Stats{}, fmt.Errorf("load player stats: %w", err)
	}
	return storage.DecodePlayerStats(raw)
}

func loadObjectives(ctx context.Context, store storage.SnapshotStore) ([]model.Objective, error) {
	raw, err := store.Load(ctx, storage.KeyObjectives)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load objectives: %w", err)
	}
	return storage.DecodeObjectives(raw)
}

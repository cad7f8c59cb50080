// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

var ErrInvalidConfig = errors.New("config: invalid")

type StoreKind string

const (
	StoreSQLite StoreKind = "sqlite"
	StoreFile   StoreKind = "file"
)

func (k StoreKind) IsValid() bool {
	return k == StoreSQLite || k == StoreFile
}

type Config struct {
	DataDir              string    `env:"QUESTD_DATA_DIR"`
	Store                StoreKind `env:"QUESTD_STORE" envDefault:"sqlite"`
	DBPath               string    `env:"QUESTD_DB_PATH"`
	StateDir             string    `env:"QUESTD_STATE_DIR"`
	LogLevel             string    `env:"QUESTD_LOG_LEVEL" envDefault:"info"`
	LogFormat            string    `env:"QUESTD_LOG_FORMAT" envDefault:"text"`
	LogFile              string    `env:"QUESTD_LOG_FILE"`
	DesktopNotifications bool      `env:"QUESTD_DESKTOP_NOTIFICATIONS" envDefault:"false"`
	SchedulerBuffer      int       `env:"QUESTD_SCHEDULER_BUFFER" envDefault:"64"`
	PruneSchedule        string    `env:"QUESTD_PRUNE_SCHEDULE" envDefault:"@every 1m"`
	BaseXPPerLevel       int       `env:"QUESTD_BASE_XP_PER_LEVEL" envDefault:"3000"`
	XPIncreasePerLevel   int       `env:"QUESTD_XP_INCREASE_PER_LEVEL" envDefault:"500"`
	NotificationHistory  int       `env:"QUESTD_NOTIFICATION_HISTORY" envDefault:"50"`
	Profile              string    `env:"QUESTD_PROFILE"`
}

func Default() Config {
	return Config{
		Store:               StoreSQLite,
		LogLevel:            "info",
		LogFormat:           "text",
		SchedulerBuffer:     64,
		PruneSchedule:       "@every 1m",
		BaseXPPerLevel:      3000,
		XPIncreasePerLevel:  500,
		NotificationHistory: 50,
	}
}

// Load reads the given dotenv files (missing ones are skipped), parses the
// environment and fills the paths derived from DataDir.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg, err := cfg.resolvePaths()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) resolvePaths() (Config, error) {
	if strings.TrimSpace(c.DataDir) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return c, fmt.Errorf("resolve data dir: %w", err)
		}
		c.DataDir = filepath.Join(home, ".questd")
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "questd.db")
	}
	if c.StateDir == "" {
		c.StateDir = filepath.Join(c.DataDir, "state")
	}
	return c, nil
}

func (c Config) Validate() error {
	if !c.Store.IsValid() {
		return fmt.Errorf("%w: store %q", ErrInvalidConfig, c.Store)
	}
	if c.SchedulerBuffer <= 0 {
		return fmt.Errorf("%w: scheduler buffer must be positive", ErrInvalidConfig)
	}
	if c.BaseXPPerLevel <= 0 {
		return fmt.Errorf("%w: base xp per level must be positive", ErrInvalidConfig)
	}
	if c.XPIncreasePerLevel < 0 {
		return fmt.Errorf("%w: xp increase per level must not be negative", ErrInvalidConfig)
	}
	if c.NotificationHistory <= 0 {
		return fmt.Errorf("%w: notification history must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := cron.ParseStandard(c.PruneSchedule); err != nil {
		return fmt.Errorf("%w: prune schedule: %v", ErrInvalidConfig, err)
	}
	return nil
}

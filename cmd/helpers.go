package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/vibe-studio/internal/config"
	"github.com/ziadkadry99/vibe-studio/internal/db"
	"github.com/ziadkadry99/vibe-studio/internal/history"
	"github.com/ziadkadry99/vibe-studio/internal/kv"
	"github.com/ziadkadry99/vibe-studio/internal/logging"
	"github.com/ziadkadry99/vibe-studio/internal/pages"
	"github.com/ziadkadry99/vibe-studio/internal/playback"
	"github.com/ziadkadry99/vibe-studio/internal/publish"
	"github.com/ziadkadry99/vibe-studio/internal/studio"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `vibestudio init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// workspace is everything a command needs to act on the persisted studio.
type workspace struct {
	cfg     *config.Config
	log     *logrus.Logger
	db      *db.DB
	history *history.Store
	shell   *studio.Shell
}

// openWorkspace loads config, opens the database and assembles the shell
// over it.
func openWorkspace(ctx context.Context) (*workspace, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.Log, verbose)

	database, err := db.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := kv.NewSQLStore(database)
	hist := history.NewStore(database)

	ps, err := pages.Open(ctx, store, pages.Options{
		DocumentPatterns: cfg.Documents.Patterns,
		History:          hist,
		Logger:           log,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("opening page store: %w", err)
	}

	engine := playback.New(
		playback.WithLogger(log),
		playback.WithSettleDelay(time.Duration(cfg.Playback.SettleDelayMS)*time.Millisecond),
	)
	shell := studio.New(ps, publish.NewRegistry(store, hist, log), engine, log)
	shell.SetDefaultSpeed(cfg.Playback.DefaultSpeed)

	log.WithFields(logrus.Fields{"db": database.Path(), "pages": ps.Len()}).Debug("workspace opened")
	return &workspace{cfg: cfg, log: log, db: database, history: hist, shell: shell}, nil
}

// origin is the address published links are built on when no request is
// in flight.
func (w *workspace) origin() string {
	if w.cfg.Server.BaseURL != "" {
		return w.cfg.Server.BaseURL
	}
	return fmt.Sprintf("http://localhost:%d/", w.cfg.Server.Port)
}

func (w *workspace) Close() error {
	w.shell.Close()
	return w.db.Close()
}

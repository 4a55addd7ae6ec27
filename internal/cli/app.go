package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/rcliao/daybook/internal/blob"
	"github.com/rcliao/daybook/internal/clock"
	"github.com/rcliao/daybook/internal/config"
	"github.com/rcliao/daybook/internal/journal"
	"github.com/rcliao/daybook/internal/logging"
	"github.com/rcliao/daybook/internal/migrate"
	"github.com/rcliao/daybook/internal/session"
	"github.com/rcliao/daybook/internal/store"
	"github.com/rcliao/daybook/internal/synthesis"
)

// app holds everything one command invocation needs, built from config.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	loc      *time.Location
	clock    clock.Clock
	db       *sql.DB
	store    store.Store
	arena    *session.Arena
	gen      synthesis.Generator
	pipeline *journal.Pipeline
	chat     *journal.Chat
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.Setup(cfg.Log, verbose)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := store.OpenDB(cfg.DB)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, loc: loc, clock: clock.System{}, db: db}

	if err := a.openStore(); err != nil {
		db.Close()
		return nil, err
	}

	backend, err := session.NewSQLiteBackend(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open session log: %w", err)
	}
	a.arena = session.NewArena(backend, session.Options{
		IdleTimeout: cfg.Session.IdleTimeout,
		Logger:      logger,
		Clock:       a.clock,
	})

	gen, err := synthesis.New(cfg.Synthesis)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.gen = gen
	if gen == nil {
		logger.Debug("no synthesis provider configured")
	}

	opts := []journal.Option{
		journal.WithClock(a.clock),
		journal.WithLocation(loc),
		journal.WithLogger(logger),
	}
	a.pipeline = journal.NewPipeline(a.arena, a.store, gen, opts...)
	a.chat = journal.NewChat(a.arena, gen, opts...)
	return a, nil
}

func (a *app) openStore() error {
	opts := []store.Option{store.WithClock(a.clock), store.WithSnippet(a.cfg.Archive.Snippet)}

	var st store.Store
	switch a.cfg.Archive.Backend {
	case config.BackendBlob:
		bucket, err := blob.NewDirBucket(a.cfg.Archive.BlobDir)
		if err != nil {
			return err
		}
		bs, err := store.NewBlobStore(bucket, a.db, opts...)
		if err != nil {
			return err
		}
		st = bs
	default:
		ss, err := store.NewSQLiteStoreDB(a.db, opts...)
		if err != nil {
			return err
		}
		st = ss
	}

	if a.cfg.Archive.CacheSize > 0 {
		cs, err := store.NewCachedStore(st, a.cfg.Archive.CacheSize)
		if err != nil {
			return err
		}
		st = cs
	}
	a.store = st
	return nil
}

// bridge returns the migration bridge, or nil when no source is configured.
func (a *app) bridge() (*migrate.Bridge, error) {
	if a.cfg.Migrate.SourceDir == "" {
		return nil, nil
	}
	src, err := blob.NewDirBucket(a.cfg.Migrate.SourceDir)
	if err != nil {
		return nil, err
	}
	return &migrate.Bridge{Source: src, Target: a.store, Logger: a.logger, Clock: a.clock}, nil
}

// today is the current day key in the configured zone.
func (a *app) today() string {
	return clock.Today(a.clock, a.loc)
}

func (a *app) Close() {
	if a.arena != nil {
		a.arena.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	a.db.Close()
}

func mustOpenApp() *app {
	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	return a
}

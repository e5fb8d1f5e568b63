package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/rhinspira/hrboard/pkg/blob"
	"github.com/rhinspira/hrboard/pkg/config"
	"github.com/rhinspira/hrboard/pkg/history"
	"github.com/rhinspira/hrboard/pkg/logging"
	"github.com/rhinspira/hrboard/pkg/metrics"
	"github.com/rhinspira/hrboard/pkg/persist"
	"github.com/rhinspira/hrboard/pkg/store"
)

const logFileName = "hrboard.log"

// app wires the configured medium, board and synchronizer together.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	medium  blob.Store
	board   *store.Board
	syncer  *persist.Synchronizer
	history *history.Repo
	metrics *metrics.Metrics

	// watchPath is the file the medium writes to, empty for non-file media.
	watchPath string
	logFile   *os.File
}

func loadConfig() (config.Config, error) {
	return config.Load(map[string]string{
		config.KeyDataDir:  flagDir,
		config.KeyBackend:  flagBackend,
		config.KeyLogLevel: flagLogLevel,
	})
}

// newApp builds the app and loads the stored snapshot. With logToFile set
// the log goes to the data directory so it cannot corrupt the TUI.
func newApp(ctx context.Context, logToFile bool, opts ...persist.Option) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	a := &app{cfg: cfg, board: store.NewBoard(store.Snapshot{}), metrics: metrics.New()}

	var out io.Writer = os.Stderr
	if logToFile {
		f, err := os.OpenFile(filepath.Join(cfg.DataDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		out = f
	}
	a.logger = logging.NewWithLevel(out, cfg.LogLevel)

	a.medium, a.watchPath, err = openMedium(ctx, cfg, a.logger)
	if err != nil {
		a.closeLog()
		return nil, err
	}

	syncOpts := []persist.Option{
		persist.WithKey(cfg.StorageKey),
		persist.WithInterval(cfg.AutosaveInterval),
		persist.WithManualDelay(cfg.ManualSaveDelay),
		persist.WithLogger(a.logger.With().Str("component", "persist").Logger()),
		persist.WithMetrics(a.metrics),
	}
	if cfg.History {
		repo, err := history.Open(filepath.Join(cfg.DataDir, "history"), a.logger.With().Str("component", "history").Logger())
		if err != nil {
			a.logger.Warn().Err(err).Msg("history disabled")
		} else {
			a.history = repo
			syncOpts = append(syncOpts, persist.WithFlushHook(repo.Hook()))
		}
	}
	syncOpts = append(syncOpts, opts...)

	a.syncer = persist.New(a.medium, a.board.Snapshot, a.board.Replace, syncOpts...)
	outcome := a.syncer.Load(ctx)
	a.logger.Debug().
		Str("backend", string(cfg.Backend)).
		Str("outcome", string(outcome)).
		Msg("dashboard loaded")
	return a, nil
}

func openMedium(ctx context.Context, cfg config.Config, logger zerolog.Logger) (blob.Store, string, error) {
	switch cfg.Backend {
	case config.BackendFile:
		fs := blob.NewFileStore(cfg.DataDir, logger)
		return fs, fs.Path(cfg.StorageKey), nil
	case config.BackendSQLite:
		s, err := blob.NewSQLiteStore(filepath.Join(cfg.DataDir, "hrboard.db"))
		return s, "", err
	case config.BackendRedis:
		s, err := blob.NewRedisStore(ctx, cfg.RedisURL, logger)
		return s, "", err
	case config.BackendMemory:
		return blob.NewMemoryStore(), "", nil
	default:
		return nil, "", fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// lastWritten reports when the medium last stored the dashboard, for media
// that keep a write time.
func (a *app) lastWritten(ctx context.Context) (time.Time, bool) {
	ts, ok := a.medium.(blob.Timestamped)
	if !ok {
		return time.Time{}, false
	}
	at, err := ts.UpdatedAt(ctx, a.cfg.StorageKey)
	if err != nil {
		a.logger.Debug().Err(err).Msg("no write time")
		return time.Time{}, false
	}
	return at, true
}

// Close stops autosave and releases the medium.
func (a *app) Close() error {
	a.syncer.Stop()
	err := a.medium.Close()
	a.closeLog()
	return err
}

func (a *app) closeLog() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

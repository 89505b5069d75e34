package daemon

import (
	"context"
	"errors"
	"io/fs"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/carelink/internal/api"
	"github.com/matheus3301/carelink/internal/bus"
	"github.com/matheus3301/carelink/internal/config"
	"github.com/matheus3301/carelink/internal/identity"
	"github.com/matheus3301/carelink/internal/lock"
	"github.com/matheus3301/carelink/internal/logging"
	"github.com/matheus3301/carelink/internal/record"
	"github.com/matheus3301/carelink/internal/status"
	intsync "github.com/matheus3301/carelink/internal/sync"
)

// Params holds the resolved daemon configuration passed to the fx module.
type Params struct {
	ConfigPath string
}

// Module returns the fx module for the daemon, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideIdentity,
			provideEngine,
			provideThreadService,
			provideComposeService,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	path := p.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		// First run: persist defaults so the provider identity has a place
		// to be filled in.
		cfg = &config.Config{}
		if saveErr := config.Save(path, cfg); saveErr != nil {
			return nil, saveErr
		}
		return cfg, nil
	}
	return cfg, err
}

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.LogPath(), cfg.ProviderID)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(cfg *config.Config, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring data dir lock", zap.String("dir", cfg.Dir()))
	l, err := lock.Acquire(cfg.Dir())
	if err != nil {
		return nil, err
	}
	logger.Info("data dir lock acquired")
	return l, nil
}

func provideStore(cfg *config.Config, b *bus.Bus, logger *zap.Logger) (*record.DB, error) {
	dbPath := cfg.DBPath()
	db, err := record.Open(dbPath, b)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("record store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideIdentity(cfg *config.Config, b *bus.Bus) *identity.Manager {
	return identity.NewManager(identity.Provider{
		ID:   cfg.ProviderID,
		Name: cfg.ProviderName,
	}, b)
}

func provideEngine(db *record.DB, b *bus.Bus, ids *identity.Manager, m *status.Machine, logger *zap.Logger, cfg *config.Config) *intsync.Engine {
	return intsync.NewEngine(db, b, ids, m, logger, intsync.Options{
		Interval: cfg.PollInterval(),
	})
}

func provideThreadService(engine *intsync.Engine) *api.ThreadService {
	return api.NewThreadService(engine)
}

func provideComposeService(engine *intsync.Engine, ids *identity.Manager, b *bus.Bus) *api.ComposeService {
	return api.NewComposeService(engine, ids, b)
}

func registerLifecycle(lc fx.Lifecycle, engine *intsync.Engine, db *record.DB, lk *lock.Lock, threads *api.ThreadService, composer *api.ComposeService, logger *zap.Logger) {
	// threads and composer are constructed here so an embedding view layer
	// can take them straight from the fx graph.
	_ = threads
	_ = composer

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			engine.Start(context.Background())
			logger.Info("daemon started")
			return nil
		},
		OnStop: func(_ context.Context) error {
			engine.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing record store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}

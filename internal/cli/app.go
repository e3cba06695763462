package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/enlyst/internal/config"
	"github.com/aretw0/enlyst/internal/logging"
	"github.com/aretw0/enlyst/pkg/adapters/file"
	"github.com/aretw0/enlyst/pkg/adapters/memory"
	"github.com/aretw0/enlyst/pkg/adapters/redis"
	"github.com/aretw0/enlyst/pkg/client"
	"github.com/aretw0/enlyst/pkg/domain"
	"github.com/aretw0/enlyst/pkg/node"
	"github.com/aretw0/enlyst/pkg/observability"
	"github.com/aretw0/enlyst/pkg/persistence/middleware"
	"github.com/aretw0/enlyst/pkg/ports"
)

const lockPrefix = "enlyst:"

// AppOptions are the command-line switches shared by every command.
type AppOptions struct {
	Debug          bool
	ContinueOnFail bool
	// FileRoot allows csvFile paths below this directory. Empty disables them.
	FileRoot string
}

// App wires configuration into the node, the event store and the metrics.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Store   ports.EventStore
	Locker  ports.Locker

	opts    AppOptions
	once    sync.Once
	node    *node.Node
	client  *client.Client
	nodeErr error
	closers []func() error
}

// NewApp creates the shared components. The API client is built on first use,
// so commands that never call the API run without credentials.
func NewApp(cfg config.Config, opts AppOptions) (*App, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger, err := logging.NewWithFormat(cfg.Log.Format, level)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
		opts:    opts,
	}

	switch cfg.Store.Backend {
	case config.StoreRedis:
		var storeOpts []redis.Option
		if cfg.Store.TTL > 0 {
			storeOpts = append(storeOpts, redis.WithTTL(cfg.Store.TTL.Std()))
		}
		store := redis.New(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB, storeOpts...)
		app.Store = store
		app.Locker = redis.NewLocker(store.Client(), lockPrefix)
		app.closers = append(app.closers, store.Close)
		logger.Debug("Using redis event store", "addr", cfg.Store.RedisAddr)
	case config.StoreFile:
		app.Store = file.New(cfg.Store.Dir)
		app.Locker = memory.NewLocker()
	default:
		var storeOpts []memory.StoreOption
		if cfg.Store.Capacity > 0 {
			storeOpts = append(storeOpts, memory.WithCapacity(cfg.Store.Capacity))
		}
		app.Store = memory.NewStore(storeOpts...)
		app.Locker = memory.NewLocker()
	}

	if app.Store, err = secureStore(app.Store, cfg.Store); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// secureStore masks credentials in every stored event and, with a key
// configured, encrypts the payloads.
func secureStore(store ports.EventStore, cfg config.StoreConfig) (ports.EventStore, error) {
	redact, err := middleware.NewRedactMiddleware(append(slices.Clone(middleware.DefaultRedactPatterns), cfg.Redact...))
	if err != nil {
		return nil, err
	}
	mws := []middleware.Middleware{redact}

	if cfg.EncryptionKey != "" {
		keys, err := cfg.Keys()
		if err != nil {
			return nil, err
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: keys[0], FallbackKeys: keys[1:]})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return middleware.Chain(store, mws...), nil
}

// Hooks combines metrics and debug logging.
func (a *App) Hooks() domain.LifecycleHooks {
	return observability.CombineHooks(a.Metrics.Hooks(), observability.LoggingHooks(a.Logger))
}

// Client returns the API client.
func (a *App) Client() (*client.Client, error) {
	a.build()
	return a.client, a.nodeErr
}

// Node returns the action node.
func (a *App) Node() (*node.Node, error) {
	a.build()
	return a.node, a.nodeErr
}

func (a *App) build() {
	a.once.Do(func() {
		opts := append(a.Config.ClientOptions(),
			client.WithLogger(a.Logger),
			client.WithObserver(a.Metrics),
		)
		c, err := client.New(a.Config.Credentials, opts...)
		if err != nil {
			a.nodeErr = fmt.Errorf("invalid credentials (set %s or credentials.accessToken): %w", config.EnvAccessToken, err)
			return
		}
		a.client = c
		a.node = node.New(c,
			node.WithLogger(a.Logger),
			node.WithLifecycleHooks(a.Hooks()),
			node.WithLocker(a.Locker),
			node.WithContinueOnFail(a.opts.ContinueOnFail),
			node.WithFileRoot(a.opts.FileRoot),
		)
	})
}

// Close releases the store connection.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

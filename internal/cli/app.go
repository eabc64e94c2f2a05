package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/clients"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/application/service"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/config"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/logging"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/storage"
)

// Options are the global command-line settings.
type Options struct {
	ConfigPath string
	Verbose    bool
	System     string    // log prefix, e.g. "cli" or "api"
	LogOutput  io.Writer // nil logs to stdout
}

// App holds everything a command needs.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *storage.Storage
	Service *service.ReconcileService
}

// LoadConfig reads the config file. An explicit path must exist; otherwise
// config.yaml is tried before falling back to the environment.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadOrEnv(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Bootstrap opens the database and wires the reconcile service.
func Bootstrap(opts Options) (*App, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	loggingCfg := cfg.Observability.Logging
	if opts.Verbose {
		loggingCfg.Level = "debug"
	}
	system := opts.System
	if system == "" {
		system = "cli"
	}
	var logger *slog.Logger
	if opts.LogOutput == nil {
		logger = logging.NewLoggerWithSystem(loggingCfg, system)
	} else {
		logger = logging.NewLoggerTo(loggingCfg, opts.LogOutput).With("system", system)
	}

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Storage.DatabasePath, err)
	}

	cl, err := clients.NewClients(cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	svc := service.NewReconcileService(cfg, cl, store, logger)
	if err := svc.SeedLocations(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("seed locations: %w", err)
	}

	return &App{Config: cfg, Logger: logger, Store: store, Service: svc}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.Store.Close()
}

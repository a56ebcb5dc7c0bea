package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/hub/internal/adapters/driven/auth"
	"github.com/custodia-labs/hub/internal/adapters/driven/config/file"
	"github.com/custodia-labs/hub/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/hub/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/hub/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/hub/internal/adapters/driving/cli"
	"github.com/custodia-labs/hub/internal/connectors"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
	"github.com/custodia-labs/hub/internal/core/services"
	"github.com/custodia-labs/hub/internal/logger"
	"github.com/custodia-labs/hub/internal/metrics"
)

// stores are the persistence ports selected by [storage].
type stores struct {
	cursors driven.CursorStore
	queue   driven.TaskQueue
	close   func()
}

// bootstrap wires the configured adapters into the core services.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	configStore, err := file.NewStore(opts.ConfigDir)
	if err != nil {
		return nil, nil, err
	}
	cfg := configStore.Config()
	logger.Debug("loaded %s: %d connectors", configStore.Path(), len(cfg.Connectors))

	st, err := openStores(ctx, &cfg, opts.ConfigDir)
	if err != nil {
		return nil, nil, err
	}

	tokens := auth.NewTokenProvider(auth.ClientCredentialsOptions{
		TokenURL:     cfg.OAuth.TokenURL,
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		Scopes:       cfg.OAuth.Scopes,
	})
	factory := connectors.NewDefaultFactory(tokens)
	recorder := metrics.New()

	invoke := services.NewInvokeService(configStore, factory, recorder)
	poll := services.NewPollService(configStore, factory, st.cursors, recorder)

	svc := &cli.Services{
		Reflect:    services.NewReflectService(configStore, factory, recorder),
		Query:      services.NewQueryService(configStore, factory, cfg.Query.PageSize, recorder),
		Invoke:     invoke,
		Data:       services.NewDataService(invoke),
		Poll:       poll,
		Notify:     services.NewNotifyService(configStore, factory, st.queue, recorder),
		Connectors: services.NewConnectorService(configStore, factory),
		Queue:      services.NewQueueService(st.queue),
		Scheduler:  services.NewScheduler(cfg.SchedulerConfig(), poll, st.queue),
		Metrics:    recorder,
		ListenAddr: cfg.ListenAddr(),
		BaseURL:    cfg.Server.BaseURL,
		Watch: func(ctx context.Context) (func(), error) {
			return configStore.Watch(ctx, func(c file.Config) {
				logger.Info("configuration reloaded: %d connectors", len(c.Connectors))
			})
		},
	}
	return svc, st.close, nil
}

func openStores(ctx context.Context, cfg *file.Config, configDir string) (*stores, error) {
	switch cfg.StorageDriver() {
	case file.DriverMemory:
		logger.Warn("using in-memory storage: cursors and queued notifications are lost on exit")
		return &stores{
			cursors: memory.NewCursorStore(),
			queue:   memory.NewTaskQueue(),
			close:   func() {},
		}, nil

	case file.DriverPostgres:
		pg, err := postgres.NewStore(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		return &stores{cursors: pg, queue: pg, close: closer(pg.Close)}, nil

	case file.DriverSQLite:
		dataDir := cfg.Storage.DataDir
		if dataDir == "" && configDir != "" {
			dataDir = filepath.Join(configDir, "data")
		}
		db, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("using sqlite storage at %s", db.Path())
		return &stores{cursors: db.CursorStore(), queue: db.TaskQueue(), close: closer(db.Close)}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver())
	}
}

func closer(fn func() error) func() {
	return func() {
		if err := fn(); err != nil {
			logger.Warn("closing storage: %v", err)
		}
	}
}

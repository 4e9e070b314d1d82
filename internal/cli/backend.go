package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"petclinic/internal/adapters/storage/gormstore"
	"petclinic/internal/adapters/storage/memory"
	"petclinic/internal/adapters/storage/postgres"
	"petclinic/internal/config"
	"petclinic/internal/domain/clinic"
	"petclinic/internal/domain/users"
	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/txscope"
)

// store es lo que comparten los tres adapters de storage.
type store interface {
	txscope.Manager
	Repositories() clinic.Repositories
	Users() users.Repository
	Seed(ctx context.Context) error
}

// schemaStore lo implementan los adapters con base de datos.
type schemaStore interface {
	Migrate(ctx context.Context) error
	Reset(ctx context.Context) error
}

type backend struct {
	store store
	close func() error
}

func openBackend(ctx context.Context, cfg config.Config, log logger.Logger) (*backend, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return &backend{store: memory.NewStore(), close: func() error { return nil }}, nil

	case config.StoragePostgres:
		db, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &backend{store: postgres.NewStore(db), close: db.Close}, nil

	case config.StorageGorm:
		db, err := gormstore.Open(cfg.GormDialect, cfg.DSN, log)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &backend{store: gormstore.NewStore(db), close: sqlDB.Close}, nil

	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

func (b *backend) migrate(ctx context.Context) error {
	if s, ok := b.store.(schemaStore); ok {
		return s.Migrate(ctx)
	}
	return nil
}

func (b *backend) reset(ctx context.Context) error {
	if s, ok := b.store.(schemaStore); ok {
		return s.Reset(ctx)
	}
	return nil
}

// app son los servicios listos para el router, con el scope instrumentado.
type app struct {
	services *clinic.Services
	users    *users.Service
	registry *prometheus.Registry
}

func (b *backend) app(log logger.Logger) (*app, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := txscope.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	tx := txscope.Instrument(b.store, log, metrics)

	return &app{
		services: clinic.NewServices(b.store.Repositories(), tx, log),
		users:    users.NewService(b.store.Users(), tx, log),
		registry: reg,
	}, nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/pilab-dev/fitlink/cache"
	redisledger "github.com/pilab-dev/fitlink/cache/redis"
	"github.com/pilab-dev/fitlink/config"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/pilab-dev/fitlink/internal/provider"
	"github.com/pilab-dev/fitlink/memory"
	"github.com/pilab-dev/fitlink/mongodb"
	"github.com/pilab-dev/fitlink/services"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/multierr"
)

// app holds the stores and services shared by every subcommand. Handles are
// created once here and injected downwards.
type app struct {
	mongo *mongodb.Client
	redis *redis.Client

	registry    *provider.Registry
	connections *services.ConnectionService
	handshakes  *services.HandshakeService
	tracker     *services.SyncTracker
	syncs       *services.SyncService

	closers []func(context.Context) error
}

func newApp(ctx context.Context, cfg *config.ServerConfig) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	var (
		connRepo domain.ConnectionRepository
		runRepo  domain.SyncRunRepository
		ledger   domain.StateLedger
	)

	switch cfg.Storage.Driver {
	case config.DriverMongo:
		db, err := a.mongoDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if connRepo, err = mongodb.NewConnectionRepository(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to initialize connection repository: %w", err)
		}
		if runRepo, err = mongodb.NewSyncRunRepository(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to initialize sync run repository: %w", err)
		}
	case config.DriverMemory:
		connRepo = memory.NewConnectionRepository()
		runRepo = memory.NewSyncRunRepository()
	}

	switch cfg.StateLedger.Driver {
	case config.DriverMongo:
		db, err := a.mongoDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if ledger, err = mongodb.NewStateLedger(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to initialize state ledger: %w", err)
		}
	case config.DriverRedis:
		client, err := a.redisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		ledger = redisledger.NewStateLedger(client, cfg.Redis.Prefix)
	case config.DriverMemory:
		memLedger := cache.NewMemoryStateLedger()
		a.closers = append(a.closers, func(context.Context) error { return memLedger.Close() })
		ledger = memLedger
	}

	a.registry = provider.NewRegistry(cfg.OAuth.CallbackURL, cfg.ProviderConfigs(),
		provider.WithExchangeTimeout(cfg.OAuth.ExchangeTimeout))
	a.connections = services.NewConnectionService(connRepo)
	a.handshakes = services.NewHandshakeService(a.registry, ledger, a.connections,
		services.WithStateTTL(cfg.OAuth.StateTTL))
	a.tracker = services.NewSyncTracker(runRepo, nil)
	// No provider imports activity data yet; every sync records an empty run.
	a.syncs = services.NewSyncService(a.connections, a.tracker, nil)

	return a, nil
}

func (a *app) mongoDB(ctx context.Context, cfg *config.ServerConfig) (*mongo.Database, error) {
	if a.mongo == nil {
		client, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		a.mongo = client
		a.closers = append(a.closers, client.Close)
	}
	return a.mongo.Database(), nil
}

func (a *app) redisClient(ctx context.Context, cfg *config.ServerConfig) (*redis.Client, error) {
	if a.redis == nil {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.redis = client
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	}
	return a.redis, nil
}

// HealthCheck pings every remote store in use.
func (a *app) HealthCheck(ctx context.Context) error {
	if a.mongo != nil {
		if err := a.mongo.Ping(ctx); err != nil {
			return fmt.Errorf("mongodb: %w", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close releases every handle in reverse order of creation.
func (a *app) Close(ctx context.Context) error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i](ctx))
	}
	a.closers = nil
	return err
}

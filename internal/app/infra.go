package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JobsonDeveloper/Product-Microservice/internal/config"
	"github.com/JobsonDeveloper/Product-Microservice/internal/events"
	"github.com/JobsonDeveloper/Product-Microservice/internal/store"
	"github.com/JobsonDeveloper/Product-Microservice/migrations"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/bootstrap"
	pkgconfig "github.com/JobsonDeveloper/Product-Microservice/pkg/config"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/logger"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/messaging"
	pkgnats "github.com/JobsonDeveloper/Product-Microservice/pkg/nats"
)

// CloseFunc releases a resource opened during start-up.
type CloseFunc func()

// OpenStore connects the product store selected by store.driver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, CloseFunc, error) {
	switch cfg.Store.Driver {
	case pkgconfig.StoreDriverMongo:
		client, err := bootstrap.NewMongoClient(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("Failed to disconnect from MongoDB", "error", err)
			}
		}
		mongoStore := store.NewMongoStore(client.Database(cfg.Mongo.Database), cfg.Mongo.Collection)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		logger.Info("Successfully connected to MongoDB!", "database", cfg.Mongo.Database)
		return mongoStore, closeFn, nil

	case pkgconfig.StoreDriverPostgres:
		if cfg.Database.Migrate {
			if err := bootstrap.RunMigrations(migrations.FS, ".", cfg.Database.URL); err != nil {
				return nil, nil, err
			}
			logger.Info("Database migrations applied")
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create database connection pool: %w", err)
		}
		logger.Info("Successfully connected to the database!")
		return store.NewPgStore(dbPool, cfg.Database.Timeout), dbPool.Close, nil

	case pkgconfig.StoreDriverMemory:
		logger.Warn("Using the in-memory product store, data is lost on restart")
		return store.NewInMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// OpenPublisher connects to NATS JetStream when enabled and ensures the product stream exists.
func OpenPublisher(ctx context.Context, cfg pkgconfig.NATSConfig, log *slog.Logger) (messaging.Publisher, CloseFunc, error) {
	if !cfg.Enabled {
		log.Info("NATS disabled, product events are discarded")
		return messaging.NopPublisher{}, func() {}, nil
	}

	nc, err := pkgnats.NewClient(cfg.Url, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := nc.Drain(); err != nil {
			log.Warn("Failed to drain NATS connection", logger.ErrAttr(err))
		}
	}
	js, err := pkgnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	if _, err := pkgnats.EnsureStream(ctx, js, cfg.Stream, events.SubjectAll); err != nil {
		closeFn()
		return nil, nil, err
	}
	log.Info("Successfully connected to NATS!", "stream", cfg.Stream)
	return pkgnats.NewNatsPublisher(js), closeFn, nil
}

// Package bootstrap builds the process-wide infrastructure clients: the logger,
// the PostgreSQL pool, the MongoDB client and schema migrations.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/JobsonDeveloper/Product-Microservice/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewLogger creates a new slog.Logger instance with the specified log level.
// Records carry trace_id and request_id attributes when the context holds them.
func NewLogger(level string) *slog.Logger {
	return newLogger(os.Stdout, level)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	logLevel := toLevel(level)
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}
	logHandler := slog.NewJSONHandler(w, loggerOpts)
	return slog.New(logger.NewContextHandler(logHandler))
}

// NewDbPool creates a new database connection pool with the provided context and configuration,
func NewDbPool(ctx context.Context, url string, connectTimeout time.Duration) (*pgxpool.Pool, error) {
	// Create context with timeout for database connection
	poolCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	dbPool, errPool := pgxpool.New(poolCtx, url)
	if errPool != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", errPool)
	}
	// Ping the database to ensure the connection is established (fail early if not)
	if err := dbPool.Ping(poolCtx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return dbPool, nil
}

// NewMongoClient connects to MongoDB and pings the primary. The timeout bounds both the
// initial connection and every later operation issued through the client.
func NewMongoClient(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetTimeout(timeout)
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// RunMigrations applies all pending migrations found in dir of the given filesystem.
func RunMigrations(migrations fs.FS, dir, databaseURL string) error {
	source, err := iofs.New(migrations, dir)
	if err != nil {
		return fmt.Errorf("failed to open migrations source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// toLevel converts a string representation of a log level to slog.Level.
func toLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

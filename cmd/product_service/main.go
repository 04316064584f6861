// Package main runs the product catalog service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/JobsonDeveloper/Product-Microservice/internal/app"
	"github.com/JobsonDeveloper/Product-Microservice/internal/config"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/bootstrap"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/config/configloader"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/logger"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/telemetry"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const (
	serviceName   = "product"
	telemetryName = "product-service"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, connects the store and the broker, and serves HTTP, gRPC and pprof until ctx is done.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName, config.Defaults())
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	mLogger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(mLogger)

	if cfg.Telemetry.Traces.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, telemetryName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer shutdownWithTimeout(mLogger, "tracer provider", cfg.Shutdown.Timeout, tp.Shutdown)
	}
	mp, metricsHandler, err := telemetry.NewMeterProvider(telemetryName)
	if err != nil {
		return fmt.Errorf("failed to create meter provider: %w", err)
	}
	defer shutdownWithTimeout(mLogger, "meter provider", cfg.Shutdown.Timeout, mp.Shutdown)

	productStore, closeStore, err := app.OpenStore(ctx, cfg, mLogger)
	if err != nil {
		return fmt.Errorf("failed to open product store: %w", err)
	}
	defer closeStore()

	publisher, closePublisher, err := app.OpenPublisher(ctx, cfg.NATS, mLogger)
	if err != nil {
		return fmt.Errorf("failed to open event publisher: %w", err)
	}
	defer closePublisher()

	deps, err := app.SetupDependencies(productStore, publisher, metricsHandler, mLogger)
	if err != nil {
		return fmt.Errorf("failed to set up dependencies: %w", err)
	}
	httpServer, pprofServer, grpcServer := setupServers(deps, cfg)

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		mLogger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		mLogger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the gRPC server
	g.Go(func() error {
		grpcAddr := ":" + cfg.GRPC.Port
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		mLogger.Info("gRPC server listening", slog.String("addr", grpcAddr))
		return grpcServer.Serve(lis)
	})
	// gracefully shutdown gRPC server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		mLogger.Info("Shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			mLogger.Info("gRPC server stopped gracefully.")
			return nil
		case <-time.After(cfg.Shutdown.Timeout):
			mLogger.Warn("gRPC server graceful stop timed out. Forcing stop.")
			grpcServer.Stop()
			return fmt.Errorf("grpc server graceful stop timed out")
		}
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			mLogger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			mLogger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// setupServers initializes the HTTP, pprof, and gRPC servers.
func setupServers(deps *app.Dependencies, cfg *config.Config) (*http.Server, *http.Server, *grpc.Server) {
	httpServer := app.SetupHttpServer(deps, cfg)
	grpcServer := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)
	pprofServer := &http.Server{
		Addr:              cfg.PProf.Addr,
		Handler:           http.DefaultServeMux,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
	}
	return httpServer, pprofServer, grpcServer
}

func shutdownWithTimeout(mLogger *slog.Logger, name string, timeout time.Duration, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		mLogger.Warn("Failed to shut down "+name, logger.ErrAttr(err))
	}
}

// Package app contains the application setup for the ProductService.
package app

import (
	"log/slog"
	"net/http"

	"github.com/JobsonDeveloper/Product-Microservice/internal/config"
	"github.com/JobsonDeveloper/Product-Microservice/internal/service"
	"github.com/JobsonDeveloper/Product-Microservice/internal/store"
	grpcImpl "github.com/JobsonDeveloper/Product-Microservice/internal/transport/grpc"
	"github.com/JobsonDeveloper/Product-Microservice/internal/transport/rest"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/messaging"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/server"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
)

const httpOperation = "product-http"

type Dependencies struct {
	ProductService service.ProductService
	Store          store.ProductStore
	Metrics        http.Handler
	Logger         *slog.Logger
}

// SetupDependencies builds the product service on top of the given store and publisher.
// metrics may be nil, in which case /metrics is not served.
func SetupDependencies(st store.ProductStore, publisher messaging.Publisher, metrics http.Handler, logger *slog.Logger) (*Dependencies, error) {
	pService, err := service.NewService(st, publisher, logger)
	if err != nil {
		return nil, err
	}
	return &Dependencies{
		ProductService: pService,
		Store:          st,
		Metrics:        metrics,
		Logger:         logger,
	}, nil
}

// SetupHttpHandler initializes the HTTP routes and middleware for the ProductService application.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, httpOperation)
}

// wireRoutes sets up the HTTP routes for the ProductService application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Store, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
}

// SetupHttpServer creates and configures an HTTP server for the ProductService application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}

// SetupGrpcServer initializes the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	healthServer := grpcImpl.NewHealthServer(deps.Store, deps.Logger)
	opts := []grpc.ServerOption{grpc.StatsHandler(otelgrpc.NewServerHandler())}
	return server.NewGRPCServer(reflectionEnabled, opts, healthServer.Register)
}

package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JobsonDeveloper/Product-Microservice/pkg/config"
	"github.com/JobsonDeveloper/Product-Microservice/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewHTTPServer builds the API server from the http section of the configuration.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Timeout.Read,
		WriteTimeout:      cfg.Timeout.Write,
		IdleTimeout:       cfg.Timeout.Idle,
		ReadHeaderTimeout: cfg.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// NewChiRouter returns a router that tags every request with an ID, logs it and recovers panics.
func NewChiRouter(logger *slog.Logger) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(logger))
	mux.Use(web.Recoverer(logger))
	return mux
}

package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fixora/oauth-service/infrastructure/http/handler"
	"github.com/fixora/oauth-service/infrastructure/http/middleware"
	"github.com/fixora/oauth-service/infrastructure/http/response"
	"github.com/fixora/oauth-service/infrastructure/service/logger"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger logger.Logger
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Addr                 string
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
}

// Dependencies are the handlers and middleware the router is built from.
type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimit      *middleware.RateLimitMiddleware
	Logger         logger.Logger
}

// NewRouter builds the full handler: routes plus the recovery, correlation,
// logging and CORS chain in that order from the outside in.
func NewRouter(config ServerConfig, deps Dependencies) http.Handler {
	log := deps.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w)
	})

	deps.AuthHandler.RegisterRoutes(router, deps.AuthMiddleware, deps.RateLimit)
	router.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	var h http.Handler = router
	h = middleware.CORSMiddleware(config.CORSAllowedOrigins, config.CORSAllowCredentials)(h)
	h = middleware.RequestLogging(log)(h)
	h = middleware.CorrelationIDMiddleware(h)
	h = middleware.Recovery(log)(h)
	return h
}

// NewServer creates a new HTTP server
func NewServer(config ServerConfig, deps Dependencies) *Server {
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 15 * time.Second
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 15 * time.Second
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = 60 * time.Second
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Server{
		logger: log,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           NewRouter(config, deps),
			ReadTimeout:       config.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      config.WriteTimeout,
			IdleTimeout:       config.IdleTimeout,
		},
	}
}

// Start blocks serving requests until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "Starting HTTP server", map[string]interface{}{
		"addr": s.server.Addr,
	})
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}

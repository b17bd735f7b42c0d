package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"ppe-monitor-go/internal/api/handlers"
	"ppe-monitor-go/internal/api/middleware"
	"ppe-monitor-go/internal/config"
)

// Monitor is what the console needs from the running application.
type Monitor interface {
	handlers.Monitor
	StateName() string
}

// Credentials checks logins and lists the users a session may belong to.
type Credentials interface {
	handlers.Authenticator
	middleware.UserDirectory
}

type Server struct {
	config *config.Config
	router *gin.Engine
	server *http.Server
	users  middleware.UserDirectory

	healthHandler  *handlers.HealthHandler
	consoleHandler *handlers.ConsoleHandler
}

func NewServer(cfg *config.Config, monitor Monitor, auth Credentials, stream handlers.Streamer, checks handlers.ComponentChecks) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	s := &Server{
		config:         cfg,
		router:         router,
		users:          auth,
		healthHandler:  handlers.NewHealthHandler(cfg.Version, monitor, checks),
		consoleHandler: handlers.NewConsoleHandler(monitor, auth, stream, cfg.ConsoleJWTSecret, cfg.ConsoleSessionTTL),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ConsolePort),
		Handler: s.router,
	}
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Int("port", s.config.ConsolePort).Msg("Starting web console")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// OnShutdown registers f to run when Shutdown starts, before it waits for
// open requests. Long-lived streams use it to end their handlers.
func (s *Server) OnShutdown(f func()) {
	s.server.RegisterOnShutdown(f)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Stopping web console")
	return s.server.Shutdown(ctx)
}

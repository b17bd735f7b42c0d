package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ppe-monitor-go/internal/api/middleware"
)

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.ServiceInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)

	s.router.GET("/login", s.consoleHandler.LoginForm)
	s.router.POST("/api/login", s.consoleHandler.Login)

	authed := s.router.Group("")
	authed.Use(middleware.RequireSession(s.config.ConsoleJWTSecret, s.users))
	{
		authed.GET("/console", s.consoleHandler.Console)
		authed.GET("/stream.mjpg", s.consoleHandler.Stream)
		authed.GET("/api/status", s.consoleHandler.Status)
		authed.POST("/api/stop", s.consoleHandler.Stop)
		authed.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

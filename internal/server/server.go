// Package server exposes the translate client over the community DeepLX HTTP
// surface.
package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"deeplx/internal/config"
	"deeplx/internal/metrics"
	"deeplx/internal/service"
)

type Server struct {
	cfg    *config.Config
	svc    *service.Service
	engine *gin.Engine
}

func New(cfg *config.Config, svc *service.Service) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(RequestID())
	engine.Use(RequestLogger())
	engine.Use(metrics.PrometheusMiddleware())
	engine.Use(gin.Recovery())

	s := &Server{
		cfg:    cfg,
		svc:    svc,
		engine: engine,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.POST("/translate", s.handleTranslate)
	s.engine.GET("/history", s.handleHistory)
	s.engine.GET("/healthz", s.handleHealthz)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Engine returns the underlying gin engine, used by tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	return s.engine.Run(addr)
}

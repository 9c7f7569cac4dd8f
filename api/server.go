package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/machineinnovators/sentiment-monitor/api/handlers"
	"github.com/machineinnovators/sentiment-monitor/api/middleware"
	"github.com/machineinnovators/sentiment-monitor/internal/metrics"
	"github.com/machineinnovators/sentiment-monitor/internal/monitor"
	"github.com/machineinnovators/sentiment-monitor/internal/retrain"
	"github.com/machineinnovators/sentiment-monitor/pkg/config"
)

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     *config.Config
	monitor    *monitor.Monitor
	retrainMgr *retrain.Manager
}

func NewServer(cfg *config.Config, mon *monitor.Monitor, retrainMgr *retrain.Manager) *Server {
	if cfg.App.Mode == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:     gin.New(),
		config:     cfg,
		monitor:    mon,
		retrainMgr: retrainMgr,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.TraceID())
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.monitor)
	monitorHandler := handlers.NewMonitorHandler(s.monitor, s.retrainMgr)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/live", healthHandler.Live)

	if s.config.Metrics.Enabled {
		s.router.GET("/metrics", gin.WrapH(metrics.Get().Handler()))
	}

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/predictions", monitorHandler.Predict)
		v1.POST("/predictions/log", monitorHandler.LogPrediction)
		v1.GET("/report", monitorHandler.Report)
		v1.GET("/alerts", monitorHandler.Alerts)
		v1.GET("/retrain/check", monitorHandler.RetrainCheck)
		v1.POST("/retrain", monitorHandler.RetrainRun)
		v1.GET("/retrain/history", monitorHandler.RetrainHistory)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.API.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.API.ReadTimeout,
		WriteTimeout: s.config.API.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/KevinKickass/FloorCore/internal/config"
	"github.com/KevinKickass/FloorCore/internal/events"
	"github.com/KevinKickass/FloorCore/internal/lifecycle"
	"github.com/KevinKickass/FloorCore/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router      *gin.Engine
	db          *storage.PostgresClient
	coordinator *lifecycle.Coordinator
	hub         *events.Hub
	logger      *zap.Logger
	server      *http.Server
	validator   *Validator
}

func NewServer(cfg *config.Config, db *storage.PostgresClient, coordinator *lifecycle.Coordinator, hub *events.Hub, logger *zap.Logger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	validator, err := NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to build request validator: %w", err)
	}

	s := &Server{
		router:      gin.New(),
		db:          db,
		coordinator: coordinator,
		hub:         hub,
		logger:      logger,
		validator:   validator,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("REST server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware())

	s.router.GET("/health", s.healthCheck)

	// Live events for the dashboard
	s.router.GET("/ws", func(c *gin.Context) {
		events.ServeWs(s.hub, c.Writer, c.Request)
	})

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.POST("", s.createOrder)
			orders.GET("", s.listOrders)
			orders.GET("/active", s.listActiveOrders)
			orders.GET("/history", s.listOrderHistory)
			orders.GET("/:id", s.getOrder)
			orders.GET("/:id/stops", s.listOrderStops)
			orders.GET("/:id/oee", s.getOrderOEE)

			// Lifecycle transitions
			orders.POST("/:id/start", s.startOrder)
			orders.POST("/:id/halt", s.haltOrder)
			orders.POST("/:id/stop", s.haltOrder) // legacy alias
			orders.POST("/:id/resume", s.resumeOrder)
			orders.POST("/:id/complete", s.completeOrder)
			orders.POST("/:id/abort", s.abortOrder)
		}

		machines := v1.Group("/machines")
		{
			machines.POST("", s.createMachine)
			machines.GET("", s.listMachines)
			machines.GET("/:id", s.getMachine)
			machines.PATCH("/:id/status", s.setMachineStatus)
			machines.DELETE("/:id", s.deleteMachine)
		}

		stops := v1.Group("/stops")
		{
			stops.GET("/summary", s.stopSummary)
		}
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"clients": s.hub.GetClientCount(),
	})
}

package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/existflow/sprintplan/internal/config"
	"github.com/existflow/sprintplan/internal/db"
	"github.com/existflow/sprintplan/internal/logger"
	"github.com/existflow/sprintplan/internal/placement"
	"github.com/existflow/sprintplan/internal/store"
	"github.com/existflow/sprintplan/internal/timeline"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server exposes the planner over HTTP
type Server struct {
	store  *store.Store
	engine *placement.Engine
	echo   *echo.Echo
	closer io.Closer
	now    func() time.Time
}

// New connects to PostgreSQL at cfg.DatabaseURL and creates a server over it
func New(cfg *config.Config) (*Server, error) {
	database, err := db.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	s, err := NewWithBackend(context.Background(), database,
		store.WithSprintCount(cfg.SprintCount),
		store.WithOrder(timeline.ParseOrder(cfg.LegacySprintOrder)))
	if err != nil {
		database.Close()
		return nil, err
	}
	s.closer = database
	return s, nil
}

// NewWithBackend loads a store over backend and creates a server for it
func NewWithBackend(ctx context.Context, backend store.Backend, opts ...store.Option) (*Server, error) {
	log := logger.Default()
	st := store.New(backend, append([]store.Option{store.WithLogger(log)}, opts...)...)
	if err := st.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load planner data: %w", err)
	}

	s := &Server{
		store:  st,
		engine: placement.New(st, placement.WithLogger(log)),
		now:    time.Now,
	}

	// Setup Echo
	s.setupEcho()

	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")
	api.Use(s.callerMiddleware)

	api.GET("/sprints", s.handleListSprints)
	api.GET("/sprints/active", s.handleActiveSprint)

	api.GET("/employees", s.handleListEmployees)
	api.PATCH("/employees/:id", s.handleUpdateEmployee)
	api.GET("/employees/:id/capacity", s.handleEmployeeCapacity)

	api.GET("/projects", s.handleListProjects)
	api.PATCH("/projects/:id", s.handleUpdateProject)

	api.GET("/allocations", s.handleListAllocations)
	api.POST("/allocations", s.handleQuickAllocate)
	api.POST("/allocations/batch", s.handleBatchAllocate)
	api.POST("/allocations/move", s.handleMoveAllocation)
	api.PATCH("/allocations/:id", s.handleUpdateAllocation)
	api.DELETE("/allocations/:id", s.handleDeleteAllocation)

	api.GET("/overallocations", s.handleOverallocations)

	s.echo = e
}

// Close closes the database connection
func (s *Server) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

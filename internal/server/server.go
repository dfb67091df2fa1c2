package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/sql-er-diagram/internal/config"
	"github.com/vitebski/sql-er-diagram/internal/layout"
	"github.com/vitebski/sql-er-diagram/internal/service"
)

// Server is the HTTP front-end of the diagram service
type Server struct {
	Service *service.DiagramService
	Config  *config.Config
	Engine  *gin.Engine
	Logger  *logrus.Logger
	// Defaults fill form fields the client left empty
	Defaults layout.Params
}

// New creates a server and registers its routes
func New(svc *service.DiagramService, cfg *config.Config, logger *logrus.Logger) *Server {
	s := &Server{
		Service:  svc,
		Config:   cfg,
		Logger:   logger,
		Defaults: cfg.LayoutParams(),
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(logger))
	if cfg.Server.Dev {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.Server.AllowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", RequestIDHeader},
			ExposeHeaders: []string{RequestIDHeader, "Content-Disposition"},
			MaxAge:        12 * time.Hour,
		}))
		logger.Infof("CORS enabled for %v", cfg.Server.AllowedOrigins)
	}

	s.Engine = router
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Engine.GET("/health", s.health)
	s.Engine.GET("/example", s.example)

	api := s.Engine.Group("/")
	api.Use(bodyLimit(s.Config.Server.MaxBodyBytes))
	{
		api.POST("/generate", s.generate)
		api.POST("/export-drawio", s.exportDrawio)
		api.POST("/tables", s.tables)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Config.Addr(),
		Handler:           s.Engine,
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.Config.Graphviz.Timeout + 30*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		s.Logger.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	s.Logger.Info("Shutting down server gracefully ...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.Logger.Info("Server exiting")
	return nil
}

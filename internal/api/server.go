package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dsyorkd/assisted-console/internal/api/handlers"
	"github.com/dsyorkd/assisted-console/internal/api/middleware"
	"github.com/dsyorkd/assisted-console/internal/config"
	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/metrics"
	"github.com/dsyorkd/assisted-console/internal/services"
	"github.com/dsyorkd/assisted-console/internal/websocket"
)

// Server represents the console backend
type Server struct {
	config *config.Config
	logger logger.Interface
	api    installer.API
	router *gin.Engine
	server *http.Server
	ws     *websocket.Server
}

// New creates a new console backend talking to the given installer
func New(cfg *config.Config, log logger.Interface, api installer.API) *Server {
	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: cfg,
		logger: log.WithField("component", "api"),
		api:    api,
		router: gin.New(),
	}
	s.ws = websocket.New(api, cfg.API.GetWatchInterval(), s.logger)

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes and middleware
func (s *Server) setupRoutes() {
	// Global middleware
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.SecurityHeaders(s.config.API.IsTLSEnabled()))
	s.router.Use(middleware.Metrics())

	// Health check endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(s.api, s.config.App.Version)
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/ready", healthHandler.Ready)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	creator := services.NewClusterCreator(s.api, s.config.ClusterDefaults, s.logger)
	editor := services.NewClusterEditor(s.api, s.logger)
	actions := services.NewHostActions(s.api, s.logger)
	downloads := services.NewDownloads(s.api, s.config.Downloads.Presigned, s.logger)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		if s.config.API.AuthEnabled {
			v1.Use(middleware.Auth(s.logger))
		}
		// after auth so that authenticated users are limited per user
		v1.Use(middleware.NewRateLimiter(s.config.API.RateLimit, s.logger).RateLimit())

		clusterHandler := handlers.NewClusterHandler(s.api, creator, editor, s.logger)
		hostHandler := handlers.NewHostHandler(s.api, actions, s.logger)
		downloadHandler := handlers.NewDownloadHandler(s.api, downloads, s.logger)

		v1.GET("/openshift-versions", clusterHandler.Versions)

		clusters := v1.Group("/clusters")
		{
			clusters.GET("", clusterHandler.List)
			clusters.POST("", clusterHandler.Create)
			clusters.GET("/new", clusterHandler.New)
			clusters.GET("/:id", clusterHandler.Get)
			clusters.PATCH("/:id", clusterHandler.Update)
			clusters.DELETE("/:id", clusterHandler.Delete)
			clusters.GET("/:id/events", clusterHandler.Events)
			clusters.GET("/:id/credentials", clusterHandler.Credentials)
			clusters.GET("/:id/logs", downloadHandler.ClusterLogs)
			clusters.GET("/:id/kubeconfig", downloadHandler.Kubeconfig)

			clusters.GET("/:id/hosts", hostHandler.List)
			clusters.DELETE("/:id/hosts/:hostId", hostHandler.Delete)
			clusters.POST("/:id/hosts/:hostId/actions/:action", hostHandler.Action)
			clusters.PATCH("/:id/hosts/:hostId/role", hostHandler.SetRole)
			clusters.PATCH("/:id/hosts/:hostId/hostname", hostHandler.SetHostname)
			clusters.GET("/:id/hosts/:hostId/logs", downloadHandler.HostLogs)
		}

		// Live cluster status
		v1.GET("/ws", s.ws.Handle)

		// System information
		v1.GET("/system/info", handlers.SystemInfo)
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	readTimeout, err := time.ParseDuration(s.config.API.ReadTimeout)
	if err != nil {
		readTimeout = 30 * time.Second
	}

	writeTimeout, err := time.ParseDuration(s.config.API.WriteTimeout)
	if err != nil {
		writeTimeout = 5 * time.Minute
	}

	s.server = &http.Server{
		Addr:         s.config.API.GetAddress(),
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.WithField("address", s.config.API.GetAddress()).Info("Starting console server")

	if s.config.API.IsTLSEnabled() {
		s.server.TLSConfig = middleware.GetSecureTLSConfig()
		return s.server.ListenAndServeTLS(s.config.API.TLSCertFile, s.config.API.TLSKeyFile)
	}

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down console server")
	if s.server == nil {
		return nil
	}
	// hijacked websocket connections are not closed by Shutdown
	_ = s.ws.Stop(ctx)
	return s.server.Shutdown(ctx)
}

// Router returns the underlying Gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}

package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/RRM006/NexusCRM-sub000/internal/auth"
	"github.com/RRM006/NexusCRM-sub000/internal/call"
	"github.com/RRM006/NexusCRM-sub000/internal/config"
	"github.com/RRM006/NexusCRM-sub000/internal/server"
	"github.com/RRM006/NexusCRM-sub000/internal/store"
)

// Server represents the REST API server. It also hosts the /ws upgrade
// endpoint of the signaling server.
type Server struct {
	config     *config.Config
	handler    *Handler
	signal     *server.Server
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, authMgr *auth.Manager, st *store.PostgresStore, cache *store.Cache, calls *call.Manager, signal *server.Server) *Server {
	gin.SetMode(cfg.GinMode)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	handler := NewHandler(cfg, authMgr, st, cache, calls, signal)

	s := &Server{
		config:  cfg,
		handler: handler,
		signal:  signal,
		router:  router,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Health check (no auth required)
	s.router.GET("/health", s.handler.HealthCheck)

	// WebSocket signaling endpoint; clients authenticate via the
	// register event after the upgrade
	s.router.GET("/ws", s.signal.HandleWS)

	// Swagger documentation
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.router.Group("/api/v1")

	// Token minting for the surrounding CRM
	v1.POST("/auth/token", s.handler.IssueToken)

	// Call history and live call introspection
	calls := v1.Group("/calls")
	calls.Use(s.authMiddleware())
	{
		calls.GET("", s.handler.ListCalls)
		calls.GET("/active", s.handler.ActiveCalls)
		calls.GET("/:session_id", s.handler.GetCall)
	}
}

// authMiddleware verifies a bearer connection token and stores the
// principal on the request context
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" || !strings.HasPrefix(raw, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing bearer token"})
			return
		}

		principal, err := s.handler.auth.Verify(strings.TrimPrefix(raw, "Bearer "), time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid token"})
			return
		}

		c.Set("principal", principal)
		c.Next()
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.HTTPHost, s.config.HTTPPort)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("[API] REST server starting on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

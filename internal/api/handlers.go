// Package api provides the REST API handlers for nexus-rtc
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RRM006/NexusCRM-sub000/internal/auth"
	"github.com/RRM006/NexusCRM-sub000/internal/call"
	"github.com/RRM006/NexusCRM-sub000/internal/config"
	"github.com/RRM006/NexusCRM-sub000/internal/models"
	"github.com/RRM006/NexusCRM-sub000/internal/server"
	"github.com/RRM006/NexusCRM-sub000/internal/store"
)

// Handler holds the API dependencies
type Handler struct {
	config *config.Config
	auth   *auth.Manager
	store  *store.PostgresStore
	cache  *store.Cache
	calls  *call.Manager
	signal *server.Server
}

// NewHandler creates a new API handler
func NewHandler(cfg *config.Config, authMgr *auth.Manager, st *store.PostgresStore, cache *store.Cache, calls *call.Manager, signal *server.Server) *Handler {
	return &Handler{
		config: cfg,
		auth:   authMgr,
		store:  st,
		cache:  cache,
		calls:  calls,
		signal: signal,
	}
}

// IssueTokenRequest is the request body for minting a connection token
type IssueTokenRequest struct {
	UserID      string      `json:"user_id" binding:"required" example:"usr_42"`
	DisplayName string      `json:"display_name" example:"Jordan Reyes"`
	Role        models.Role `json:"role" binding:"required" example:"ADMIN"`
	TenantID    string      `json:"tenant_id" binding:"required" example:"tnt_7"`
}

// IssueTokenResponse carries the signed connection token
type IssueTokenResponse struct {
	Token string `json:"token"`
}

// HealthResponse is the health check body
type HealthResponse struct {
	Status      string `json:"status" example:"ok"`
	ActiveCalls int    `json:"active_calls" example:"3"`
	Connections int    `json:"connections" example:"17"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid request"`
	Details string `json:"details,omitempty" example:"Field 'user_id' is required"`
}

// HealthCheck godoc
// @Summary Health check
// @Description Reports service liveness with live session and connection counts
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		ActiveCalls: h.calls.ActiveCount(),
		Connections: h.signal.ConnectionCount(),
	})
}

// IssueToken godoc
// @Summary Mint a connection token
// @Description Signs a connection token for a CRM user; guarded by the provisioning key
// @Tags Auth
// @Accept json
// @Produce json
// @Param X-Provisioning-Key header string true "Shared provisioning key"
// @Param request body IssueTokenRequest true "Principal to issue for"
// @Success 200 {object} IssueTokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/token [post]
func (h *Handler) IssueToken(c *gin.Context) {
	if h.config.ProvisioningKey == "" || c.GetHeader("X-Provisioning-Key") != h.config.ProvisioningKey {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid provisioning key"})
		return
	}

	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: err.Error()})
		return
	}

	token, err := h.auth.Issue(time.Now(), models.Principal{
		UserID:      req.UserID,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		TenantID:    req.TenantID,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to issue token", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, IssueTokenResponse{Token: token})
}

// ListCalls godoc
// @Summary List call history
// @Description Get recent call records for the authenticated tenant
// @Tags Calls
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum records to return" default(100)
// @Success 200 {array} models.CallRecord
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/calls [get]
func (h *Handler) ListCalls(c *gin.Context) {
	principal := c.MustGet("principal").(models.Principal)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	records, err := h.store.ListCalls(c.Request.Context(), principal.TenantID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch calls", Details: err.Error()})
		return
	}

	if records == nil {
		records = []*models.CallRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// GetCall godoc
// @Summary Get a call record
// @Description Get the call record for a session id
// @Tags Calls
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 200 {object} models.CallRecord
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/calls/{session_id} [get]
func (h *Handler) GetCall(c *gin.Context) {
	principal := c.MustGet("principal").(models.Principal)
	sessionID := c.Param("session_id")

	record, err := h.store.GetCallBySession(c.Request.Context(), principal.TenantID, sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Call not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// ActiveCalls godoc
// @Summary List live call sessions
// @Description Get the in-memory call sessions of the authenticated tenant
// @Tags Calls
// @Produce json
// @Security BearerAuth
// @Success 200 {array} call.Session
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/calls/active [get]
func (h *Handler) ActiveCalls(c *gin.Context) {
	principal := c.MustGet("principal").(models.Principal)

	sessions := []call.Session{}
	for _, sess := range h.calls.ActiveSessions() {
		if sess.TenantID == principal.TenantID {
			sessions = append(sessions, sess)
		}
	}

	c.JSON(http.StatusOK, sessions)
}

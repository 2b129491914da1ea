package handler

import (
	"context"
	"net/http"
	"time"

	"payment-terminal-bridge/internal/adapter/http/dto"
	"payment-terminal-bridge/internal/adapter/http/middleware"
	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"
	"payment-terminal-bridge/pkg/apperror"
	"payment-terminal-bridge/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles token issuance and client provisioning.
type AuthHandler struct {
	authSvc ports.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// IssueToken handles POST /api/v1/auth/token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	token, expiry, err := h.authSvc.IssueToken(c.Request.Context(), req.ClientID, req.Secret)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Lets the audit middleware attribute the login.
	c.Set(middleware.CtxClientID, req.ClientID)
	response.OK(c, dto.TokenResponse{
		Token:     token,
		ExpiresAt: expiry.Unix(),
	})
}

// CreateClient handles POST /api/v1/clients.
func (h *AuthHandler) CreateClient(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	client, err := h.authSvc.CreateClient(c.Request.Context(), ports.CreateClientRequest{
		ID:         req.ClientID,
		Secret:     req.Secret,
		Role:       domain.ClientRole(req.Role),
		TerminalID: req.TerminalID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ClientResponse{
		ClientID:   client.ID,
		Role:       string(client.Role),
		TerminalID: client.TerminalID,
		CreatedAt:  client.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// healthTimeout bounds each dependency ping.
const healthTimeout = 2 * time.Second

// HealthCheck handles GET /health, pinging Postgres and Redis.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			err := checker.Ping(ctx)
			cancel()
			if err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}

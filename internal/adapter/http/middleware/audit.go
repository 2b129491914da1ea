package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// Routes are matched on their registered pattern, so the terminal id in the
// path becomes the audited resource. Reconciliation is audited by the
// reporting service itself.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			return
		}

		action, resourceType := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		var clientID *string
		if id := c.GetString(CtxClientID); id != "" {
			clientID = &id
		}
		resourceID := c.Param(ParamTerminalID)
		if resourceID == "" && clientID != nil {
			resourceID = *clientID
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"request_id": c.GetString(CtxRequestID),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			ClientID:     clientID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapRouteToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == "/api/v1/auth/token" && method == http.MethodPost:
		return domain.AuditActionToken, "session"
	case route == "/api/v1/clients" && method == http.MethodPost:
		return domain.AuditActionClientCreate, "client"
	case route == "/api/v1/terminals/:terminalID/void" && method == http.MethodPost:
		return domain.AuditActionVoid, "transaction"
	case route == "/api/v1/terminals/:terminalID/return" && method == http.MethodPost:
		return domain.AuditActionReturn, "transaction"
	case route == "/api/v1/terminals/:terminalID/cancel" && method == http.MethodPost:
		return domain.AuditActionCancel, "terminal"
	case route == "/api/v1/terminals/:terminalID/binding" && method == http.MethodPut:
		return domain.AuditActionBindingUpdate, "binding"
	case route == "/api/v1/terminals/:terminalID/binding/swap" && method == http.MethodPost:
		return domain.AuditActionBindingSwap, "binding"
	}
	return "", ""
}

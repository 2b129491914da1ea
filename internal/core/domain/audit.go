package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionBindingSwap   AuditAction = "BINDING_SWAP"
	AuditActionBindingUpdate AuditAction = "BINDING_UPDATE"
	AuditActionVoid          AuditAction = "VOID"
	AuditActionReturn        AuditAction = "RETURN"
	AuditActionCancel        AuditAction = "CANCEL"
	AuditActionReconcile     AuditAction = "RECONCILE"
	AuditActionToken         AuditAction = "TOKEN"
	AuditActionClientCreate  AuditAction = "CLIENT_CREATE"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	ClientID     *string     `json:"client_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}

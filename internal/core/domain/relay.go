package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RelayCommandStatus is the lifecycle state of a queued relay command.
type RelayCommandStatus string

const (
	RelayStatusQueued    RelayCommandStatus = "queued"
	RelayStatusClaimed   RelayCommandStatus = "claimed"
	RelayStatusCompleted RelayCommandStatus = "completed"
	RelayStatusFailed    RelayCommandStatus = "failed"
	RelayStatusExpired   RelayCommandStatus = "expired"
)

// IsFinal returns true once the relay (or the orchestrator) has closed the command.
func (s RelayCommandStatus) IsFinal() bool {
	return s == RelayStatusCompleted || s == RelayStatusFailed || s == RelayStatusExpired
}

// ErrRelayNotClaimed is returned when a relay reports the outcome of a
// command that is no longer in the claimed state.
var ErrRelayNotClaimed = errors.New("relay command not claimed")

// ErrCommandInFlight marks a command the bridge stopped waiting for after a
// relay had already claimed it. The reader may still act on it.
var ErrCommandInFlight = errors.New("relay command claimed and still in flight")

// Relay command types beyond the payment operations.
const (
	RelayCommandIdentify = "identify"
	RelayCommandReset    = "reset"
	RelayCommandBeep     = "beep"
)

// RelayCommand is a command queued for a local relay process that can reach
// reader hardware the orchestrator cannot.
type RelayCommand struct {
	ID           uuid.UUID          `json:"id"`
	Type         string             `json:"type"`
	TargetDevice string             `json:"target_device"`
	Sequence     int64              `json:"sequence"`
	Payload      json.RawMessage    `json:"payload"`
	Status       RelayCommandStatus `json:"status"`
	Result       json.RawMessage    `json:"result,omitempty"`
	Error        *string            `json:"error,omitempty"`
	Ambiguous    bool               `json:"ambiguous"`
	ClaimedBy    *string            `json:"claimed_by,omitempty"`
	ExpiresAt    time.Time          `json:"expires_at"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// Expired reports whether the command passed its deadline at now.
func (c *RelayCommand) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

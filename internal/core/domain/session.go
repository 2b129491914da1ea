package domain

import (
	"time"

	"github.com/google/uuid"
)

// TerminalState is the observable state machine position of one terminal.
type TerminalState struct {
	TerminalID    string            `json:"terminal_id"`
	Status        TransactionStatus `json:"status"`
	TransactionID *uuid.UUID        `json:"transaction_id,omitempty"`
	Operation     OperationKind     `json:"operation,omitempty"`
	ReaderID      string            `json:"reader_id,omitempty"`
	Error         string            `json:"error,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

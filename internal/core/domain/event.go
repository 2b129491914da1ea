package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies a StatusEvent.
type EventType string

const (
	EventStatus            EventType = "status"
	EventReaderOffline     EventType = "reader_offline"
	EventFailoverSuggested EventType = "failover_suggested"
	EventResult            EventType = "result"
)

// StatusEvent is published on every state transition a caller may observe.
type StatusEvent struct {
	TerminalID     string             `json:"terminal_id"`
	TransactionID  *uuid.UUID         `json:"transaction_id,omitempty"`
	Type           EventType          `json:"type"`
	Status         TransactionStatus  `json:"status"`
	ReaderID       string             `json:"reader_id,omitempty"`
	BackupReaderID string             `json:"backup_reader_id,omitempty"`
	Result         *TransactionResult `json:"result,omitempty"`
	Error          string             `json:"error,omitempty"`
	At             time.Time          `json:"at"`
}

package domain

import "time"

// DefaultFailoverTimeout applies when a binding has no explicit timeout.
const DefaultFailoverTimeout = 10 * time.Second

// BackendKind selects how commands reach a reader.
type BackendKind string

const (
	BackendRelay     BackendKind = "relay"
	BackendDirect    BackendKind = "direct"
	BackendSimulator BackendKind = "simulator"
)

// Valid reports whether k names a known backend.
func (k BackendKind) Valid() bool {
	switch k {
	case BackendRelay, BackendDirect, BackendSimulator:
		return true
	}
	return false
}

// TerminalBinding maps a terminal to its primary and optional backup reader.
// Values are treated as immutable snapshots: a swap produces a new binding.
type TerminalBinding struct {
	TerminalID      string        `json:"terminal_id"`
	PrimaryReaderID string        `json:"primary_reader_id"`
	BackupReaderID  *string       `json:"backup_reader_id,omitempty"`
	FailoverTimeout time.Duration `json:"failover_timeout"`
	Backend         BackendKind   `json:"backend"`
	Version         int64         `json:"version"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// HasBackup returns true if a backup reader is configured.
func (b *TerminalBinding) HasBackup() bool {
	return b.BackupReaderID != nil && *b.BackupReaderID != ""
}

// Timeout returns the failover timeout, falling back to the default.
func (b *TerminalBinding) Timeout() time.Duration {
	if b.FailoverTimeout <= 0 {
		return DefaultFailoverTimeout
	}
	return b.FailoverTimeout
}

// Swapped returns a copy of the binding with primary and backup exchanged.
func (b TerminalBinding) Swapped() TerminalBinding {
	if !b.HasBackup() {
		return b
	}
	oldPrimary := b.PrimaryReaderID
	b.PrimaryReaderID = *b.BackupReaderID
	b.BackupReaderID = &oldPrimary
	b.Version++
	return b
}

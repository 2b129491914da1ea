package domain

import "time"

// ClientRole scopes what an API client may do.
type ClientRole string

const (
	RoleTerminal ClientRole = "terminal"
	RoleOperator ClientRole = "operator"
)

// APIClient is a caller allowed to obtain access tokens: a POS terminal
// (bound to one terminal id) or a back-office operator.
type APIClient struct {
	ID         string     `json:"id"`
	SecretHash string     `json:"-"` // Argon2id, never expose
	Role       ClientRole `json:"role"`
	TerminalID *string    `json:"terminal_id,omitempty"`
	Disabled   bool       `json:"disabled"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CanAccessTerminal reports whether the client may operate terminalID.
func (c *APIClient) CanAccessTerminal(terminalID string) bool {
	if c.Role == RoleOperator {
		return true
	}
	return c.TerminalID != nil && *c.TerminalID == terminalID
}

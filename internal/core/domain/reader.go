package domain

import "time"

// Reader is a physical payment reader known to the registry.
// Only IsOnline and LastSeenAt are written by this service; everything else
// is owned by hardware discovery.
type Reader struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Address        string     `json:"address"` // host:port of the reader's local API
	SerialNumber   string     `json:"serial_number"`
	IsOnline       bool       `json:"is_online"`
	LastSeenAt     *time.Time `json:"last_seen_at,omitempty"`
	CredentialsEnc string     `json:"-"` // AES-256-GCM encrypted "user:password"
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ReaderIdentity is what a reader reports about itself when pinged.
type ReaderIdentity struct {
	SerialNumber string `json:"serial_number"`
	Model        string `json:"model,omitempty"`
	Firmware     string `json:"firmware,omitempty"`
}

// Matches reports whether the identity belongs to the registered reader.
// A registry entry without a serial number accepts any device.
func (r *Reader) Matches(id *ReaderIdentity) bool {
	if r.SerialNumber == "" || id == nil {
		return true
	}
	return r.SerialNumber == id.SerialNumber
}

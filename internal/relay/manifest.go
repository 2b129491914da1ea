package relay

import (
	"errors"
	"fmt"
	"strings"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"

	"github.com/BurntSushi/toml"
)

// Device is one reader the relay can reach on its local network.
type Device struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Address string `toml:"address"`
	// Credentials is a plaintext "user:password" pair. Prefer
	// CredentialsEnc, which is produced by the same AES key the bridge uses.
	Credentials    string `toml:"credentials"`
	CredentialsEnc string `toml:"credentials_enc"`
}

// Manifest lists the devices a relay serves.
//
//	relay_id = "store-12"
//
//	[[device]]
//	id = "reader-a"
//	address = "10.0.4.21:8080"
//	credentials_enc = "..."
type Manifest struct {
	RelayID string   `toml:"relay_id"`
	Devices []Device `toml:"device"`
}

// LoadManifest decodes and validates a TOML device manifest.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	md, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("manifest %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks that every device is addressable and listed once.
func (m *Manifest) Validate() error {
	if len(m.Devices) == 0 {
		return errors.New("no devices")
	}
	seen := make(map[string]bool, len(m.Devices))
	for i, d := range m.Devices {
		if d.ID == "" {
			return fmt.Errorf("device %d: id is required", i)
		}
		if seen[d.ID] {
			return fmt.Errorf("device %s listed twice", d.ID)
		}
		seen[d.ID] = true
		if d.Address == "" {
			return fmt.Errorf("device %s: address is required", d.ID)
		}
		if d.Credentials != "" && d.CredentialsEnc != "" {
			return fmt.Errorf("device %s: set credentials or credentials_enc, not both", d.ID)
		}
	}
	return nil
}

// DeviceIDs returns the ids the relay claims commands for.
func (m *Manifest) DeviceIDs() []string {
	ids := make([]string, len(m.Devices))
	for i, d := range m.Devices {
		ids[i] = d.ID
	}
	return ids
}

// Readers converts the manifest into reader records the direct backend can
// drive. Plaintext credentials are encrypted with enc so that every device
// takes the same decrypt path.
func (m *Manifest) Readers(enc ports.EncryptionService) (map[string]*domain.Reader, error) {
	out := make(map[string]*domain.Reader, len(m.Devices))
	for _, d := range m.Devices {
		rd := &domain.Reader{
			ID:             d.ID,
			Name:           d.Name,
			Address:        d.Address,
			CredentialsEnc: d.CredentialsEnc,
			IsOnline:       true,
		}
		if d.Credentials != "" {
			sealed, err := enc.Encrypt(d.Credentials)
			if err != nil {
				return nil, fmt.Errorf("device %s: seal credentials: %w", d.ID, err)
			}
			rd.CredentialsEnc = sealed
		}
		out[d.ID] = rd
	}
	return out, nil
}

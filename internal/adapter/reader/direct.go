package reader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// maxResponseBytes bounds a reader response body.
const maxResponseBytes = 1 << 20

// DirectBackend posts commands straight to a reader's local HTTP API at
// http://{address}/v1/{op}, authenticating with the reader's stored
// credentials.
type DirectBackend struct {
	httpClient HTTPClient
	encSvc     ports.EncryptionService
}

// NewDirectBackend creates a direct HTTP backend.
func NewDirectBackend(httpClient HTTPClient, encSvc ports.EncryptionService) *DirectBackend {
	return &DirectBackend{httpClient: httpClient, encSvc: encSvc}
}

// Send implements Backend.
func (b *DirectBackend) Send(ctx context.Context, rd *domain.Reader, op string, payload map[string]any) (map[string]any, error) {
	if rd.Address == "" {
		return nil, fmt.Errorf("%w: reader %s has no address", ErrTransport, rd.ID)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", op, err)
	}

	url := fmt.Sprintf("http://%s/v1/%s", rd.Address, op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if rd.CredentialsEnc != "" {
		creds, err := b.encSvc.Decrypt(rd.CredentialsEnc)
		if err != nil {
			return nil, fmt.Errorf("decrypt reader credentials: %w", err)
		}
		user, pass, _ := strings.Cut(creds, ":")
		req.SetBasicAuth(user, pass)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: reader returned HTTP %d: %s", ErrTransport, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	out := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}
	return out, nil
}

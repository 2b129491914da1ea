// Package reader carries commands from the orchestrator to payment reader
// hardware. A Gateway holds one Backend per transport; each ReaderClient it
// returns stays on that backend for the whole transaction and turns raw
// reader responses into canonical results.
package reader

import (
	"context"
	"errors"
	"fmt"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"

	"github.com/rs/zerolog"
)

// ErrTransport marks failures to exchange a command with a reader. A
// Transact error wrapping ErrTransport means the reader may or may not have
// acted on the command.
var ErrTransport = errors.New("reader transport failure")

// ErrUnknownBackend is returned by Client for an unregistered backend kind.
var ErrUnknownBackend = errors.New("unknown reader backend")

// Operation names for non-payment commands.
const (
	opIdentify = domain.RelayCommandIdentify
	opReset    = domain.RelayCommandReset
	opBeep     = domain.RelayCommandBeep
)

// Backend sends one operation to a reader and returns its decoded response.
type Backend interface {
	Send(ctx context.Context, rd *domain.Reader, op string, payload map[string]any) (map[string]any, error)
}

// Gateway implements ports.ReaderGateway.
type Gateway struct {
	backends map[domain.BackendKind]Backend
	log      zerolog.Logger
}

// NewGateway creates a gateway with no backends registered.
func NewGateway(log zerolog.Logger) *Gateway {
	return &Gateway{backends: make(map[domain.BackendKind]Backend), log: log}
}

// Register installs the backend for kind, replacing any previous one.
func (g *Gateway) Register(kind domain.BackendKind, b Backend) {
	g.backends[kind] = b
}

// Client returns a ReaderClient bound to one backend.
func (g *Gateway) Client(kind domain.BackendKind) (ports.ReaderClient, error) {
	b, ok := g.backends[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
	return &client{backend: b, kind: kind, log: g.log.With().Str("backend", string(kind)).Logger()}, nil
}

type client struct {
	backend Backend
	kind    domain.BackendKind
	log     zerolog.Logger
}

func (c *client) Transact(ctx context.Context, rd *domain.Reader, cmd domain.ReaderCommand) (*domain.TransactionResult, error) {
	raw, err := c.send(ctx, rd, string(cmd.Kind), cmd.Payload)
	if err != nil {
		return nil, err
	}

	result := Normalize(raw)
	if !result.AuthorizedReported && result.Approved {
		c.log.Debug().Str("reader_id", rd.ID).Str("operation", string(cmd.Kind)).
			Str("requested", cmd.Requested.StringFixed(2)).
			Msg("no authorized amount in reader response, assuming requested amount")
	}
	result.Finalize(cmd.Requested)
	return result, nil
}

func (c *client) Identify(ctx context.Context, rd *domain.Reader) (*domain.ReaderIdentity, error) {
	raw, err := c.send(ctx, rd, opIdentify, nil)
	if err != nil {
		return nil, err
	}
	return NormalizeIdentity(raw), nil
}

func (c *client) Reset(ctx context.Context, rd *domain.Reader) error {
	_, err := c.send(ctx, rd, opReset, nil)
	return err
}

func (c *client) Beep(ctx context.Context, rd *domain.Reader) error {
	_, err := c.send(ctx, rd, opBeep, nil)
	return err
}

// send normalizes backend errors: context errors pass through so callers can
// tell cancellation and deadlines apart, everything else wraps ErrTransport.
func (c *client) send(ctx context.Context, rd *domain.Reader, op string, payload map[string]any) (map[string]any, error) {
	raw, err := c.backend.Send(ctx, rd, op, payload)
	if err == nil {
		return raw, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(err, domain.ErrCommandInFlight) {
			return nil, fmt.Errorf("%s on %s: %w", op, rd.ID, err)
		}
		return nil, fmt.Errorf("%s on %s: %w", op, rd.ID, ctxErr)
	}
	if errors.Is(err, ErrTransport) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s on %s: %v", ErrTransport, op, rd.ID, err)
}

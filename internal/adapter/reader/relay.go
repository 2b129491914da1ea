package reader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"payment-terminal-bridge/internal/adapter/metrics"
	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RelayBackend queues commands in Postgres for a relay agent on the reader's
// local network and polls for the outcome.
type RelayBackend struct {
	commands ports.RelayCommandRepository
	seq      ports.SequenceStore
	poll     time.Duration
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewRelayBackend creates a relay backend polling every poll and giving
// unclaimed commands ttl to be picked up.
func NewRelayBackend(commands ports.RelayCommandRepository, seq ports.SequenceStore, poll, ttl time.Duration, log zerolog.Logger) *RelayBackend {
	return &RelayBackend{commands: commands, seq: seq, poll: poll, ttl: ttl, log: log, now: time.Now}
}

// Send implements Backend.
func (b *RelayBackend) Send(ctx context.Context, rd *domain.Reader, op string, payload map[string]any) (map[string]any, error) {
	seq, err := b.seq.Next(ctx, rd.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: next sequence: %v", ErrTransport, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", op, err)
	}

	now := b.now()
	expires := now.Add(b.ttl)
	if dl, ok := ctx.Deadline(); ok && dl.Before(expires) {
		expires = dl
	}
	cmd := &domain.RelayCommand{
		ID:           uuid.New(),
		Type:         op,
		TargetDevice: rd.ID,
		Sequence:     seq,
		Payload:      data,
		Status:       domain.RelayStatusQueued,
		ExpiresAt:    expires,
		CreatedAt:    now,
	}
	if err := b.commands.Enqueue(ctx, cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	log := b.log.With().Str("relay_command_id", cmd.ID.String()).Str("reader_id", rd.ID).Str("op", op).Logger()
	log.Debug().Int64("sequence", seq).Msg("relay command queued")

	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, b.abandon(cmd, ctx.Err(), log)
		case <-ticker.C:
		}

		cur, err := b.commands.GetByID(ctx, cmd.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, b.abandon(cmd, ctx.Err(), log)
			}
			log.Warn().Err(err).Msg("relay poll failed")
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("%w: relay command %s disappeared", ErrTransport, cmd.ID)
		}

		switch cur.Status {
		case domain.RelayStatusCompleted:
			metrics.RelayCommands.WithLabelValues(op, string(cur.Status)).Inc()
			return decodeRelayResult(cur.Result)
		case domain.RelayStatusFailed:
			metrics.RelayCommands.WithLabelValues(op, string(cur.Status)).Inc()
			msg := "relay reported failure"
			if cur.Error != nil {
				msg = *cur.Error
			}
			return nil, fmt.Errorf("%w: %s", ErrTransport, msg)
		case domain.RelayStatusExpired:
			metrics.RelayCommands.WithLabelValues(op, string(cur.Status)).Inc()
			return nil, fmt.Errorf("%w: relay command expired before a relay claimed it", ErrTransport)
		}
	}
}

// abandon stops waiting for cmd. A command no relay has claimed is expired
// and cause is returned as is. A claimed command, or one whose state could
// not be settled, is left for the relay and reported as ErrCommandInFlight.
func (b *RelayBackend) abandon(cmd *domain.RelayCommand, cause error, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	expired, err := b.commands.Expire(ctx, cmd.ID)
	switch {
	case err != nil:
		log.Error().Err(err).Msg("failed to expire abandoned relay command")
	case expired:
		metrics.RelayCommands.WithLabelValues(cmd.Type, string(domain.RelayStatusExpired)).Inc()
		log.Info().Msg("relay command withdrawn before claim")
		return cause
	default:
		log.Warn().Msg("relay command already claimed, outcome left to relay")
	}
	return fmt.Errorf("%w: %w", domain.ErrCommandInFlight, cause)
}

// SweepStale expires queued commands that outlived their deadline without a
// relay claiming them, e.g. after the bridge instance that queued them died.
// It runs until ctx is done.
func (b *RelayBackend) SweepStale(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		n, err := b.commands.ExpireStale(ctx, b.now())
		switch {
		case err != nil:
			if ctx.Err() == nil {
				b.log.Warn().Err(err).Msg("relay sweep failed")
			}
		case n > 0:
			b.log.Info().Int64("expired", n).Msg("expired stale relay commands")
		}
	}
}

func decodeRelayResult(data []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode relay result: %v", ErrTransport, err)
	}
	return out, nil
}

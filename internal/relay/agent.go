// Package relay is the agent that runs next to reader hardware the bridge
// cannot reach. It claims queued commands for its devices, drives them through
// the reader's local API, and writes the outcome back to the queue.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"payment-terminal-bridge/internal/adapter/metrics"
	"payment-terminal-bridge/internal/adapter/reader"
	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultPoll        = 250 * time.Millisecond
	defaultExecTimeout = 90 * time.Second
	reportTimeout      = 5 * time.Second

	interruptedMsg = "relay restarted during execution, reader state unknown"
)

// AgentConfig tunes the poll loop.
type AgentConfig struct {
	ID           string
	PollInterval time.Duration
	// ExecTimeout bounds a single reader exchange, including waiting for a card.
	ExecTimeout time.Duration
}

// Agent executes relay commands exactly once per claim. Every command is
// journaled before it reaches the reader; a command found in the journal
// without an outcome after a restart is reported as an ambiguous failure
// and never replayed.
type Agent struct {
	cfg      AgentConfig
	commands ports.RelayCommandRepository
	journal  *Journal
	backend  reader.Backend
	readers  map[string]*domain.Reader
	devices  []string
	log      zerolog.Logger
	now      func() time.Time
}

// NewAgent creates an agent serving readers.
func NewAgent(commands ports.RelayCommandRepository, journal *Journal, backend reader.Backend, readers map[string]*domain.Reader, cfg AgentConfig, log zerolog.Logger) *Agent {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPoll
	}
	if cfg.ExecTimeout <= 0 {
		cfg.ExecTimeout = defaultExecTimeout
	}
	devices := make([]string, 0, len(readers))
	for id := range readers {
		devices = append(devices, id)
	}
	sort.Strings(devices)

	return &Agent{
		cfg:      cfg,
		commands: commands,
		journal:  journal,
		backend:  backend,
		readers:  readers,
		devices:  devices,
		log:      log.With().Str("relay_id", cfg.ID).Logger(),
		now:      time.Now,
	}
}

// Run recovers the journal and then polls until ctx is done. A command in
// flight when ctx ends is finished and reported before Run returns.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.Recover(ctx); err != nil {
		return err
	}
	a.log.Info().Strs("devices", a.devices).Msg("relay agent polling")

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		a.flush(ctx)
		a.drain(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Recover closes out commands left in the journal by a previous run.
// Interrupted ones become ambiguous failures; ones with a recorded outcome
// are reported again.
func (a *Agent) Recover(ctx context.Context) error {
	pending, err := a.journal.Pending()
	if err != nil {
		return err
	}

	for i := range pending {
		e := &pending[i]
		if e.Executed() {
			continue
		}
		msg := interruptedMsg
		if err := a.journal.Record(e.CommandID, domain.RelayStatusFailed, nil, &msg, true); err != nil {
			return err
		}
		a.log.Warn().
			Str("relay_command_id", e.CommandID.String()).
			Str("reader_id", e.Device).
			Str("op", e.Type).
			Msg("interrupted relay command reported as ambiguous")
	}

	a.flush(ctx)
	return nil
}

// flush reports every executed but unreported entry. Entries whose report
// fails stay in the journal for the next pass.
func (a *Agent) flush(ctx context.Context) {
	pending, err := a.journal.Pending()
	if err != nil {
		a.log.Error().Err(err).Msg("read relay journal")
		return
	}
	for i := range pending {
		if pending[i].Executed() {
			a.report(ctx, &pending[i])
		}
	}
}

// drain claims and executes commands until the queue is empty for our devices.
func (a *Agent) drain(ctx context.Context) {
	for ctx.Err() == nil {
		cmd, err := a.commands.ClaimNext(ctx, a.cfg.ID, a.devices)
		if err != nil {
			if ctx.Err() == nil {
				a.log.Warn().Err(err).Msg("claim relay command")
			}
			return
		}
		if cmd == nil {
			return
		}
		a.execute(ctx, cmd)
	}
}

func (a *Agent) execute(ctx context.Context, cmd *domain.RelayCommand) {
	log := a.log.With().
		Str("relay_command_id", cmd.ID.String()).
		Str("reader_id", cmd.TargetDevice).
		Str("op", cmd.Type).
		Int64("sequence", cmd.Sequence).
		Logger()

	if err := a.journal.Begin(cmd, a.now()); err != nil {
		// Without a journal entry a crash mid-exchange would go unnoticed, so
		// the command is refused rather than executed.
		log.Error().Err(err).Msg("journal unavailable, refusing command")
		msg := "relay journal unavailable"
		a.finish(ctx, cmd.ID, domain.RelayStatusFailed, nil, &msg, false, log)
		return
	}

	status, result, errMsg, ambiguous := a.exchange(cmd)
	metrics.RelayCommands.WithLabelValues(cmd.Type, string(status)).Inc()

	if err := a.journal.Record(cmd.ID, status, result, errMsg, ambiguous); err != nil {
		log.Error().Err(err).Msg("journal outcome")
		// The entry has no outcome; report directly so the bridge is not left
		// waiting. A restart before that lands reports it as ambiguous.
		if a.finish(ctx, cmd.ID, status, result, errMsg, ambiguous, log) {
			if err := a.journal.Complete(cmd.ID); err != nil {
				log.Error().Err(err).Msg("clear journal entry")
			}
		}
		return
	}

	e, err := a.journal.Get(cmd.ID)
	if err != nil || e == nil {
		log.Error().Err(err).Msg("reload journal entry")
		return
	}
	a.report(ctx, e)
}

// exchange drives one command through the reader.
func (a *Agent) exchange(cmd *domain.RelayCommand) (domain.RelayCommandStatus, []byte, *string, bool) {
	fail := func(msg string, ambiguous bool) (domain.RelayCommandStatus, []byte, *string, bool) {
		return domain.RelayStatusFailed, nil, &msg, ambiguous
	}

	rd, ok := a.readers[cmd.TargetDevice]
	if !ok {
		return fail(fmt.Sprintf("device %s is not served by this relay", cmd.TargetDevice), false)
	}

	payload := map[string]any{}
	if len(bytes.TrimSpace(cmd.Payload)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(cmd.Payload))
		dec.UseNumber()
		if err := dec.Decode(&payload); err != nil {
			return fail(fmt.Sprintf("decode payload: %v", err), false)
		}
	}

	// Detached from the agent's context: a shutdown must not cut an exchange
	// off halfway through a card read.
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ExecTimeout)
	defer cancel()

	out, err := a.backend.Send(ctx, rd, cmd.Type, payload)
	if err != nil {
		return fail(err.Error(), errors.Is(err, reader.ErrTransport) || errors.Is(err, context.DeadlineExceeded))
	}
	result, err := json.Marshal(out)
	if err != nil {
		return fail(fmt.Sprintf("encode result: %v", err), true)
	}
	return domain.RelayStatusCompleted, result, nil, false
}

// report writes a journaled outcome back to the queue and drops the entry
// once the queue has it.
func (a *Agent) report(ctx context.Context, e *Entry) {
	log := a.log.With().Str("relay_command_id", e.CommandID.String()).Str("op", e.Type).Logger()
	if !a.finish(ctx, e.CommandID, e.Outcome, e.Result, e.Error, e.Ambiguous, log) {
		return
	}
	if err := a.journal.Complete(e.CommandID); err != nil {
		log.Error().Err(err).Msg("clear journal entry")
	}
}

// finish reports true once the queue holds the outcome or can no longer
// accept one.
func (a *Agent) finish(ctx context.Context, id uuid.UUID, status domain.RelayCommandStatus, result []byte, errMsg *string, ambiguous bool, log zerolog.Logger) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()

	err := a.commands.Finish(ctx, id, status, result, errMsg, ambiguous)
	switch {
	case err == nil:
		log.Info().Str("status", string(status)).Bool("ambiguous", ambiguous).Msg("relay command reported")
		return true
	case errors.Is(err, domain.ErrRelayNotClaimed):
		log.Warn().Msg("relay command already closed on the bridge, dropping outcome")
		return true
	default:
		log.Error().Err(err).Msg("report relay command, will retry")
		return false
	}
}

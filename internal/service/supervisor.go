package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"
	"payment-terminal-bridge/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Session describes the operation a Handle runs on a terminal.
type Session struct {
	TerminalID string
	Operation  domain.OperationKind
	Reader     *domain.Reader
	Client     ports.ReaderClient
	// Quiet sessions hold the terminal but publish no state transitions.
	Quiet bool
}

type terminalSession struct {
	state  domain.TerminalState
	handle *Handle
}

// Supervisor owns the state of every terminal and the lifetime of the
// operation running on it. State lives only here; callers read copies.
type Supervisor struct {
	mu           sync.Mutex
	sessions     map[string]*terminalSession
	events       *EventBus
	resetTimeout time.Duration
	active       sync.WaitGroup
	closed       bool
	log          zerolog.Logger
	now          func() time.Time
}

// NewSupervisor creates a supervisor publishing on events. resetTimeout
// bounds each best-effort reader reset.
func NewSupervisor(events *EventBus, resetTimeout time.Duration, log zerolog.Logger) *Supervisor {
	return &Supervisor{
		sessions:     make(map[string]*terminalSession),
		events:       events,
		resetTimeout: resetTimeout,
		log:          log,
		now:          time.Now,
	}
}

// Begin opens a session on s.TerminalID. The handle's context is detached
// from parent's cancellation: a caller hanging up does not abort a card the
// customer is already presenting. Only Cancel and Shutdown end it early.
func (s *Supervisor) Begin(parent context.Context, sess Session) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, apperror.ErrCancelled()
	}

	ts := s.session(sess.TerminalID)
	if ts.handle != nil {
		return nil, apperror.ErrReaderBusy(sess.Reader.ID)
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	h := &Handle{
		sup:        s,
		terminalID: sess.TerminalID,
		operation:  sess.Operation,
		reader:     sess.Reader,
		client:     sess.Client,
		quiet:      sess.Quiet,
		ctx:        ctx,
		cancel:     cancel,
		log: s.log.With().Str("terminal_id", sess.TerminalID).Str("reader_id", sess.Reader.ID).
			Str("operation", string(sess.Operation)).Logger(),
	}
	ts.handle = h
	s.active.Add(1)

	if !sess.Quiet && ts.state.Status.IsTerminal() {
		s.setState(ts, domain.TerminalState{TerminalID: sess.TerminalID, Status: domain.StatusIdle}, nil)
	}
	return h, nil
}

// Cancel aborts the operation in flight on terminalID and resets its reader.
// Returns false if nothing was running.
func (s *Supervisor) Cancel(terminalID string) bool {
	s.mu.Lock()
	var h *Handle
	if ts, ok := s.sessions[terminalID]; ok {
		h = ts.handle
	}
	if h != nil {
		h.cancelled.Store(true)
	}
	s.mu.Unlock()

	if h == nil {
		return false
	}
	h.cancel()
	h.Reset()
	return true
}

// ForceIdle moves terminalID to idle and clears its error.
func (s *Supervisor) ForceIdle(terminalID string) *domain.TerminalState {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.session(terminalID)
	s.setState(ts, domain.TerminalState{TerminalID: terminalID, Status: domain.StatusIdle}, nil)
	state := ts.state
	return &state
}

// Acknowledge returns a finished terminal to idle. It has no effect while an
// operation is in flight.
func (s *Supervisor) Acknowledge(terminalID string) *domain.TerminalState {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.session(terminalID)
	if (ts.handle == nil || ts.handle.quiet) && ts.state.Status != domain.StatusIdle {
		s.setState(ts, domain.TerminalState{TerminalID: terminalID, Status: domain.StatusIdle}, nil)
	}
	state := ts.state
	return &state
}

// State returns a copy of the terminal's state.
func (s *Supervisor) State(terminalID string) *domain.TerminalState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.session(terminalID).state
	return &state
}

// Shutdown cancels every open session and waits for them to close, so each
// gets to fire its reader reset.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	var open []*Handle
	for _, ts := range s.sessions {
		if ts.handle != nil {
			ts.handle.cancelled.Store(true)
			open = append(open, ts.handle)
		}
	}
	s.mu.Unlock()

	for _, h := range open {
		h.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.active.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// session must be called with s.mu held.
func (s *Supervisor) session(terminalID string) *terminalSession {
	ts, ok := s.sessions[terminalID]
	if !ok {
		ts = &terminalSession{state: domain.TerminalState{
			TerminalID: terminalID,
			Status:     domain.StatusIdle,
			UpdatedAt:  s.now(),
		}}
		s.sessions[terminalID] = ts
	}
	return ts
}

// setState must be called with s.mu held. Publishing under the lock keeps
// event order equal to state order.
func (s *Supervisor) setState(ts *terminalSession, state domain.TerminalState, result *domain.TransactionResult) {
	state.UpdatedAt = s.now()
	ts.state = state

	ev := domain.StatusEvent{
		TerminalID:    state.TerminalID,
		TransactionID: state.TransactionID,
		Type:          domain.EventStatus,
		Status:        state.Status,
		ReaderID:      state.ReaderID,
		Error:         state.Error,
		At:            state.UpdatedAt,
	}
	if result != nil {
		ev.Type = domain.EventResult
		ev.Result = result
	}
	s.events.Publish(ev)
}

func (s *Supervisor) transition(h *Handle, status domain.TransactionStatus, result *domain.TransactionResult, errMsg string) {
	if h.quiet {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts, ok := s.sessions[h.terminalID]
	if !ok || ts.handle != h || h.cancelled.Load() {
		return
	}
	s.setState(ts, domain.TerminalState{
		TerminalID:    h.terminalID,
		Status:        status,
		TransactionID: h.txID,
		Operation:     h.operation,
		ReaderID:      h.reader.ID,
		Error:         errMsg,
	}, result)
}

func (s *Supervisor) release(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ts, ok := s.sessions[h.terminalID]; ok && ts.handle == h {
		ts.handle = nil
		if !h.quiet && !h.cancelled.Load() && ts.state.Status.IsInFlight() {
			s.setState(ts, domain.TerminalState{
				TerminalID:    h.terminalID,
				Status:        domain.StatusError,
				TransactionID: h.txID,
				Operation:     h.operation,
				ReaderID:      h.reader.ID,
				Error:         "transaction interrupted",
			}, nil)
		}
	}
	s.active.Done()
}

// Handle is the scoped owner of one operation. Close must run on every exit
// path; it fires a reader reset if a command was sent and never answered.
type Handle struct {
	sup        *Supervisor
	terminalID string
	operation  domain.OperationKind
	reader     *domain.Reader
	client     ports.ReaderClient
	quiet      bool
	txID       *uuid.UUID

	ctx    context.Context
	cancel context.CancelFunc

	dispatched atomic.Bool
	responded  atomic.Bool
	resetDone  atomic.Bool
	cancelled  atomic.Bool
	closed     atomic.Bool

	log zerolog.Logger
}

// Context is cancelled by Cancel, Shutdown or Close.
func (h *Handle) Context() context.Context {
	return h.ctx
}

// SetTransaction attaches the persisted record id to subsequent events.
// Call before the first Transition.
func (h *Handle) SetTransaction(id uuid.UUID) {
	h.sup.mu.Lock()
	h.txID = &id
	h.sup.mu.Unlock()
}

// Transition publishes an intermediate status.
func (h *Handle) Transition(status domain.TransactionStatus) {
	h.sup.transition(h, status, nil, "")
}

// Finish publishes the final status. result may be nil for failures.
func (h *Handle) Finish(status domain.TransactionStatus, result *domain.TransactionResult, errMsg string) {
	h.sup.transition(h, status, result, errMsg)
}

// Dispatched marks that a command has been handed to the reader.
func (h *Handle) Dispatched() { h.dispatched.Store(true) }

// Responded marks that the reader answered the dispatched command.
func (h *Handle) Responded() { h.responded.Store(true) }

// Cancelled reports whether the operation was aborted by Cancel.
func (h *Handle) Cancelled() bool { return h.cancelled.Load() }

// Reset sends at most one best-effort reset to the reader for this session.
func (h *Handle) Reset() {
	if !h.resetDone.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.sup.resetTimeout)
	defer cancel()

	if err := h.client.Reset(ctx, h.reader); err != nil {
		h.log.Warn().Err(err).Msg("reader reset failed")
		return
	}
	h.log.Info().Msg("reader reset")
}

// Close ends the session. Safe to call more than once.
func (h *Handle) Close() {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}
	h.cancel()
	if h.dispatched.Load() && !h.responded.Load() {
		h.Reset()
	}
	h.sup.release(h)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"payment-terminal-bridge/internal/adapter/metrics"
	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"
	"payment-terminal-bridge/pkg/apperror"

	"github.com/rs/zerolog"
)

// BindingService implements ports.BindingManager. It caches bindings per
// terminal for cacheTTL and serializes writes to one terminal's binding.
// Other instances write to the same store, so a cached binding is re-read
// once it is older than cacheTTL.
type BindingService struct {
	bindings       ports.BindingRepository
	readers        ports.ReaderRepository
	gateway        ports.ReaderGateway
	defaultBackend domain.BackendKind
	cacheTTL       time.Duration
	log            zerolog.Logger
	now            func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedBinding
	locks map[string]*sync.Mutex
}

type cachedBinding struct {
	binding *domain.TerminalBinding
	loaded  time.Time
}

// NewBindingService creates a new BindingService.
func NewBindingService(
	bindings ports.BindingRepository,
	readers ports.ReaderRepository,
	gateway ports.ReaderGateway,
	defaultBackend domain.BackendKind,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *BindingService {
	return &BindingService{
		bindings:       bindings,
		readers:        readers,
		gateway:        gateway,
		defaultBackend: defaultBackend,
		cacheTTL:       cacheTTL,
		log:            log,
		now:            time.Now,
		cache:          make(map[string]cachedBinding),
		locks:          make(map[string]*sync.Mutex),
	}
}

// RefreshBinding reloads a terminal's binding from the configuration store.
func (s *BindingService) RefreshBinding(ctx context.Context, terminalID string) (*domain.TerminalBinding, error) {
	b, err := s.bindings.Get(ctx, terminalID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get binding: %w", err))
	}
	if b == nil || b.PrimaryReaderID == "" {
		s.mu.Lock()
		delete(s.cache, terminalID)
		s.mu.Unlock()
		return nil, apperror.ErrBindingNotFound(terminalID)
	}
	return s.store(b), nil
}

// Binding returns the cached binding, loading it on a miss or once the entry
// is older than the cache TTL. If the store cannot be read the last known
// binding is served. A terminal without a bound reader is a configuration
// error.
func (s *BindingService) Binding(ctx context.Context, terminalID string) (*domain.TerminalBinding, error) {
	s.mu.RLock()
	e, ok := s.cache[terminalID]
	s.mu.RUnlock()
	if ok && s.now().Sub(e.loaded) < s.cacheTTL {
		cp := *e.binding
		return &cp, nil
	}

	b, err := s.RefreshBinding(ctx, terminalID)
	switch {
	case err == nil:
		return b, nil
	case apperror.CodeOf(err) == apperror.CodeBindingNotFound:
		return nil, apperror.ErrConfiguration(fmt.Sprintf("terminal %s has no bound reader", terminalID))
	case ok:
		s.log.Warn().Err(err).Str("terminal_id", terminalID).Int64("version", e.binding.Version).
			Msg("binding reload failed, serving cached binding")
		cp := *e.binding
		return &cp, nil
	}
	return nil, err
}

// UpdateBinding writes a new binding for b.TerminalID.
func (s *BindingService) UpdateBinding(ctx context.Context, b *domain.TerminalBinding) (*domain.TerminalBinding, error) {
	if b.PrimaryReaderID == "" {
		return nil, apperror.Validation("primary_reader_id is required")
	}
	if b.HasBackup() && *b.BackupReaderID == b.PrimaryReaderID {
		return nil, apperror.Validation("backup reader must differ from primary")
	}
	if b.Backend == "" {
		b.Backend = s.defaultBackend
	}
	if !b.Backend.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown backend %q", b.Backend))
	}
	for _, id := range []*string{&b.PrimaryReaderID, b.BackupReaderID} {
		if id == nil || *id == "" {
			continue
		}
		rd, err := s.readers.GetByID(ctx, *id)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get reader: %w", err))
		}
		if rd == nil {
			return nil, apperror.ErrNotFound("reader " + *id)
		}
	}

	unlock := s.lockTerminal(b.TerminalID)
	defer unlock()

	stored, err := s.bindings.Upsert(ctx, b)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("upsert binding: %w", err))
	}

	s.log.Info().
		Str("terminal_id", stored.TerminalID).
		Str("primary_reader_id", stored.PrimaryReaderID).
		Int64("version", stored.Version).
		Msg("binding updated")

	return s.store(stored), nil
}

// SwapToBackup makes the backup reader primary. The swap is one conditional
// UPDATE on the version last seen by this instance; the cache changes only
// after the row is written.
func (s *BindingService) SwapToBackup(ctx context.Context, terminalID string) (*domain.Reader, error) {
	unlock := s.lockTerminal(terminalID)
	defer unlock()

	current, err := s.Binding(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if !current.HasBackup() {
		return nil, apperror.ErrConfiguration(fmt.Sprintf("terminal %s has no backup reader", terminalID))
	}

	swapped, err := s.bindings.Swap(ctx, terminalID, current.Version)
	if err != nil {
		if errors.Is(err, ports.ErrVersionConflict) {
			if _, rerr := s.RefreshBinding(ctx, terminalID); rerr != nil {
				s.log.Warn().Err(rerr).Str("terminal_id", terminalID).Msg("refresh after swap conflict failed")
			}
			return nil, apperror.ErrBindingConflict()
		}
		return nil, apperror.InternalError(fmt.Errorf("swap binding: %w", err))
	}
	b := s.store(swapped)
	metrics.FailoverSwaps.Inc()

	s.log.Warn().
		Str("terminal_id", terminalID).
		Str("primary_reader_id", b.PrimaryReaderID).
		Str("backup_reader_id", *b.BackupReaderID).
		Int64("version", b.Version).
		Msg("swapped to backup reader")

	return s.Reader(ctx, b.PrimaryReaderID)
}

// CheckReaderStatus pings the reader and records the outcome. Failures are
// reported as false, never as errors.
func (s *BindingService) CheckReaderStatus(ctx context.Context, readerID string) bool {
	rd, err := s.Reader(ctx, readerID)
	if err != nil {
		s.log.Warn().Err(err).Str("reader_id", readerID).Msg("reader status check: lookup failed")
		return false
	}
	client, err := s.gateway.Client(s.backendFor(readerID))
	if err != nil {
		s.log.Error().Err(err).Str("reader_id", readerID).Msg("reader status check: no backend")
		return false
	}

	pctx, cancel := context.WithTimeout(ctx, s.timeoutFor(readerID))
	defer cancel()

	identity, err := client.Identify(pctx, rd)
	online := err == nil && rd.Matches(identity)
	if err != nil {
		s.log.Info().Err(err).Str("reader_id", readerID).Msg("reader did not answer identity ping")
	} else if !online {
		s.log.Warn().Str("reader_id", readerID).Str("expected_serial", rd.SerialNumber).
			Str("actual_serial", identity.SerialNumber).Msg("reader identity mismatch")
	}

	s.MarkReader(ctx, readerID, online)
	return online
}

// MarkReader writes the online flag and, when online, the last-seen time.
func (s *BindingService) MarkReader(ctx context.Context, readerID string, online bool) {
	var seen *time.Time
	if online {
		now := s.now()
		seen = &now
	}
	if err := s.readers.UpdateStatus(context.WithoutCancel(ctx), readerID, online, seen); err != nil {
		s.log.Warn().Err(err).Str("reader_id", readerID).Bool("online", online).Msg("failed to record reader status")
	}
	metrics.SetReaderOnline(readerID, online)
}

// TriggerBeep asks the reader to beep so staff can find it. Best effort.
func (s *BindingService) TriggerBeep(ctx context.Context, readerID string) {
	rd, err := s.Reader(ctx, readerID)
	if err != nil {
		s.log.Warn().Err(err).Str("reader_id", readerID).Msg("beep: lookup failed")
		return
	}
	client, err := s.gateway.Client(s.backendFor(readerID))
	if err != nil {
		s.log.Error().Err(err).Str("reader_id", readerID).Msg("beep: no backend")
		return
	}

	bctx, cancel := context.WithTimeout(ctx, s.timeoutFor(readerID))
	defer cancel()
	if err := client.Beep(bctx, rd); err != nil {
		s.log.Warn().Err(err).Str("reader_id", readerID).Msg("beep failed")
	}
}

// Reader returns a registered reader.
func (s *BindingService) Reader(ctx context.Context, readerID string) (*domain.Reader, error) {
	rd, err := s.readers.GetByID(ctx, readerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get reader: %w", err))
	}
	if rd == nil {
		return nil, apperror.ErrConfiguration(fmt.Sprintf("reader %s is not registered", readerID))
	}
	return rd, nil
}

// store applies defaults, caches b and returns a copy.
func (s *BindingService) store(b *domain.TerminalBinding) *domain.TerminalBinding {
	if b.FailoverTimeout <= 0 {
		b.FailoverTimeout = domain.DefaultFailoverTimeout
	}
	if b.Backend == "" {
		b.Backend = s.defaultBackend
	}

	s.mu.Lock()
	s.cache[b.TerminalID] = cachedBinding{binding: b, loaded: s.now()}
	s.mu.Unlock()

	cp := *b
	return &cp
}

func (s *BindingService) lockTerminal(terminalID string) func() {
	s.mu.Lock()
	l, ok := s.locks[terminalID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[terminalID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// backendFor picks the backend of a cached binding that uses readerID.
func (s *BindingService) backendFor(readerID string) domain.BackendKind {
	if b := s.bindingWith(readerID); b != nil {
		return b.Backend
	}
	return s.defaultBackend
}

func (s *BindingService) timeoutFor(readerID string) time.Duration {
	if b := s.bindingWith(readerID); b != nil {
		return b.Timeout()
	}
	return domain.DefaultFailoverTimeout
}

func (s *BindingService) bindingWith(readerID string) *domain.TerminalBinding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.cache {
		if b := e.binding; b.PrimaryReaderID == readerID || (b.HasBackup() && *b.BackupReaderID == readerID) {
			return b
		}
	}
	return nil
}

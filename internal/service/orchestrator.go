package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"payment-terminal-bridge/internal/adapter/metrics"
	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"
	"payment-terminal-bridge/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// persistTimeout bounds writes made after the operation context has ended.
const persistTimeout = 5 * time.Second

// OrchestratorConfig holds the timing knobs of the transaction state machine.
type OrchestratorConfig struct {
	RequestTimeout    time.Duration
	CardTimeout       time.Duration
	PreflightAttempts int
	LockTTL           time.Duration
	ResultTTL         time.Duration
}

// Orchestrator implements ports.PaymentOrchestrator.
type Orchestrator struct {
	bindings ports.BindingManager
	gateway  ports.ReaderGateway
	txRepo   ports.TransactionRepository
	results  ports.ResultCache
	locks    ports.ReaderLock
	webhooks ports.WebhookService
	sup      *Supervisor
	events   *EventBus
	cfg      OrchestratorConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	bindings ports.BindingManager,
	gateway ports.ReaderGateway,
	txRepo ports.TransactionRepository,
	results ports.ResultCache,
	locks ports.ReaderLock,
	webhooks ports.WebhookService,
	sup *Supervisor,
	events *EventBus,
	cfg OrchestratorConfig,
	log zerolog.Logger,
) *Orchestrator {
	if cfg.PreflightAttempts < 1 {
		cfg.PreflightAttempts = 1
	}
	return &Orchestrator{
		bindings: bindings,
		gateway:  gateway,
		txRepo:   txRepo,
		results:  results,
		locks:    locks,
		webhooks: webhooks,
		sup:      sup,
		events:   events,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// execute runs one operation end to end: validation, replay, chain check,
// reader lock, pre-flight, dispatch and completion.
func (o *Orchestrator) execute(ctx context.Context, kind domain.OperationKind, req domain.PaymentRequest) (*domain.TransactionResult, error) {
	if err := validateRequest(kind, req); err != nil {
		return nil, err
	}

	binding, err := o.bindings.Binding(ctx, req.TerminalID)
	if err != nil {
		return nil, err
	}

	var chain []domain.Transaction
	if kind.RequiresRecordNo() {
		chain, err = o.txRepo.ListByRecordNo(ctx, req.RecordNo)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("load authorization chain: %w", err))
		}
	}

	if key := domain.ResultKeyFor(kind, req); key != "" {
		res, err := o.replay(ctx, key, kind, req, chain)
		if err != nil || res != nil {
			return res, err
		}
	}

	if kind.RequiresRecordNo() {
		if err := checkChain(kind, req.RecordNo, chain); err != nil {
			return nil, err
		}
	}

	reader, err := o.bindings.Reader(ctx, binding.PrimaryReaderID)
	if err != nil {
		return nil, err
	}
	client, err := o.gateway.Client(binding.Backend)
	if err != nil {
		return nil, apperror.ErrConfiguration(err.Error())
	}

	cmd := domain.BuildCommand(kind, req)
	if kind == domain.OperationIncrement {
		cmd = domain.IncrementCommand(req, chain)
	}

	token, ok, err := o.locks.Acquire(ctx, reader.ID, o.lockTTL(binding, cmd))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("acquire reader lock: %w", err))
	}
	if !ok {
		metrics.ReaderBusyTotal.Inc()
		return nil, apperror.ErrReaderBusy(reader.ID)
	}
	defer func() {
		if err := o.locks.Release(context.WithoutCancel(ctx), reader.ID, token); err != nil {
			o.log.Warn().Err(err).Str("reader_id", reader.ID).Msg("failed to release reader lock")
		}
	}()

	h, err := o.sup.Begin(ctx, Session{
		TerminalID: req.TerminalID,
		Operation:  kind,
		Reader:     reader,
		Client:     client,
		Quiet:      kind.Background(),
	})
	if err != nil {
		return nil, err
	}
	defer h.Close()

	return o.run(h, binding, reader, client, cmd, req)
}

// lockTTL is the longest cmd can hold the reader on binding, pre-flight
// included. LockTTL is the floor.
func (o *Orchestrator) lockTTL(binding *domain.TerminalBinding, cmd domain.ReaderCommand) time.Duration {
	ttl := o.cfg.RequestTimeout
	if cmd.CardPresent() {
		ttl = o.cfg.CardTimeout
	}
	if !cmd.Kind.Background() {
		ttl += time.Duration(o.cfg.PreflightAttempts) * binding.Timeout()
	}
	return max(ttl+persistTimeout, o.cfg.LockTTL)
}

func (o *Orchestrator) run(
	h *Handle,
	binding *domain.TerminalBinding,
	reader *domain.Reader,
	client ports.ReaderClient,
	cmd domain.ReaderCommand,
	req domain.PaymentRequest,
) (*domain.TransactionResult, error) {
	ctx := h.Context()
	kind := cmd.Kind

	tip := req.TipAmount
	if tip.IsZero() {
		tip = req.GratuityAmount
	}
	txn := &domain.Transaction{
		ID:              uuid.New(),
		TerminalID:      req.TerminalID,
		ReaderID:        reader.ID,
		InvoiceNo:       req.InvoiceNo,
		Kind:            kind,
		AmountRequested: cmd.Requested,
		TipAmount:       tip,
		RecordNo:        req.RecordNo,
		Status:          domain.StatusCheckingReader,
		CreatedAt:       o.now(),
	}
	if kind.Background() {
		txn.Status = domain.StatusAuthorizing
	}
	if err := o.txRepo.Create(ctx, txn); err != nil {
		h.Finish(domain.StatusError, nil, "failed to record transaction")
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}
	h.SetTransaction(txn.ID)

	log := o.log.With().
		Str("tx_id", txn.ID.String()).
		Str("terminal_id", req.TerminalID).
		Str("reader_id", reader.ID).
		Str("operation", string(kind)).
		Logger()

	if !kind.Background() {
		h.Transition(domain.StatusCheckingReader)
		if err := o.preflight(ctx, h, binding, reader, client, txn, log); err != nil {
			return nil, err
		}
	}

	phase, timeout := domain.StatusAuthorizing, o.cfg.RequestTimeout
	if cmd.CardPresent() {
		phase, timeout = domain.StatusWaitingCard, o.cfg.CardTimeout
	}
	if !kind.Background() {
		h.Transition(phase)
		if err := o.txRepo.UpdateStatus(ctx, txn.ID, phase); err != nil {
			log.Warn().Err(err).Str("status", string(phase)).Msg("failed to record transaction status")
		}
	}

	dctx, cancel := context.WithTimeout(ctx, timeout)
	h.Dispatched()
	result, err := client.Transact(dctx, reader, cmd)
	timedOut := errors.Is(dctx.Err(), context.DeadlineExceeded)
	cancel()

	if err != nil {
		if kind == domain.OperationIncrement && !h.Cancelled() {
			return o.incrementFailed(h, txn, err, log), nil
		}
		return nil, o.dispatchFailed(h, txn, phase, timedOut, err, log)
	}
	h.Responded()

	return o.complete(h, txn, req, result, log), nil
}

// preflight confirms the bound reader answers and is the registered device.
// Only this step is retried: an identity ping changes nothing on the reader.
func (o *Orchestrator) preflight(
	ctx context.Context,
	h *Handle,
	binding *domain.TerminalBinding,
	reader *domain.Reader,
	client ports.ReaderClient,
	txn *domain.Transaction,
	log zerolog.Logger,
) error {
	var lastErr error
	for attempt := 1; attempt <= o.cfg.PreflightAttempts; attempt++ {
		pctx, cancel := context.WithTimeout(ctx, binding.Timeout())
		identity, err := client.Identify(pctx, reader)
		cancel()

		if err == nil {
			if !reader.Matches(identity) {
				return o.fail(h, txn, apperror.ErrIdentityMismatch(reader.ID, reader.SerialNumber, identity.SerialNumber), log)
			}
			o.bindings.MarkReader(ctx, reader.ID, true)
			return nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return o.fail(h, txn, apperror.ErrCancelled(), log)
		}
		log.Debug().Err(err).Int("attempt", attempt).Msg("pre-flight identity ping failed")
	}

	log.Warn().Err(lastErr).Msg("reader offline")
	o.bindings.MarkReader(ctx, reader.ID, false)

	backup := ""
	if binding.HasBackup() {
		backup = *binding.BackupReaderID
	}
	now := o.now()
	o.events.Publish(domain.StatusEvent{
		TerminalID:    txn.TerminalID,
		TransactionID: &txn.ID,
		Type:          domain.EventReaderOffline,
		Status:        domain.StatusError,
		ReaderID:      reader.ID,
		Error:         "Reader offline",
		At:            now,
	})
	if backup != "" {
		o.events.Publish(domain.StatusEvent{
			TerminalID:     txn.TerminalID,
			TransactionID:  &txn.ID,
			Type:           domain.EventFailoverSuggested,
			Status:         domain.StatusError,
			ReaderID:       reader.ID,
			BackupReaderID: backup,
			At:             now,
		})
	}

	return o.fail(h, txn, apperror.ErrReaderOffline(reader.ID, backup), log)
}

// dispatchFailed classifies a failure after the command left for the reader.
// Nothing here is retried.
func (o *Orchestrator) dispatchFailed(
	h *Handle,
	txn *domain.Transaction,
	phase domain.TransactionStatus,
	timedOut bool,
	cause error,
	log zerolog.Logger,
) error {
	var appErr *apperror.AppError
	switch {
	case errors.Is(cause, domain.ErrCommandInFlight) && txn.Kind.MovesMoney():
		// The reader may still authorize after we stop waiting.
		appErr = apperror.ErrAmbiguousState(txn.ID.String(), cause)
		txn.ReconciliationRequired = true
		metrics.AmbiguousTotal.Inc()
		log.Error().Err(cause).Msg("command left in flight on relay, flagged for reconciliation")
	case h.Cancelled():
		appErr = apperror.ErrCancelled()
		txn.ReconciliationRequired = txn.Kind.MovesMoney() && phase == domain.StatusAuthorizing
	case timedOut && phase == domain.StatusWaitingCard:
		appErr = apperror.ErrTimeout("waiting for card")
	case txn.Kind.MovesMoney():
		appErr = apperror.ErrAmbiguousState(txn.ID.String(), cause)
		txn.ReconciliationRequired = true
		metrics.AmbiguousTotal.Inc()
		log.Error().Err(cause).Msg("transaction outcome unknown, flagged for reconciliation")
	default:
		appErr = apperror.ErrReaderOffline(txn.ReaderID, "")
	}
	return o.fail(h, txn, appErr, log)
}

// incrementFailed records a failed increment without surfacing an error.
// The open authorization stays valid at its previous amount.
func (o *Orchestrator) incrementFailed(h *Handle, txn *domain.Transaction, cause error, log zerolog.Logger) *domain.TransactionResult {
	log.Warn().Err(cause).Msg("incremental authorization failed, continuing")
	appErr := apperror.Wrap(apperror.CodeConnectivity, "Incremental authorization not confirmed", http.StatusServiceUnavailable, cause)
	_ = o.fail(h, txn, appErr, log)
	return &domain.TransactionResult{
		RecordNo:        txn.RecordNo,
		AmountRequested: txn.AmountRequested,
		Error:           appErr.Message,
	}
}

// fail finalizes txn as error and publishes the error state.
func (o *Orchestrator) fail(h *Handle, txn *domain.Transaction, appErr *apperror.AppError, log zerolog.Logger) error {
	txn.Status = domain.StatusError
	txn.ErrorCode = appErr.Code
	txn.ErrorMessage = appErr.Message
	o.finalize(h, txn, log)
	h.Finish(domain.StatusError, nil, appErr.Message)
	metrics.ObserveTransaction(string(txn.Kind), string(txn.Status), txn.CreatedAt)
	return appErr
}

func (o *Orchestrator) complete(
	h *Handle,
	txn *domain.Transaction,
	req domain.PaymentRequest,
	result *domain.TransactionResult,
	log zerolog.Logger,
) *domain.TransactionResult {
	if req.RecordNo != "" {
		if result.RecordNo == "" {
			result.RecordNo = req.RecordNo
		} else if result.RecordNo != req.RecordNo {
			log.Warn().Str("record_no", req.RecordNo).Str("reported_record_no", result.RecordNo).
				Msg("reader reported a different recordNo, keeping the original")
		}
	} else {
		txn.RecordNo = result.RecordNo
	}

	txn.Status = result.Status()
	txn.Result = result
	if !result.Approved {
		txn.ErrorMessage = result.Error
	}
	o.finalize(h, txn, log)

	if key := domain.ResultKeyFor(txn.Kind, req); key != "" && result.Approved {
		o.cacheResult(h.Context(), key, result)
	}

	if result.IsPartialApproval {
		log.Warn().
			Str("requested", result.AmountRequested.StringFixed(2)).
			Str("authorized", result.AmountAuthorized.StringFixed(2)).
			Msg("partial approval")
	}
	log.Info().Str("status", string(txn.Status)).Str("record_no", txn.RecordNo).Msg("transaction completed")

	h.Finish(txn.Status, result, result.Error)
	metrics.ObserveTransaction(string(txn.Kind), string(txn.Status), txn.CreatedAt)
	return result
}

// finalize persists the outcome and hands it to the order domain. The
// operation context may already be cancelled here.
func (o *Orchestrator) finalize(h *Handle, txn *domain.Transaction, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(h.Context()), persistTimeout)
	defer cancel()

	now := o.now()
	txn.CompletedAt = &now
	if err := o.txRepo.Complete(ctx, txn); err != nil {
		log.Error().Err(err).Str("status", string(txn.Status)).Msg("failed to persist transaction outcome")
	}
	if err := o.webhooks.EnqueueWebhook(ctx, txn); err != nil {
		log.Warn().Err(err).Msg("failed to enqueue result webhook")
	}
}

// replay returns a previously approved result for the same logical
// operation, from Redis first and Postgres second.
func (o *Orchestrator) replay(
	ctx context.Context,
	key string,
	kind domain.OperationKind,
	req domain.PaymentRequest,
	chain []domain.Transaction,
) (*domain.TransactionResult, error) {
	cached, err := o.results.Get(ctx, key)
	if err != nil {
		o.log.Warn().Err(err).Str("key", key).Msg("redis result check failed, falling through to DB")
	}
	if cached != nil {
		var res domain.TransactionResult
		if err := json.Unmarshal(cached, &res); err == nil {
			metrics.ReplaysTotal.WithLabelValues("redis").Inc()
			return &res, nil
		}
		o.log.Warn().Str("key", key).Msg("discarding unreadable cached result")
	}

	var prior *domain.Transaction
	if kind.RequiresRecordNo() {
		for i := len(chain) - 1; i >= 0; i-- {
			if chain[i].Kind == kind {
				prior = &chain[i]
				break
			}
		}
	} else {
		prior, err = o.txRepo.FindApprovedByInvoice(ctx, req.TerminalID, kind, req.InvoiceNo, domain.BuildCommand(kind, req).Requested)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("db result check: %w", err))
		}
	}
	if prior == nil || prior.Result == nil {
		return nil, nil
	}

	metrics.ReplaysTotal.WithLabelValues("postgres").Inc()
	o.cacheResult(ctx, key, prior.Result)
	return prior.Result, nil
}

func (o *Orchestrator) cacheResult(ctx context.Context, key string, result *domain.TransactionResult) {
	data, err := json.Marshal(result)
	if err != nil {
		o.log.Warn().Err(err).Str("key", key).Msg("failed to marshal result for cache")
		return
	}
	if err := o.results.Set(context.WithoutCancel(ctx), key, data, o.cfg.ResultTTL); err != nil {
		o.log.Warn().Err(err).Str("key", key).Msg("failed to cache result in redis")
	}
}

// CancelTransaction aborts whatever the terminal is doing and returns it to
// idle. Exactly one reset reaches the bound reader.
func (o *Orchestrator) CancelTransaction(ctx context.Context, terminalID string) (*domain.TerminalState, error) {
	if !o.sup.Cancel(terminalID) {
		o.resetBoundReader(ctx, terminalID)
	}
	o.log.Info().Str("terminal_id", terminalID).Msg("transaction cancelled")
	return o.sup.ForceIdle(terminalID), nil
}

func (o *Orchestrator) resetBoundReader(ctx context.Context, terminalID string) {
	binding, err := o.bindings.Binding(ctx, terminalID)
	if err != nil {
		o.log.Info().Err(err).Str("terminal_id", terminalID).Msg("cancel: no bound reader to reset")
		return
	}
	reader, err := o.bindings.Reader(ctx, binding.PrimaryReaderID)
	if err != nil {
		o.log.Warn().Err(err).Str("terminal_id", terminalID).Msg("cancel: reader lookup failed")
		return
	}
	client, err := o.gateway.Client(binding.Backend)
	if err != nil {
		o.log.Error().Err(err).Str("terminal_id", terminalID).Msg("cancel: no backend")
		return
	}

	rctx, cancel := context.WithTimeout(ctx, binding.Timeout())
	defer cancel()
	if err := client.Reset(rctx, reader); err != nil {
		o.log.Warn().Err(err).Str("reader_id", reader.ID).Msg("cancel: reader reset failed")
	}
}

// Acknowledge returns a finished terminal to idle.
func (o *Orchestrator) Acknowledge(terminalID string) *domain.TerminalState {
	return o.sup.Acknowledge(terminalID)
}

// Status returns the terminal's current state.
func (o *Orchestrator) Status(terminalID string) *domain.TerminalState {
	return o.sup.State(terminalID)
}

// Subscribe streams the terminal's status events.
func (o *Orchestrator) Subscribe(terminalID string) (<-chan domain.StatusEvent, func()) {
	return o.events.Subscribe(terminalID)
}

// Shutdown cancels every in-flight operation and waits for their resets.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	return o.sup.Shutdown(ctx)
}

func validateRequest(kind domain.OperationKind, req domain.PaymentRequest) error {
	if req.TerminalID == "" {
		return apperror.Validation("terminal id is required")
	}
	if kind.RequiresRecordNo() && strings.TrimSpace(req.RecordNo) == "" {
		return apperror.ErrConfiguration(fmt.Sprintf("%s requires the recordNo of an approved authorization", kind))
	}
	switch kind {
	case domain.OperationSale, domain.OperationPreAuth, domain.OperationCapture,
		domain.OperationAdjust, domain.OperationIncrement, domain.OperationReturn:
		if !req.Amount.IsPositive() {
			return apperror.Validation("amount must be positive")
		}
	}
	if req.TipAmount.IsNegative() || req.GratuityAmount.IsNegative() {
		return apperror.Validation("tip and gratuity must not be negative")
	}
	return nil
}

// checkChain requires recordNo to name an approved, open authorization
// issued through this bridge.
func checkChain(kind domain.OperationKind, recordNo string, chain []domain.Transaction) error {
	var opener *domain.Transaction
	for i := range chain {
		t := &chain[i]
		switch {
		case t.OpensChain() && opener == nil:
			opener = t
		case t.Kind == domain.OperationVoid:
			return apperror.ErrConfiguration(fmt.Sprintf("authorization %s has been voided", recordNo))
		case t.Kind == domain.OperationCapture && kind == domain.OperationIncrement:
			return apperror.ErrConfiguration(fmt.Sprintf("authorization %s has already been captured", recordNo))
		}
	}
	if opener == nil {
		return apperror.ErrConfiguration(fmt.Sprintf("recordNo %s does not belong to an approved authorization", recordNo))
	}
	if (kind == domain.OperationCapture || kind == domain.OperationIncrement) && opener.Kind != domain.OperationPreAuth {
		return apperror.ErrConfiguration(fmt.Sprintf("%s requires a pre-authorization, %s is a %s", kind, recordNo, opener.Kind))
	}
	return nil
}

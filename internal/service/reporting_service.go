package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"
	"payment-terminal-bridge/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	txRepo      ports.TransactionRepository
	webhookRepo ports.WebhookRepository
	transactor  ports.DBTransactor
	webhooks    ports.WebhookService
	audit       ports.AuditService
	now         func() time.Time
	log         zerolog.Logger
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	txRepo ports.TransactionRepository,
	webhookRepo ports.WebhookRepository,
	transactor ports.DBTransactor,
	webhooks ports.WebhookService,
	audit ports.AuditService,
	log zerolog.Logger,
) ports.ReportingService {
	return &reportingService{
		txRepo:      txRepo,
		webhookRepo: webhookRepo,
		transactor:  transactor,
		webhooks:    webhooks,
		audit:       audit,
		now:         time.Now,
		log:         log,
	}
}

// GetStats returns aggregated transaction stats, optionally for one terminal.
func (s *reportingService) GetStats(ctx context.Context, terminalID *string, period string) (*ports.TransactionStats, error) {
	var periodStart *int64
	now := s.now()

	switch period {
	case "day":
		t := now.AddDate(0, 0, -1).Unix()
		periodStart = &t
	case "week":
		t := now.AddDate(0, 0, -7).Unix()
		periodStart = &t
	case "month":
		t := now.AddDate(0, -1, 0).Unix()
		periodStart = &t
	case "all", "":
		// No time filter
	default:
		return nil, apperror.Validation("invalid period: must be day, week, month, or all")
	}

	stats, err := s.txRepo.GetStats(ctx, terminalID, periodStart)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	return stats, nil
}

// ListTransactions returns a paginated list of transactions.
func (s *reportingService) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	txns, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return txns, total, nil
}

// GetTransaction returns one record and its webhook delivery attempts.
func (s *reportingService) GetTransaction(ctx context.Context, id uuid.UUID) (*ports.TransactionDetail, error) {
	txn, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}

	deliveries, err := s.webhookRepo.GetByTransactionID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	return &ports.TransactionDetail{Transaction: txn, Deliveries: deliveries}, nil
}

// Reconcile records the operator's verdict on a transaction whose outcome
// the bridge could not determine, then re-notifies the order domain.
func (s *reportingService) Reconcile(ctx context.Context, req ports.ReconcileRequest) (*domain.Transaction, error) {
	if !req.Outcome.IsTerminal() {
		return nil, apperror.Validation("outcome must be approved, declined or error")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txRepo.GetByIDForUpdate(ctx, dbTx, req.TransactionID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	if !txn.ReconciliationRequired {
		return nil, apperror.Validation("transaction does not require reconciliation")
	}

	if err := s.txRepo.MarkReconciled(ctx, dbTx, txn.ID, req.Outcome, req.Note); err != nil {
		return nil, apperror.InternalError(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	now := s.now()
	txn.Status = req.Outcome
	txn.ReconciliationRequired = false
	txn.ReconciledAt = &now
	txn.ReconciliationNote = req.Note
	if txn.CompletedAt == nil {
		txn.CompletedAt = &now
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("terminal_id", txn.TerminalID).
		Str("outcome", string(req.Outcome)).
		Str("client_id", req.ClientID).
		Msg("transaction reconciled")

	details, _ := json.Marshal(map[string]string{
		"outcome": string(req.Outcome),
		"note":    req.Note,
	})
	clientID := req.ClientID
	s.audit.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		ClientID:     &clientID,
		Action:       domain.AuditActionReconcile,
		ResourceType: "transaction",
		ResourceID:   txn.ID.String(),
		Details:      string(details),
		IPAddress:    req.ClientIP,
		CreatedAt:    now,
	})

	if err := s.webhooks.EnqueueWebhook(ctx, txn); err != nil {
		s.log.Warn().Err(err).Str("tx_id", txn.ID.String()).Msg("failed to enqueue reconciliation webhook")
	}

	return txn, nil
}

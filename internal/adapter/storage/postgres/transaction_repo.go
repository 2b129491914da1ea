package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, terminal_id, reader_id, invoice_no, kind, amount_requested_cents, tip_amount_cents,
		record_no, status, error_code, error_message, reconciliation_required, result,
		created_at, completed_at, reconciled_at, reconciliation_note`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts the record of an operation that is about to start.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, terminal_id, reader_id, invoice_no, kind, amount_requested_cents,
		tip_amount_cents, record_no, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.TerminalID, t.ReaderID, t.InvoiceNo, string(t.Kind),
		toCents(t.AmountRequested), toCents(t.TipAmount), t.RecordNo,
		string(t.Status), t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// UpdateStatus records an intermediate state machine position.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE transactions SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}

// Complete writes the final outcome of an operation.
func (r *TransactionRepo) Complete(ctx context.Context, t *domain.Transaction) error {
	var result []byte
	if t.Result != nil {
		var err error
		if result, err = json.Marshal(t.Result); err != nil {
			return fmt.Errorf("marshal transaction result: %w", err)
		}
	}

	query := `UPDATE transactions SET status = $1, record_no = $2, error_code = $3, error_message = $4,
		reconciliation_required = $5, result = $6, completed_at = $7
		WHERE id = $8`

	tag, err := r.pool.Exec(ctx, query,
		string(t.Status), t.RecordNo, t.ErrorCode, t.ErrorMessage,
		t.ReconciliationRequired, result, t.CompletedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("complete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", t.ID)
	}
	return nil
}

// GetByID fetches a transaction by UUID. Returns nil, nil if not found.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return r.getOne(r.pool.QueryRow(ctx, query, id))
}

// ListByRecordNo returns the approved records of an authorization chain, oldest first.
func (r *TransactionRepo) ListByRecordNo(ctx context.Context, recordNo string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE record_no = $1 AND status = 'approved' ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, recordNo)
	if err != nil {
		return nil, fmt.Errorf("list chain: %w", err)
	}
	return collectTransactions(rows)
}

// FindApprovedByInvoice returns the approved record for an invoice-scoped
// operation of the given requested amount, or nil, nil. Tenders of one
// invoice that differ in amount are separate operations.
func (r *TransactionRepo) FindApprovedByInvoice(ctx context.Context, terminalID string, kind domain.OperationKind, invoiceNo string, requested decimal.Decimal) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE terminal_id = $1 AND kind = $2 AND invoice_no = $3 AND amount_requested_cents = $4
		AND status = 'approved'
		ORDER BY created_at DESC LIMIT 1`
	return r.getOne(r.pool.QueryRow(ctx, query, terminalID, string(kind), invoiceNo, toCents(requested)))
}

// List fetches transactions with filtering and pagination.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	add := func(cond string, arg any) {
		conditions = append(conditions, fmt.Sprintf(cond, argIdx))
		args = append(args, arg)
		argIdx++
	}

	if params.TerminalID != nil {
		add("terminal_id = $%d", *params.TerminalID)
	}
	if params.Status != nil {
		add("status = $%d", string(*params.Status))
	}
	if params.Kind != nil {
		add("kind = $%d", string(*params.Kind))
	}
	if params.ReconciliationRequired != nil {
		add("reconciliation_required = $%d", *params.ReconciliationRequired)
	}
	if params.From != nil {
		add("created_at >= to_timestamp($%d)", *params.From)
	}
	if params.To != nil {
		add("created_at <= to_timestamp($%d)", *params.To)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total
	var total int64
	err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where), args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// GetStats retrieves aggregated counters, optionally for one terminal.
func (r *TransactionRepo) GetStats(ctx context.Context, terminalID *string, periodStart *int64) (*ports.TransactionStats, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if terminalID != nil {
		conditions = append(conditions, fmt.Sprintf("terminal_id = $%d", argIdx))
		args = append(args, *terminalID)
		argIdx++
	}
	if periodStart != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= to_timestamp($%d)", argIdx))
		args = append(args, *periodStart)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'approved') AS approved,
		COUNT(*) FILTER (WHERE status = 'declined') AS declined,
		COUNT(*) FILTER (WHERE status = 'error') AS errored,
		COUNT(*) FILTER (WHERE (result->>'is_partial_approval')::boolean) AS partial,
		COUNT(*) FILTER (WHERE reconciliation_required AND reconciled_at IS NULL) AS pending,
		COALESCE(SUM((result->>'amount_authorized')::numeric * 100) FILTER (WHERE status = 'approved' AND kind IN ('sale', 'capture', 'increment', 'adjust')), 0)::bigint AS authorized,
		COALESCE(SUM(amount_requested_cents) FILTER (WHERE status = 'approved' AND kind = 'return'), 0)::bigint AS returned
		FROM transactions %s`, where)

	stats := &ports.TransactionStats{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.TotalTransactions, &stats.Approved, &stats.Declined, &stats.Errored,
		&stats.PartialApprovals, &stats.ReconciliationPending,
		&stats.TotalAuthorizedCents, &stats.TotalReturnedCents,
	)
	if err != nil {
		return nil, fmt.Errorf("get transaction stats: %w", err)
	}
	return stats, nil
}

// GetByIDForUpdate locks a transaction row inside tx.
func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	return r.getOne(tx.QueryRow(ctx, query, id))
}

// MarkReconciled closes an ambiguous record with the operator's outcome.
func (r *TransactionRepo) MarkReconciled(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, note string) error {
	now := time.Now()
	query := `UPDATE transactions SET status = $1, reconciliation_required = FALSE, reconciled_at = $2,
		reconciliation_note = $3, completed_at = COALESCE(completed_at, $2)
		WHERE id = $4`

	tag, err := tx.Exec(ctx, query, string(status), now, note, id)
	if err != nil {
		return fmt.Errorf("mark transaction reconciled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}

func (r *TransactionRepo) getOne(row pgx.Row) (*domain.Transaction, error) {
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var kind, status string
	var requestedCents, tipCents int64
	var result []byte
	err := row.Scan(
		&t.ID, &t.TerminalID, &t.ReaderID, &t.InvoiceNo, &kind, &requestedCents, &tipCents,
		&t.RecordNo, &status, &t.ErrorCode, &t.ErrorMessage, &t.ReconciliationRequired, &result,
		&t.CreatedAt, &t.CompletedAt, &t.ReconciledAt, &t.ReconciliationNote,
	)
	if err != nil {
		return nil, err
	}
	t.Kind = domain.OperationKind(kind)
	t.Status = domain.TransactionStatus(status)
	t.AmountRequested = fromCents(requestedCents)
	t.TipAmount = fromCents(tipCents)
	if len(result) > 0 {
		t.Result = &domain.TransactionResult{}
		if err := json.Unmarshal(result, t.Result); err != nil {
			return nil, fmt.Errorf("decode transaction result: %w", err)
		}
	}
	return t, nil
}

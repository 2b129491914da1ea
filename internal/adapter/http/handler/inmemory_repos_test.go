package handler_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory Reader Repo ---

type inMemoryReaderRepo struct {
	mu      sync.RWMutex
	readers map[string]domain.Reader
}

func newInMemoryReaderRepo(readers ...domain.Reader) *inMemoryReaderRepo {
	r := &inMemoryReaderRepo{readers: make(map[string]domain.Reader)}
	for _, rd := range readers {
		r.readers[rd.ID] = rd
	}
	return r
}

func (r *inMemoryReaderRepo) GetByID(ctx context.Context, id string) (*domain.Reader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rd, ok := r.readers[id]
	if !ok {
		return nil, nil
	}
	return &rd, nil
}

func (r *inMemoryReaderRepo) List(ctx context.Context) ([]domain.Reader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Reader, 0, len(r.readers))
	for _, rd := range r.readers {
		out = append(out, rd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *inMemoryReaderRepo) UpdateStatus(ctx context.Context, id string, online bool, seenAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rd, ok := r.readers[id]
	if !ok {
		return fmt.Errorf("reader not found: %s", id)
	}
	rd.IsOnline = online
	if seenAt != nil {
		rd.LastSeenAt = seenAt
	}
	r.readers[id] = rd
	return nil
}

// --- In-Memory Binding Repo ---

type inMemoryBindingRepo struct {
	mu       sync.Mutex
	bindings map[string]domain.TerminalBinding
}

func newInMemoryBindingRepo() *inMemoryBindingRepo {
	return &inMemoryBindingRepo{bindings: make(map[string]domain.TerminalBinding)}
}

func (r *inMemoryBindingRepo) Get(ctx context.Context, terminalID string) (*domain.TerminalBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[terminalID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *inMemoryBindingRepo) Upsert(ctx context.Context, b *domain.TerminalBinding) (*domain.TerminalBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *b
	stored.FailoverTimeout = b.Timeout()
	stored.Version = r.bindings[b.TerminalID].Version + 1
	stored.UpdatedAt = time.Now()
	r.bindings[b.TerminalID] = stored
	return &stored, nil
}

func (r *inMemoryBindingRepo) Swap(ctx context.Context, terminalID string, expectedVersion int64) (*domain.TerminalBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[terminalID]
	if !ok || b.Version != expectedVersion || !b.HasBackup() {
		return nil, ports.ErrVersionConflict
	}
	primary := b.PrimaryReaderID
	b.PrimaryReaderID = *b.BackupReaderID
	b.BackupReaderID = &primary
	b.Version++
	b.UpdatedAt = time.Now()
	r.bindings[terminalID] = b
	return &b, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu  sync.RWMutex
	txs map[uuid.UUID]domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{txs: make(map[uuid.UUID]domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs[t.ID] = *t
	return nil
}

func (r *inMemoryTransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[id]
	if !ok {
		return fmt.Errorf("transaction not found: %s", id)
	}
	t.Status = status
	r.txs[id] = t
	return nil
}

func (r *inMemoryTransactionRepo) Complete(ctx context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.txs[t.ID]; !ok {
		return fmt.Errorf("transaction not found: %s", t.ID)
	}
	r.txs[t.ID] = *t
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.txs[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *inMemoryTransactionRepo) ListByRecordNo(ctx context.Context, recordNo string) ([]domain.Transaction, error) {
	return r.filter(func(t *domain.Transaction) bool {
		return t.RecordNo == recordNo && t.Status == domain.StatusApproved
	}, false), nil
}

func (r *inMemoryTransactionRepo) FindApprovedByInvoice(ctx context.Context, terminalID string, kind domain.OperationKind, invoiceNo string, requested decimal.Decimal) (*domain.Transaction, error) {
	matches := r.filter(func(t *domain.Transaction) bool {
		return t.TerminalID == terminalID && t.Kind == kind && t.InvoiceNo == invoiceNo &&
			t.AmountRequested.Equal(requested) && t.Status == domain.StatusApproved
	}, true)
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	matches := r.filter(func(t *domain.Transaction) bool {
		if params.TerminalID != nil && t.TerminalID != *params.TerminalID {
			return false
		}
		if params.Status != nil && t.Status != *params.Status {
			return false
		}
		if params.Kind != nil && t.Kind != *params.Kind {
			return false
		}
		if params.ReconciliationRequired != nil && t.ReconciliationRequired != *params.ReconciliationRequired {
			return false
		}
		return true
	}, true)

	total := int64(len(matches))
	start := (params.Page - 1) * params.PageSize
	if start >= len(matches) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end], total, nil
}

func (r *inMemoryTransactionRepo) GetStats(ctx context.Context, terminalID *string, periodStart *int64) (*ports.TransactionStats, error) {
	stats := &ports.TransactionStats{}
	for _, t := range r.filter(func(t *domain.Transaction) bool {
		return terminalID == nil || t.TerminalID == *terminalID
	}, false) {
		stats.TotalTransactions++
		switch t.Status {
		case domain.StatusApproved:
			stats.Approved++
			if t.Result != nil {
				cents := t.Result.AmountAuthorized.Shift(2).IntPart()
				if t.Kind == domain.OperationReturn {
					stats.TotalReturnedCents += cents
				} else {
					stats.TotalAuthorizedCents += cents
				}
				if t.Result.IsPartialApproval {
					stats.PartialApprovals++
				}
			}
		case domain.StatusDeclined:
			stats.Declined++
		case domain.StatusError:
			stats.Errored++
		}
		if t.ReconciliationRequired {
			stats.ReconciliationPending++
		}
	}
	return stats, nil
}

func (r *inMemoryTransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryTransactionRepo) MarkReconciled(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[id]
	if !ok {
		return fmt.Errorf("transaction not found: %s", id)
	}
	now := time.Now()
	t.Status = status
	t.ReconciliationRequired = false
	t.ReconciledAt = &now
	t.ReconciliationNote = note
	r.txs[id] = t
	return nil
}

func (r *inMemoryTransactionRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.txs)
}

// filter returns matching records ordered by creation time.
func (r *inMemoryTransactionRepo) filter(keep func(*domain.Transaction) bool, newestFirst bool) []domain.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Transaction{}
	for _, t := range r.txs {
		if keep(&t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// --- In-Memory Client Repo ---

type inMemoryClientRepo struct {
	mu      sync.RWMutex
	clients map[string]domain.APIClient
}

func newInMemoryClientRepo() *inMemoryClientRepo {
	return &inMemoryClientRepo{clients: make(map[string]domain.APIClient)}
}

func (r *inMemoryClientRepo) Create(ctx context.Context, c *domain.APIClient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[c.ID]; exists {
		return ports.ErrDuplicateClient
	}
	r.clients[c.ID] = *c
	return nil
}

func (r *inMemoryClientRepo) GetByID(ctx context.Context, id string) (*domain.APIClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *log)
	return nil
}

// --- In-Memory Webhook Repo ---

type inMemoryWebhookRepo struct {
	mu   sync.RWMutex
	logs map[uuid.UUID]domain.WebhookDeliveryLog
}

func newInMemoryWebhookRepo() *inMemoryWebhookRepo {
	return &inMemoryWebhookRepo{logs: make(map[uuid.UUID]domain.WebhookDeliveryLog)}
}

func (r *inMemoryWebhookRepo) Create(ctx context.Context, log *domain.WebhookDeliveryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[log.ID] = *log
	return nil
}

func (r *inMemoryWebhookRepo) Update(ctx context.Context, log *domain.WebhookDeliveryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[log.ID] = *log
	return nil
}

func (r *inMemoryWebhookRepo) GetByTransactionID(ctx context.Context, txID uuid.UUID) ([]domain.WebhookDeliveryLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.WebhookDeliveryLog{}
	for _, l := range r.logs {
		if l.TransactionID == txID {
			out = append(out, l)
		}
	}
	return out, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx for the in-memory repos, which ignore it.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

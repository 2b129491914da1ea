package ports

import (
	"context"
	"errors"
	"time"

	"payment-terminal-bridge/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ErrVersionConflict is returned when a compare-and-swap on a binding lost
// against a concurrent writer.
var ErrVersionConflict = errors.New("binding version conflict")

// ErrDuplicateClient is returned when a client id is already registered.
var ErrDuplicateClient = errors.New("client already exists")

// ReaderRepository is the reader registry.
type ReaderRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Reader, error)
	List(ctx context.Context) ([]domain.Reader, error)
	UpdateStatus(ctx context.Context, id string, online bool, seenAt *time.Time) error
}

// BindingRepository is the terminal configuration store.
type BindingRepository interface {
	Get(ctx context.Context, terminalID string) (*domain.TerminalBinding, error)
	// Upsert writes b and returns the stored row with its new version.
	Upsert(ctx context.Context, b *domain.TerminalBinding) (*domain.TerminalBinding, error)
	// Swap exchanges primary and backup in a single statement if the stored
	// version equals expectedVersion. Returns ErrVersionConflict otherwise.
	Swap(ctx context.Context, terminalID string, expectedVersion int64) (*domain.TerminalBinding, error)
}

// TransactionRepository persists transaction records.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error
	// Complete writes the terminal outcome of t (status, result, error, reconciliation flag).
	Complete(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// ListByRecordNo returns approved records on an authorization chain, oldest first.
	ListByRecordNo(ctx context.Context, recordNo string) ([]domain.Transaction, error)
	// FindApprovedByInvoice matches on the requested amount as well, so split
	// tenders of one invoice replay independently.
	FindApprovedByInvoice(ctx context.Context, terminalID string, kind domain.OperationKind, invoiceNo string, requested decimal.Decimal) (*domain.Transaction, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, terminalID *string, periodStart *int64) (*TransactionStats, error)
	// GetByIDForUpdate and MarkReconciled run inside a database transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error)
	MarkReconciled(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, note string) error
}

// TransactionStats holds aggregated counters for the operator dashboard.
type TransactionStats struct {
	TotalTransactions     int64
	Approved              int64
	Declined              int64
	Errored               int64
	PartialApprovals      int64
	ReconciliationPending int64
	TotalAuthorizedCents  int64
	TotalReturnedCents    int64
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	TerminalID             *string
	Status                 *domain.TransactionStatus
	Kind                   *domain.OperationKind
	ReconciliationRequired *bool
	From                   *int64 // Unix timestamp
	To                     *int64 // Unix timestamp
	Page                   int
	PageSize               int
}

// RelayCommandRepository is the command-relay queue shared with relay processes.
type RelayCommandRepository interface {
	Enqueue(ctx context.Context, cmd *domain.RelayCommand) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RelayCommand, error)
	// Expire closes a command that no relay has claimed yet. Returns false if
	// the command had already left the queued state.
	Expire(ctx context.Context, id uuid.UUID) (bool, error)
	// ClaimNext atomically claims the oldest live command for one of devices.
	// Returns nil, nil when the queue is empty.
	ClaimNext(ctx context.Context, relayID string, devices []string) (*domain.RelayCommand, error)
	Finish(ctx context.Context, id uuid.UUID, status domain.RelayCommandStatus, result []byte, errMsg *string, ambiguous bool) error
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// ClientRepository stores API clients.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.APIClient) error
	GetByID(ctx context.Context, id string) (*domain.APIClient, error)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// WebhookRepository persists result-delivery attempts.
type WebhookRepository interface {
	Create(ctx context.Context, log *domain.WebhookDeliveryLog) error
	Update(ctx context.Context, log *domain.WebhookDeliveryLog) error
	GetByTransactionID(ctx context.Context, txID uuid.UUID) ([]domain.WebhookDeliveryLog, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

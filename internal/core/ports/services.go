package ports

import (
	"context"
	"time"

	"payment-terminal-bridge/internal/core/domain"

	"github.com/google/uuid"
)

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// HashService handles client secret hashing (Argon2id).
type HashService interface {
	Hash(secret string) (string, error)
	Verify(secret string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(client *domain.APIClient) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	ClientID   string
	Role       domain.ClientRole
	TerminalID *string
}

// Client rebuilds the minimal client view carried by the token.
func (c *TokenClaims) Client() *domain.APIClient {
	return &domain.APIClient{ID: c.ClientID, Role: c.Role, TerminalID: c.TerminalID}
}

// ResultCache is the Redis-layer replay check (fast path).
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached result JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ReaderLock serializes operations per reader across every orchestrator instance.
type ReaderLock interface {
	// Acquire returns a release token, or ok=false if another holder owns the reader.
	Acquire(ctx context.Context, readerID string, ttl time.Duration) (token string, ok bool, err error)
	// Release frees the lock only if token still owns it.
	Release(ctx context.Context, readerID string, token string) error
}

// SequenceStore hands out per-reader protocol sequence numbers.
type SequenceStore interface {
	Next(ctx context.Context, readerID string) (int64, error)
}

// --- Reader gateway ---

// ReaderClient issues commands to one reader through a single backend.
type ReaderClient interface {
	Transact(ctx context.Context, reader *domain.Reader, cmd domain.ReaderCommand) (*domain.TransactionResult, error)
	Identify(ctx context.Context, reader *domain.Reader) (*domain.ReaderIdentity, error)
	Reset(ctx context.Context, reader *domain.Reader) error
	Beep(ctx context.Context, reader *domain.Reader) error
}

// ReaderGateway resolves the client for a configured backend.
type ReaderGateway interface {
	Client(backend domain.BackendKind) (ReaderClient, error)
}

// --- Service Ports (Business Logic) ---

// PaymentOrchestrator drives reader operations for a terminal.
type PaymentOrchestrator interface {
	ProcessPayment(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error)
	PreAuth(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error)
	IncrementAuth(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error)
	CapturePreAuth(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error)
	AdjustTip(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error)
	VoidSale(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error)
	ProcessReturn(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error)
	CollectCardData(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error)
	CancelTransaction(ctx context.Context, terminalID string) (*domain.TerminalState, error)
	Acknowledge(terminalID string) *domain.TerminalState
	Status(terminalID string) *domain.TerminalState
	Subscribe(terminalID string) (<-chan domain.StatusEvent, func())
}

// BindingManager owns terminal bindings and reader failover.
type BindingManager interface {
	RefreshBinding(ctx context.Context, terminalID string) (*domain.TerminalBinding, error)
	Binding(ctx context.Context, terminalID string) (*domain.TerminalBinding, error)
	UpdateBinding(ctx context.Context, b *domain.TerminalBinding) (*domain.TerminalBinding, error)
	SwapToBackup(ctx context.Context, terminalID string) (*domain.Reader, error)
	CheckReaderStatus(ctx context.Context, readerID string) bool
	// MarkReader records the outcome of an identity ping made elsewhere.
	MarkReader(ctx context.Context, readerID string, online bool)
	TriggerBeep(ctx context.Context, readerID string)
	Reader(ctx context.Context, readerID string) (*domain.Reader, error)
}

// AuthService issues access tokens to API clients.
type AuthService interface {
	IssueToken(ctx context.Context, clientID, secret string) (string, time.Time, error) // token, expiry, error
	CreateClient(ctx context.Context, req CreateClientRequest) (*domain.APIClient, error)
}

// CreateClientRequest holds input for provisioning an API client.
type CreateClientRequest struct {
	ID         string
	Secret     string
	Role       domain.ClientRole
	TerminalID *string
}

// ReportingService covers transaction listing and operator reconciliation.
type ReportingService interface {
	GetStats(ctx context.Context, terminalID *string, period string) (*TransactionStats, error)
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionDetail, error)
	Reconcile(ctx context.Context, req ReconcileRequest) (*domain.Transaction, error)
}

// TransactionDetail is a transaction together with its result deliveries.
type TransactionDetail struct {
	Transaction *domain.Transaction
	Deliveries  []domain.WebhookDeliveryLog
}

// ReconcileRequest closes an ambiguous transaction after manual review.
type ReconcileRequest struct {
	TransactionID uuid.UUID
	Outcome       domain.TransactionStatus // approved, declined or error
	Note          string
	ClientID      string
	ClientIP      string
}

// WebhookService delivers final results to the order domain.
type WebhookService interface {
	EnqueueWebhook(ctx context.Context, transaction *domain.Transaction) error
}

// AuditService records audited actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string         `json:"error_code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a client-visible detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Error codes used by callers that branch on the error kind.
const (
	CodeConfiguration    = "CFG_001"
	CodeConnectivity     = "RDR_001"
	CodeIdentityMismatch = "RDR_002"
	CodeAmbiguousState   = "TXN_001"
	CodeReaderBusy       = "TXN_002"
	CodeCancelled        = "TXN_003"
	CodeTimeout          = "TXN_004"
	CodeBindingNotFound  = "BND_001"
	CodeBindingConflict  = "BND_002"
)

// ---- Configuration (CFG) ----

// ErrConfiguration reports a request that cannot be attempted as configured.
// No reader is contacted when it is returned.
func ErrConfiguration(message string) *AppError {
	return New(CodeConfiguration, message, http.StatusBadRequest)
}

// ---- Reader (RDR) ----

func ErrReaderOffline(readerID string, backupReaderID string) *AppError {
	e := New(CodeConnectivity, "Reader offline", http.StatusServiceUnavailable).
		WithDetail("reader_id", readerID)
	if backupReaderID != "" {
		e.WithDetail("backup_reader_id", backupReaderID).WithDetail("failover_available", true)
	}
	return e
}

func ErrIdentityMismatch(readerID, expected, actual string) *AppError {
	return New(CodeIdentityMismatch, "Connected device does not match the bound reader", http.StatusConflict).
		WithDetail("reader_id", readerID).
		WithDetail("expected_serial", expected).
		WithDetail("actual_serial", actual)
}

// ---- Transaction (TXN) ----

// ErrAmbiguousState reports a transport failure after the reader may have
// processed the card. It must never be retried automatically.
func ErrAmbiguousState(txID string, err error) *AppError {
	return Wrap(CodeAmbiguousState, "Transaction outcome unknown, manual reconciliation required", http.StatusBadGateway, err).
		WithDetail("transaction_id", txID)
}

func ErrReaderBusy(readerID string) *AppError {
	return New(CodeReaderBusy, "Reader is busy with another transaction", http.StatusConflict).
		WithDetail("reader_id", readerID)
}

func ErrCancelled() *AppError {
	return New(CodeCancelled, "Transaction cancelled", http.StatusConflict)
}

func ErrTimeout(phase string) *AppError {
	return New(CodeTimeout, fmt.Sprintf("Timed out while %s", phase), http.StatusGatewayTimeout)
}

// ---- Binding (BND) ----

func ErrBindingNotFound(terminalID string) *AppError {
	return New(CodeBindingNotFound, fmt.Sprintf("No binding for terminal %s", terminalID), http.StatusNotFound)
}

func ErrBindingConflict() *AppError {
	return New(CodeBindingConflict, "Binding was changed concurrently", http.StatusConflict)
}

// ---- Security & Authentication (SEC) ----

func ErrInvalidSignature() *AppError {
	return New("SEC_002", "Invalid signature", http.StatusUnauthorized)
}

func ErrTerminalForbidden() *AppError {
	return New("SEC_005", "Client may not operate this terminal", http.StatusForbidden)
}

func ErrNotFound(entity string) *AppError {
	return New("SYS_404", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrClientExists() *AppError {
	return New("AUTH_002", "Client already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrClientDisabled() *AppError {
	return New("AUTH_004", "Client is disabled", http.StatusForbidden)
}

func ErrOperatorOnly() *AppError {
	return New("AUTH_005", "Operator role required", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

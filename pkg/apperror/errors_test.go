package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("CFG_001", "No reader bound", http.StatusBadRequest),
			expected: "[CFG_001] No reader bound",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("CFG_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("capture: %w", ErrConfiguration("recordNo required"))
	assert.Equal(t, CodeConfiguration, CodeOf(wrapped))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestReaderErrors(t *testing.T) {
	t.Run("offline with backup", func(t *testing.T) {
		err := ErrReaderOffline("r1", "r2")
		assert.Equal(t, CodeConnectivity, err.Code)
		assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus)
		assert.Equal(t, "Reader offline", err.Message)
		assert.Equal(t, "r2", err.Details["backup_reader_id"])
		assert.Equal(t, true, err.Details["failover_available"])
	})

	t.Run("offline without backup", func(t *testing.T) {
		err := ErrReaderOffline("r1", "")
		assert.NotContains(t, err.Details, "backup_reader_id")
	})

	t.Run("identity mismatch", func(t *testing.T) {
		err := ErrIdentityMismatch("r1", "SN-1", "SN-9")
		assert.Equal(t, CodeIdentityMismatch, err.Code)
		assert.Equal(t, "SN-9", err.Details["actual_serial"])
	})
}

func TestTransactionErrors(t *testing.T) {
	inner := errors.New("connection reset")
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"Configuration", ErrConfiguration("x"), "CFG_001", 400},
		{"Ambiguous", ErrAmbiguousState("tx-1", inner), "TXN_001", 502},
		{"ReaderBusy", ErrReaderBusy("r1"), "TXN_002", 409},
		{"Cancelled", ErrCancelled(), "TXN_003", 409},
		{"Timeout", ErrTimeout("waiting for card"), "TXN_004", 504},
		{"BindingNotFound", ErrBindingNotFound("t1"), "BND_001", 404},
		{"BindingConflict", ErrBindingConflict(), "BND_002", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}

	assert.True(t, errors.Is(ErrAmbiguousState("tx-1", inner), inner))
}

func TestAuthErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidCredentials", ErrInvalidCredentials(), "AUTH_001", 401},
		{"ClientExists", ErrClientExists(), "AUTH_002", 409},
		{"InvalidToken", ErrInvalidToken(), "AUTH_003", 401},
		{"ClientDisabled", ErrClientDisabled(), "AUTH_004", 403},
		{"OperatorOnly", ErrOperatorOnly(), "AUTH_005", 403},
		{"TerminalForbidden", ErrTerminalForbidden(), "SEC_005", 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	dbErr := ErrDatabaseError(inner)
	assert.Equal(t, "SYS_001", dbErr.Code)
	assert.Equal(t, 500, dbErr.HTTPStatus)
	assert.True(t, errors.Is(dbErr, inner))

	lockErr := ErrLockTimeout(inner)
	assert.Equal(t, "SYS_002", lockErr.Code)
	assert.Equal(t, 503, lockErr.HTTPStatus)

	encErr := ErrEncryptionFailure(inner)
	assert.Equal(t, "SYS_003", encErr.Code)
	assert.Equal(t, 500, encErr.HTTPStatus)
}

func TestRateLimitError(t *testing.T) {
	err := ErrRateLimitExceeded()
	assert.Equal(t, "RATE_001", err.Code)
	assert.Equal(t, 429, err.HTTPStatus)
}

func TestNotFoundEntity(t *testing.T) {
	err := ErrNotFound("Transaction")
	assert.Contains(t, err.Message, "Transaction")
	assert.Equal(t, 404, err.HTTPStatus)
}

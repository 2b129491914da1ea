// Package response writes the JSON envelopes every bridge endpoint returns.
package response

import (
	"errors"
	"net/http"
	"time"

	"payment-terminal-bridge/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ctxRequestID matches the key the request id middleware sets.
const ctxRequestID = "request_id"

// SuccessResponse wraps a result. Warning is set when the caller has to act
// on an otherwise successful result, such as a partial approval.
type SuccessResponse struct {
	Data      any    `json:"data"`
	Warning   string `json:"warning,omitempty"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse carries the stable error code clients switch on.
type ErrorResponse struct {
	ErrorCode string         `json:"error_code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id"`
	Timestamp string         `json:"timestamp"`
}

func OK(c *gin.Context, data any) {
	success(c, http.StatusOK, data, "")
}

func OKWithWarning(c *gin.Context, data any, warning string) {
	success(c, http.StatusOK, data, warning)
}

func Created(c *gin.Context, data any) {
	success(c, http.StatusCreated, data, "")
}

// Error renders err. An *apperror.AppError anywhere in the chain decides the
// status and code; anything else is a 500 whose cause is attached to the
// gin context for the request logger and never shown to the client.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		_ = c.Error(err)
		appErr = apperror.New("SYS_000", "Internal server error", http.StatusInternalServerError)
	} else if appErr.HTTPStatus >= http.StatusInternalServerError && appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}

	id, ts := stamp(c)
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		ErrorCode: appErr.Code,
		Message:   appErr.Message,
		Details:   appErr.Details,
		RequestID: id,
		Timestamp: ts,
	})
}

func success(c *gin.Context, status int, data any, warning string) {
	id, ts := stamp(c)
	c.JSON(status, SuccessResponse{Data: data, Warning: warning, RequestID: id, Timestamp: ts})
}

func stamp(c *gin.Context) (requestID, timestamp string) {
	requestID = c.GetString(ctxRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return requestID, time.Now().UTC().Format(time.RFC3339)
}

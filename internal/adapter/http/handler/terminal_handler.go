package handler

import (
	"fmt"
	"time"

	"payment-terminal-bridge/internal/adapter/http/dto"
	"payment-terminal-bridge/internal/adapter/http/middleware"
	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"
	"payment-terminal-bridge/pkg/apperror"
	"payment-terminal-bridge/pkg/response"

	"github.com/gin-gonic/gin"
)

// DefaultHeartbeat is the interval between keep-alive events on idle streams.
const DefaultHeartbeat = 15 * time.Second

// TerminalHandler exposes the payment operations and state of a terminal.
type TerminalHandler struct {
	orch      ports.PaymentOrchestrator
	heartbeat time.Duration
}

// NewTerminalHandler creates a new TerminalHandler.
func NewTerminalHandler(orch ports.PaymentOrchestrator, heartbeat time.Duration) *TerminalHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &TerminalHandler{orch: orch, heartbeat: heartbeat}
}

// respond renders an operation outcome. Declines and partial approvals are
// results, not errors.
func respond(c *gin.Context, result *domain.TransactionResult, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.IsPartialApproval {
		response.OKWithWarning(c, dto.NewResultResponse(result), fmt.Sprintf(
			"Partial approval: %s of %s authorized, collect the remainder with another tender",
			result.AmountAuthorized.StringFixed(2), result.AmountRequested.StringFixed(2)))
		return
	}
	response.OK(c, dto.NewResultResponse(result))
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	return true
}

// Sale handles POST /api/v1/terminals/:terminalID/sale.
func (h *TerminalHandler) Sale(c *gin.Context) {
	var req dto.SaleRequest
	if !bind(c, &req) {
		return
	}
	result, err := h.orch.ProcessPayment(c.Request.Context(), domain.PaymentRequest{
		TerminalID: c.Param(middleware.ParamTerminalID),
		InvoiceNo:  req.InvoiceNo,
		Amount:     req.Amount,
		TipAmount:  req.TipAmount,
	})
	respond(c, result, err)
}

// PreAuth handles POST /api/v1/terminals/:terminalID/preauth.
func (h *TerminalHandler) PreAuth(c *gin.Context) {
	var req dto.SaleRequest
	if !bind(c, &req) {
		return
	}
	result, err := h.orch.PreAuth(c.Request.Context(), domain.PaymentRequest{
		TerminalID: c.Param(middleware.ParamTerminalID),
		InvoiceNo:  req.InvoiceNo,
		Amount:     req.Amount,
	})
	respond(c, result, err)
}

// Capture handles POST /api/v1/terminals/:terminalID/capture.
func (h *TerminalHandler) Capture(c *gin.Context) {
	var req dto.CaptureRequest
	if !bind(c, &req) {
		return
	}
	result, err := h.orch.CapturePreAuth(c.Request.Context(), domain.PaymentRequest{
		TerminalID:     c.Param(middleware.ParamTerminalID),
		RecordNo:       req.RecordNo,
		Amount:         req.Amount,
		GratuityAmount: req.GratuityAmount,
	})
	respond(c, result, err)
}

// Increment handles POST /api/v1/terminals/:terminalID/increment. A failed
// increment answers 200 with approved=false.
func (h *TerminalHandler) Increment(c *gin.Context) {
	var req dto.IncrementRequest
	if !bind(c, &req) {
		return
	}
	result, err := h.orch.IncrementAuth(c.Request.Context(), domain.PaymentRequest{
		TerminalID: c.Param(middleware.ParamTerminalID),
		RecordNo:   req.RecordNo,
		Amount:     req.Amount,
	})
	respond(c, result, err)
}

// Adjust handles POST /api/v1/terminals/:terminalID/adjust.
func (h *TerminalHandler) Adjust(c *gin.Context) {
	var req dto.CaptureRequest
	if !bind(c, &req) {
		return
	}
	result, err := h.orch.AdjustTip(c.Request.Context(), domain.PaymentRequest{
		TerminalID:     c.Param(middleware.ParamTerminalID),
		RecordNo:       req.RecordNo,
		Amount:         req.Amount,
		GratuityAmount: req.GratuityAmount,
	})
	respond(c, result, err)
}

// Void handles POST /api/v1/terminals/:terminalID/void.
func (h *TerminalHandler) Void(c *gin.Context) {
	var req dto.VoidRequest
	if !bind(c, &req) {
		return
	}
	result, err := h.orch.VoidSale(c.Request.Context(), domain.PaymentRequest{
		TerminalID: c.Param(middleware.ParamTerminalID),
		RecordNo:   req.RecordNo,
	})
	respond(c, result, err)
}

// Return handles POST /api/v1/terminals/:terminalID/return.
func (h *TerminalHandler) Return(c *gin.Context) {
	var req dto.ReturnRequest
	if !bind(c, &req) {
		return
	}
	result, err := h.orch.ProcessReturn(c.Request.Context(), domain.PaymentRequest{
		TerminalID:  c.Param(middleware.ParamTerminalID),
		InvoiceNo:   req.InvoiceNo,
		RecordNo:    req.RecordNo,
		Amount:      req.Amount,
		CardPresent: req.CardPresent,
	})
	respond(c, result, err)
}

// CollectCard handles POST /api/v1/terminals/:terminalID/collect-card.
func (h *TerminalHandler) CollectCard(c *gin.Context) {
	result, err := h.orch.CollectCardData(c.Request.Context(), domain.PaymentRequest{
		TerminalID: c.Param(middleware.ParamTerminalID),
	})
	respond(c, result, err)
}

// Cancel handles POST /api/v1/terminals/:terminalID/cancel.
func (h *TerminalHandler) Cancel(c *gin.Context) {
	state, err := h.orch.CancelTransaction(c.Request.Context(), c.Param(middleware.ParamTerminalID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTerminalStateResponse(state))
}

// Acknowledge handles POST /api/v1/terminals/:terminalID/ack.
func (h *TerminalHandler) Acknowledge(c *gin.Context) {
	response.OK(c, dto.NewTerminalStateResponse(h.orch.Acknowledge(c.Param(middleware.ParamTerminalID))))
}

// Status handles GET /api/v1/terminals/:terminalID/status.
func (h *TerminalHandler) Status(c *gin.Context) {
	response.OK(c, dto.NewTerminalStateResponse(h.orch.Status(c.Param(middleware.ParamTerminalID))))
}

// Events handles GET /api/v1/terminals/:terminalID/events as a Server-Sent
// Events stream. The current state is sent first, then every StatusEvent.
func (h *TerminalHandler) Events(c *gin.Context) {
	terminalID := c.Param(middleware.ParamTerminalID)
	events, unsubscribe := h.orch.Subscribe(terminalID)
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("state", dto.NewTerminalStateResponse(h.orch.Status(terminalID)))
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(string(ev.Type), ev)
			c.Writer.Flush()
		case now := <-heartbeat.C:
			c.SSEvent("ping", now.Unix())
			c.Writer.Flush()
		}
	}
}

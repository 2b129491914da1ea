package handler

import (
	"net/http"
	"time"

	"payment-terminal-bridge/internal/adapter/http/dto"
	"payment-terminal-bridge/internal/adapter/http/middleware"
	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"
	"payment-terminal-bridge/pkg/response"

	"github.com/gin-gonic/gin"
)

// ParamReaderID is the route parameter holding a reader id.
const ParamReaderID = "readerID"

// BindingHandler manages terminal-to-reader bindings and reader diagnostics.
type BindingHandler struct {
	bindings ports.BindingManager
}

// NewBindingHandler creates a new BindingHandler.
func NewBindingHandler(bindings ports.BindingManager) *BindingHandler {
	return &BindingHandler{bindings: bindings}
}

// Get handles GET /api/v1/terminals/:terminalID/binding.
func (h *BindingHandler) Get(c *gin.Context) {
	b, err := h.bindings.Binding(c.Request.Context(), c.Param(middleware.ParamTerminalID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewBindingResponse(b))
}

// Update handles PUT /api/v1/terminals/:terminalID/binding.
func (h *BindingHandler) Update(c *gin.Context) {
	var req dto.BindingRequest
	if !bind(c, &req) {
		return
	}

	b, err := h.bindings.UpdateBinding(c.Request.Context(), &domain.TerminalBinding{
		TerminalID:      c.Param(middleware.ParamTerminalID),
		PrimaryReaderID: req.PrimaryReaderID,
		BackupReaderID:  req.BackupReaderID,
		FailoverTimeout: time.Duration(req.FailoverTimeoutMs) * time.Millisecond,
		Backend:         domain.BackendKind(req.Backend),
		Version:         req.Version,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewBindingResponse(b))
}

// Refresh handles POST /api/v1/terminals/:terminalID/binding/refresh.
func (h *BindingHandler) Refresh(c *gin.Context) {
	b, err := h.bindings.RefreshBinding(c.Request.Context(), c.Param(middleware.ParamTerminalID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewBindingResponse(b))
}

// Swap handles POST /api/v1/terminals/:terminalID/binding/swap. The caller
// decides to fail over; the bridge never swaps on its own.
func (h *BindingHandler) Swap(c *gin.Context) {
	terminalID := c.Param(middleware.ParamTerminalID)
	rd, err := h.bindings.SwapToBackup(c.Request.Context(), terminalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.SwapResponse{TerminalID: terminalID, ReaderID: rd.ID, ReaderName: rd.Name})
}

// Ping handles POST /api/v1/readers/:readerID/ping.
func (h *BindingHandler) Ping(c *gin.Context) {
	readerID := c.Param(ParamReaderID)
	if _, err := h.bindings.Reader(c.Request.Context(), readerID); err != nil {
		response.Error(c, err)
		return
	}
	online := h.bindings.CheckReaderStatus(c.Request.Context(), readerID)
	response.OK(c, dto.ReaderStatusResponse{ReaderID: readerID, Online: online})
}

// Beep handles POST /api/v1/readers/:readerID/beep.
func (h *BindingHandler) Beep(c *gin.Context) {
	readerID := c.Param(ParamReaderID)
	if _, err := h.bindings.Reader(c.Request.Context(), readerID); err != nil {
		response.Error(c, err)
		return
	}
	h.bindings.TriggerBeep(c.Request.Context(), readerID)
	c.Status(http.StatusAccepted)
}

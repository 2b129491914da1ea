package handler

import (
	"math"
	"strconv"

	"payment-terminal-bridge/internal/adapter/http/dto"
	"payment-terminal-bridge/internal/adapter/http/middleware"
	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"
	"payment-terminal-bridge/pkg/apperror"
	"payment-terminal-bridge/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardHandler handles stats, transaction history and reconciliation.
type DashboardHandler struct {
	reportingSvc ports.ReportingService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportingSvc ports.ReportingService) *DashboardHandler {
	return &DashboardHandler{reportingSvc: reportingSvc}
}

// scopeTerminal returns the terminal a request is limited to. Terminal
// clients always see only their own terminal; operators may filter by the
// terminal_id query parameter.
func scopeTerminal(c *gin.Context) (*string, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return nil, false
	}
	if claims.Role != domain.RoleOperator {
		if claims.TerminalID == nil {
			response.Error(c, apperror.ErrTerminalForbidden())
			return nil, false
		}
		return claims.TerminalID, true
	}
	if t := c.Query("terminal_id"); t != "" {
		return &t, true
	}
	return nil, true
}

// GetStats handles GET /api/v1/stats.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	terminalID, ok := scopeTerminal(c)
	if !ok {
		return
	}

	stats, err := h.reportingSvc.GetStats(c.Request.Context(), terminalID, c.DefaultQuery("period", "all"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatsResponse{
		TotalTransactions:     stats.TotalTransactions,
		Approved:              stats.Approved,
		Declined:              stats.Declined,
		Errored:               stats.Errored,
		PartialApprovals:      stats.PartialApprovals,
		ReconciliationPending: stats.ReconciliationPending,
		TotalAuthorized:       decimal.New(stats.TotalAuthorizedCents, -2).StringFixed(2),
		TotalReturned:         decimal.New(stats.TotalReturnedCents, -2).StringFixed(2),
	})
}

// ListTransactions handles GET /api/v1/transactions.
func (h *DashboardHandler) ListTransactions(c *gin.Context) {
	terminalID, ok := scopeTerminal(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := ports.TransactionListParams{
		TerminalID: terminalID,
		Page:       page,
		PageSize:   pageSize,
	}

	if s := c.Query("status"); s != "" {
		status := domain.TransactionStatus(s)
		params.Status = &status
	}
	if op := c.Query("operation"); op != "" {
		kind := domain.OperationKind(op)
		params.Kind = &kind
	}
	if r := c.Query("reconciliation_required"); r != "" {
		if v, err := strconv.ParseBool(r); err == nil {
			params.ReconciliationRequired = &v
		}
	}
	if f := c.Query("from"); f != "" {
		if v, err := strconv.ParseInt(f, 10, 64); err == nil {
			params.From = &v
		}
	}
	if t := c.Query("to"); t != "" {
		if v, err := strconv.ParseInt(t, 10, 64); err == nil {
			params.To = &v
		}
	}

	txns, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, dto.NewTransactionResponse(&txns[i]))
	}

	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	})
}

// GetTransaction handles GET /api/v1/transactions/:id.
func (h *DashboardHandler) GetTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction id"))
		return
	}

	detail, err := h.reportingSvc.GetTransaction(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	terminalID, ok := scopeTerminal(c)
	if !ok {
		return
	}
	if terminalID != nil && *terminalID != detail.Transaction.TerminalID {
		response.Error(c, apperror.ErrNotFound("transaction"))
		return
	}

	resp := dto.TransactionDetailResponse{
		TransactionResponse: dto.NewTransactionResponse(detail.Transaction),
		Deliveries:          make([]dto.DeliveryResponse, 0, len(detail.Deliveries)),
	}
	for i := range detail.Deliveries {
		resp.Deliveries = append(resp.Deliveries, dto.NewDeliveryResponse(&detail.Deliveries[i]))
	}
	response.OK(c, resp)
}

// Reconcile handles POST /api/v1/transactions/:id/reconcile.
func (h *DashboardHandler) Reconcile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction id"))
		return
	}

	var req dto.ReconcileRequest
	if !bind(c, &req) {
		return
	}
	dto.SanitizeStruct(&req)

	txn, err := h.reportingSvc.Reconcile(c.Request.Context(), ports.ReconcileRequest{
		TransactionID: id,
		Outcome:       domain.TransactionStatus(req.Outcome),
		Note:          req.Note,
		ClientID:      c.GetString(middleware.CtxClientID),
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTransactionResponse(txn))
}

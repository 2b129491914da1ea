package service

import (
	"context"

	"payment-terminal-bridge/internal/core/domain"
)

// ProcessPayment runs a card-present sale. A tip passed in the request is
// charged with the sale; otherwise the reader prompts for one.
func (o *Orchestrator) ProcessPayment(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error) {
	return o.execute(ctx, domain.OperationSale, req)
}

// PreAuth opens a tab with a card-present pre-authorization.
func (o *Orchestrator) PreAuth(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error) {
	return o.execute(ctx, domain.OperationPreAuth, req)
}

// IncrementAuth raises an open pre-authorization by req.Amount. Transport
// failures are logged and yield an unapproved result without error.
func (o *Orchestrator) IncrementAuth(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error) {
	return o.execute(ctx, domain.OperationIncrement, req)
}

// CapturePreAuth closes a tab for req.Amount plus req.GratuityAmount.
func (o *Orchestrator) CapturePreAuth(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error) {
	return o.execute(ctx, domain.OperationCapture, req)
}

// AdjustTip changes the gratuity on an approved authorization.
func (o *Orchestrator) AdjustTip(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error) {
	return o.execute(ctx, domain.OperationAdjust, req)
}

// VoidSale reverses an approved sale or pre-authorization.
func (o *Orchestrator) VoidSale(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error) {
	return o.execute(ctx, domain.OperationVoid, req)
}

// ProcessReturn refunds req.Amount, against req.RecordNo when given.
func (o *Orchestrator) ProcessReturn(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error) {
	return o.execute(ctx, domain.OperationReturn, req)
}

// CollectCardData reads card details without moving money.
func (o *Orchestrator) CollectCardData(ctx context.Context, req domain.PaymentRequest) (*domain.TransactionResult, error) {
	return o.execute(ctx, domain.OperationCollectCard, req)
}

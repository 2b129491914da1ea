package reader

import (
	"context"
	"errors"
	"testing"
	"time"

	"payment-terminal-bridge/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newSimGateway(delay time.Duration) (*Gateway, *Simulator) {
	sim := NewSimulator(delay)
	g := NewGateway(zerolog.Nop())
	g.Register(domain.BackendSimulator, sim)
	return g, sim
}

func TestGateway_UnknownBackend(t *testing.T) {
	g, _ := newSimGateway(0)
	_, err := g.Client(domain.BackendDirect)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestGateway_PreAuthIncrementCapture(t *testing.T) {
	g, _ := newSimGateway(0)
	c, err := g.Client(domain.BackendSimulator)
	require.NoError(t, err)

	ctx := context.Background()
	rd := &domain.Reader{ID: "reader-a", SerialNumber: "SN-1"}

	pre, err := c.Transact(ctx, rd, domain.BuildCommand(domain.OperationPreAuth,
		domain.PaymentRequest{InvoiceNo: "INV-1", Amount: dec("50.00")}))
	require.NoError(t, err)
	require.True(t, pre.Approved)
	require.NotEmpty(t, pre.RecordNo)
	assert.True(t, pre.AmountAuthorized.Equal(dec("50")))

	chain := []domain.Transaction{{Kind: domain.OperationPreAuth, Status: domain.StatusApproved, RecordNo: pre.RecordNo, Result: pre}}
	inc, err := c.Transact(ctx, rd, domain.IncrementCommand(
		domain.PaymentRequest{RecordNo: pre.RecordNo, Amount: dec("10.00")}, chain))
	require.NoError(t, err)
	assert.True(t, inc.Approved)
	assert.True(t, inc.AmountAuthorized.Equal(dec("60")), "authorized %s", inc.AmountAuthorized)
	assert.False(t, inc.IsPartialApproval)

	capt, err := c.Transact(ctx, rd, domain.BuildCommand(domain.OperationCapture,
		domain.PaymentRequest{RecordNo: pre.RecordNo, Amount: dec("45.00"), GratuityAmount: dec("9.00")}))
	require.NoError(t, err)
	assert.True(t, capt.Approved)
	assert.True(t, capt.AmountAuthorized.Equal(dec("54")))
	assert.False(t, capt.IsPartialApproval)
	assert.Equal(t, pre.RecordNo, capt.RecordNo)
}

func TestGateway_SimulatorTriggers(t *testing.T) {
	g, _ := newSimGateway(0)
	c, _ := g.Client(domain.BackendSimulator)
	rd := &domain.Reader{ID: "reader-a"}

	declined, err := c.Transact(context.Background(), rd, domain.BuildCommand(domain.OperationSale,
		domain.PaymentRequest{InvoiceNo: "INV-2", Amount: dec("20.13")}))
	require.NoError(t, err)
	assert.False(t, declined.Approved)
	assert.Equal(t, "DECLINED - INSUFFICIENT FUNDS", declined.Error)

	partial, err := c.Transact(context.Background(), rd, domain.BuildCommand(domain.OperationSale,
		domain.PaymentRequest{InvoiceNo: "INV-3", Amount: dec("40.37")}))
	require.NoError(t, err)
	assert.True(t, partial.Approved)
	assert.True(t, partial.IsPartialApproval)
	assert.True(t, partial.AmountAuthorized.Equal(dec("20.18")))
}

func TestGateway_VoidClosesChain(t *testing.T) {
	g, _ := newSimGateway(0)
	c, _ := g.Client(domain.BackendSimulator)
	rd := &domain.Reader{ID: "reader-a"}
	ctx := context.Background()

	sale, err := c.Transact(ctx, rd, domain.BuildCommand(domain.OperationSale,
		domain.PaymentRequest{InvoiceNo: "INV-4", Amount: dec("12.00")}))
	require.NoError(t, err)

	void, err := c.Transact(ctx, rd, domain.BuildCommand(domain.OperationVoid, domain.PaymentRequest{RecordNo: sale.RecordNo}))
	require.NoError(t, err)
	assert.True(t, void.Approved)
	assert.False(t, void.IsPartialApproval)

	again, err := c.Transact(ctx, rd, domain.BuildCommand(domain.OperationAdjust,
		domain.PaymentRequest{RecordNo: sale.RecordNo, Amount: dec("12.00"), GratuityAmount: dec("2.00")}))
	require.NoError(t, err)
	assert.False(t, again.Approved)
}

func TestGateway_CardWaitHonoursContext(t *testing.T) {
	g, _ := newSimGateway(time.Minute)
	c, _ := g.Client(domain.BackendSimulator)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Transact(ctx, &domain.Reader{ID: "reader-a"}, domain.BuildCommand(domain.OperationSale,
		domain.PaymentRequest{InvoiceNo: "INV-5", Amount: dec("5.00")}))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestGateway_IdentifyAndOffline(t *testing.T) {
	g, sim := newSimGateway(0)
	c, _ := g.Client(domain.BackendSimulator)
	rd := &domain.Reader{ID: "reader-a", SerialNumber: "SN-1"}

	id, err := c.Identify(context.Background(), rd)
	require.NoError(t, err)
	assert.True(t, rd.Matches(id))

	sim.SetOnline("reader-a", false)
	_, err = c.Identify(context.Background(), rd)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, c.Reset(context.Background(), rd), ErrTransport)

	sim.SetOnline("reader-a", true)
	assert.NoError(t, c.Beep(context.Background(), rd))
}

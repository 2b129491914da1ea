package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"payment-terminal-bridge/internal/adapter/metrics"
	"payment-terminal-bridge/internal/adapter/reader"
	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"
	"payment-terminal-bridge/internal/core/ports/mocks"
	"payment-terminal-bridge/pkg/apperror"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// orchHarness wires an Orchestrator to gomock ports. allow installs
// stateful fakes for the plumbing most tests do not assert on.
type orchHarness struct {
	o        *Orchestrator
	sup      *Supervisor
	bus      *EventBus
	bindings *mocks.MockBindingManager
	gateway  *mocks.MockReaderGateway
	client   *mocks.MockReaderClient
	txRepo   *mocks.MockTransactionRepository
	results  *mocks.MockResultCache
	locks    *mocks.MockReaderLock
	webhooks *mocks.MockWebhookService

	binding domain.TerminalBinding
	readers map[string]*domain.Reader
	backend ports.ReaderClient

	mu        sync.Mutex
	txns      map[uuid.UUID]domain.Transaction
	order     []uuid.UUID
	cache     map[string][]byte
	held      map[string]bool
	delivered []domain.Transaction
	marks     map[string]bool
}

func newOrchHarness(t *testing.T) *orchHarness {
	ctrl := gomock.NewController(t)
	h := &orchHarness{
		bus:      NewEventBus(),
		bindings: mocks.NewMockBindingManager(ctrl),
		gateway:  mocks.NewMockReaderGateway(ctrl),
		client:   mocks.NewMockReaderClient(ctrl),
		txRepo:   mocks.NewMockTransactionRepository(ctrl),
		results:  mocks.NewMockResultCache(ctrl),
		locks:    mocks.NewMockReaderLock(ctrl),
		webhooks: mocks.NewMockWebhookService(ctrl),
		binding: domain.TerminalBinding{
			TerminalID:      "T1",
			PrimaryReaderID: "reader-a",
			BackupReaderID:  strPtr("reader-b"),
			FailoverTimeout: 200 * time.Millisecond,
			Backend:         domain.BackendSimulator,
			Version:         1,
		},
		readers: map[string]*domain.Reader{
			"reader-a": {ID: "reader-a", SerialNumber: "SN-A"},
			"reader-b": {ID: "reader-b", SerialNumber: "SN-B"},
		},
		txns:  make(map[uuid.UUID]domain.Transaction),
		cache: make(map[string][]byte),
		held:  make(map[string]bool),
		marks: make(map[string]bool),
	}
	h.backend = h.client
	h.sup = NewSupervisor(h.bus, time.Second, newTestLogger())
	h.o = NewOrchestrator(h.bindings, h.gateway, h.txRepo, h.results, h.locks, h.webhooks, h.sup, h.bus,
		OrchestratorConfig{
			RequestTimeout:    time.Second,
			CardTimeout:       time.Second,
			PreflightAttempts: 2,
			LockTTL:           time.Minute,
			ResultTTL:         time.Hour,
		}, newTestLogger())
	return h
}

// useSimulator routes commands through the real gateway and simulator.
func (h *orchHarness) useSimulator(t *testing.T, delay time.Duration) *reader.Simulator {
	sim := reader.NewSimulator(delay)
	gw := reader.NewGateway(newTestLogger())
	gw.Register(domain.BackendSimulator, sim)
	client, err := gw.Client(domain.BackendSimulator)
	require.NoError(t, err)
	h.backend = client
	return sim
}

func (h *orchHarness) allow() {
	h.bindings.EXPECT().Binding(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, terminalID string) (*domain.TerminalBinding, error) {
			if terminalID != h.binding.TerminalID {
				return nil, apperror.ErrConfiguration("terminal " + terminalID + " has no bound reader")
			}
			b := h.binding
			return &b, nil
		}).AnyTimes()
	h.bindings.EXPECT().Reader(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string) (*domain.Reader, error) {
			rd, ok := h.readers[id]
			if !ok {
				return nil, apperror.ErrConfiguration("reader " + id + " is not registered")
			}
			return rd, nil
		}).AnyTimes()
	h.bindings.EXPECT().MarkReader(gomock.Any(), gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, id string, online bool) {
			h.mu.Lock()
			h.marks[id] = online
			h.mu.Unlock()
		}).AnyTimes()
	h.gateway.EXPECT().Client(gomock.Any()).DoAndReturn(
		func(domain.BackendKind) (ports.ReaderClient, error) { return h.backend, nil }).AnyTimes()

	h.locks.EXPECT().Acquire(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string, _ time.Duration) (string, bool, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			if h.held[id] {
				return "", false, nil
			}
			h.held[id] = true
			return "tok-" + id, true, nil
		}).AnyTimes()
	h.locks.EXPECT().Release(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id, _ string) error {
			h.mu.Lock()
			delete(h.held, id)
			h.mu.Unlock()
			return nil
		}).AnyTimes()

	h.results.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, key string) ([]byte, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			return h.cache[key], nil
		}).AnyTimes()
	h.results.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, key string, v []byte, _ time.Duration) error {
			h.mu.Lock()
			h.cache[key] = v
			h.mu.Unlock()
			return nil
		}).AnyTimes()

	h.txRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, t *domain.Transaction) error {
			h.mu.Lock()
			h.txns[t.ID] = *t
			h.order = append(h.order, t.ID)
			h.mu.Unlock()
			return nil
		}).AnyTimes()
	h.txRepo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id uuid.UUID, status domain.TransactionStatus) error {
			h.mu.Lock()
			t := h.txns[id]
			t.Status = status
			h.txns[id] = t
			h.mu.Unlock()
			return nil
		}).AnyTimes()
	h.txRepo.EXPECT().Complete(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, t *domain.Transaction) error {
			h.mu.Lock()
			h.txns[t.ID] = *t
			h.mu.Unlock()
			return nil
		}).AnyTimes()
	h.txRepo.EXPECT().ListByRecordNo(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, recordNo string) ([]domain.Transaction, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			var out []domain.Transaction
			for _, id := range h.order {
				if t := h.txns[id]; t.RecordNo == recordNo && t.Status == domain.StatusApproved {
					out = append(out, t)
				}
			}
			return out, nil
		}).AnyTimes()
	h.txRepo.EXPECT().FindApprovedByInvoice(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, terminalID string, kind domain.OperationKind, invoiceNo string, requested decimal.Decimal) (*domain.Transaction, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, id := range h.order {
				t := h.txns[id]
				if t.TerminalID == terminalID && t.Kind == kind && t.InvoiceNo == invoiceNo &&
					t.AmountRequested.Equal(requested) && t.Status == domain.StatusApproved {
					return &t, nil
				}
			}
			return nil, nil
		}).AnyTimes()

	h.webhooks.EXPECT().EnqueueWebhook(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, t *domain.Transaction) error {
			h.mu.Lock()
			h.delivered = append(h.delivered, *t)
			h.mu.Unlock()
			return nil
		}).AnyTimes()
}

// seed stores an approved record, as if an earlier operation completed.
func (h *orchHarness) seed(t domain.Transaction) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	h.txns[t.ID] = t
	h.order = append(h.order, t.ID)
}

func (h *orchHarness) records() []domain.Transaction {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.Transaction, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.txns[id])
	}
	return out
}

func (h *orchHarness) last() domain.Transaction {
	recs := h.records()
	return recs[len(recs)-1]
}

func identityOf(rd string) *domain.ReaderIdentity {
	return &domain.ReaderIdentity{SerialNumber: map[string]string{"reader-a": "SN-A", "reader-b": "SN-B"}[rd]}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func saleRequest(invoice, amount string) domain.PaymentRequest {
	return domain.PaymentRequest{TerminalID: "T1", InvoiceNo: invoice, Amount: dec(amount)}
}

func waitForStatus(t *testing.T, events <-chan domain.StatusEvent, status domain.TransactionStatus) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Status == status {
				return
			}
		case <-deadline:
			t.Fatalf("terminal never reached %s", status)
		}
	}
}

func TestOrchestrator_SaleApproved(t *testing.T) {
	h := newOrchHarness(t)
	events, unsub := h.bus.Subscribe("T1")
	defer unsub()

	approved := &domain.TransactionResult{Approved: true, RecordNo: "R1", AuthCode: "A1"}
	approved.Finalize(dec("42.50"))

	h.client.EXPECT().Identify(gomock.Any(), h.readers["reader-a"]).Return(identityOf("reader-a"), nil)
	h.client.EXPECT().Transact(gomock.Any(), h.readers["reader-a"], gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *domain.Reader, cmd domain.ReaderCommand) (*domain.TransactionResult, error) {
			assert.Equal(t, domain.OperationSale, cmd.Kind)
			assert.Equal(t, "INV-1", cmd.Payload["invoiceNo"])
			assert.Equal(t, "42.50", cmd.Payload["amount"])
			assert.Equal(t, true, cmd.Payload["tipRequest"])
			return approved, nil
		})
	h.allow()

	res, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-1", "42.50"))
	require.NoError(t, err)
	assert.True(t, res.Approved)
	assert.Equal(t, "R1", res.RecordNo)

	rec := h.last()
	assert.Equal(t, domain.StatusApproved, rec.Status)
	assert.Equal(t, "R1", rec.RecordNo)
	assert.Equal(t, "reader-a", rec.ReaderID)
	assert.NotNil(t, rec.CompletedAt)
	assert.True(t, h.marks["reader-a"])
	assert.Contains(t, h.cache, "T1:sale:INV-1:42.50")
	require.Len(t, h.delivered, 1)

	got := drain(events)
	require.Len(t, got, 3)
	assert.Equal(t, domain.StatusCheckingReader, got[0].Status)
	assert.Equal(t, domain.StatusWaitingCard, got[1].Status)
	assert.Equal(t, domain.EventResult, got[2].Type)
	assert.Equal(t, domain.StatusApproved, got[2].Status)
	assert.Equal(t, &rec.ID, got[2].TransactionID)

	assert.Empty(t, h.held, "reader lock must be released")
}

func TestOrchestrator_Declined(t *testing.T) {
	h := newOrchHarness(t)

	declined := &domain.TransactionResult{ResponseMessage: "DECLINED"}
	declined.Finalize(dec("20.00"))

	h.client.EXPECT().Identify(gomock.Any(), gomock.Any()).Return(identityOf("reader-a"), nil)
	h.client.EXPECT().Transact(gomock.Any(), gomock.Any(), gomock.Any()).Return(declined, nil)
	h.allow()

	res, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-2", "20.00"))
	require.NoError(t, err, "declines are results, not errors")
	assert.False(t, res.Approved)
	assert.Equal(t, "DECLINED", res.Error)

	rec := h.last()
	assert.Equal(t, domain.StatusDeclined, rec.Status)
	assert.Equal(t, "DECLINED", rec.ErrorMessage)
	assert.NotContains(t, h.cache, "T1:sale:INV-2:20.00", "declines are not replayed")
	assert.Equal(t, domain.StatusDeclined, h.o.Status("T1").Status)
	assert.Equal(t, domain.StatusIdle, h.o.Acknowledge("T1").Status)
}

func TestOrchestrator_ChainOperationsRequireRecordNo(t *testing.T) {
	// No expectations are set: any binding lookup or reader call fails the test.
	h := newOrchHarness(t)
	ctx := context.Background()
	req := domain.PaymentRequest{TerminalID: "T1", Amount: dec("45.00"), GratuityAmount: dec("9.00")}

	for name, op := range map[string]func(context.Context, domain.PaymentRequest) (*domain.TransactionResult, error){
		"capture":   h.o.CapturePreAuth,
		"increment": h.o.IncrementAuth,
		"adjust":    h.o.AdjustTip,
		"void":      h.o.VoidSale,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := op(ctx, req)
			assert.Equal(t, apperror.CodeConfiguration, apperror.CodeOf(err))
		})
	}
}

func TestOrchestrator_Validation(t *testing.T) {
	h := newOrchHarness(t)
	ctx := context.Background()

	_, err := h.o.ProcessPayment(ctx, domain.PaymentRequest{TerminalID: "T1", Amount: dec("0")})
	requireCode(t, err, "VAL_001")

	_, err = h.o.ProcessPayment(ctx, domain.PaymentRequest{TerminalID: "T1", Amount: dec("5"), TipAmount: dec("-1")})
	requireCode(t, err, "VAL_001")

	_, err = h.o.ProcessPayment(ctx, domain.PaymentRequest{Amount: dec("5")})
	requireCode(t, err, "VAL_001")
}

func TestOrchestrator_UnboundTerminal(t *testing.T) {
	h := newOrchHarness(t)
	h.allow()

	_, err := h.o.ProcessPayment(context.Background(), domain.PaymentRequest{TerminalID: "T9", InvoiceNo: "X", Amount: dec("5")})
	assert.Equal(t, apperror.CodeConfiguration, apperror.CodeOf(err))
	assert.Empty(t, h.records())
}

func TestOrchestrator_InvalidChain(t *testing.T) {
	h := newOrchHarness(t)
	h.allow()
	ctx := context.Background()

	h.seed(domain.Transaction{TerminalID: "T1", Kind: domain.OperationSale, RecordNo: "S1", Status: domain.StatusApproved})
	h.seed(domain.Transaction{TerminalID: "T1", Kind: domain.OperationPreAuth, RecordNo: "P1", Status: domain.StatusApproved})
	h.seed(domain.Transaction{TerminalID: "T1", Kind: domain.OperationCapture, RecordNo: "P1", Status: domain.StatusApproved})
	h.seed(domain.Transaction{TerminalID: "T1", Kind: domain.OperationPreAuth, RecordNo: "V1", Status: domain.StatusApproved})
	h.seed(domain.Transaction{TerminalID: "T1", Kind: domain.OperationVoid, RecordNo: "V1", Status: domain.StatusApproved})

	tests := []struct {
		name string
		run  func() error
	}{
		{"unknown recordNo", func() error {
			_, err := h.o.CapturePreAuth(ctx, domain.PaymentRequest{TerminalID: "T1", RecordNo: "NOPE", Amount: dec("10")})
			return err
		}},
		{"capture of a sale", func() error {
			_, err := h.o.CapturePreAuth(ctx, domain.PaymentRequest{TerminalID: "T1", RecordNo: "S1", Amount: dec("10")})
			return err
		}},
		{"increment after capture", func() error {
			_, err := h.o.IncrementAuth(ctx, domain.PaymentRequest{TerminalID: "T1", RecordNo: "P1", Amount: dec("10")})
			return err
		}},
		{"adjust on voided chain", func() error {
			_, err := h.o.AdjustTip(ctx, domain.PaymentRequest{TerminalID: "T1", RecordNo: "V1", Amount: dec("10")})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, apperror.CodeConfiguration, apperror.CodeOf(tt.run()))
		})
	}
}

func TestOrchestrator_PreAuthIncrementCapture(t *testing.T) {
	h := newOrchHarness(t)
	h.useSimulator(t, 0)
	h.allow()
	ctx := context.Background()

	pre, err := h.o.PreAuth(ctx, domain.PaymentRequest{TerminalID: "T1", InvoiceNo: "TAB-7", Amount: dec("50.00")})
	require.NoError(t, err)
	require.True(t, pre.Approved)
	require.NotEmpty(t, pre.RecordNo)
	recordNo := pre.RecordNo

	inc, err := h.o.IncrementAuth(ctx, domain.PaymentRequest{TerminalID: "T1", RecordNo: recordNo, Amount: dec("10.00")})
	require.NoError(t, err)
	assert.True(t, inc.Approved)
	assert.Equal(t, recordNo, inc.RecordNo)
	assert.True(t, inc.AmountRequested.Equal(dec("60.00")), "requested %s", inc.AmountRequested)
	assert.True(t, inc.AmountAuthorized.Equal(dec("60.00")), "authorized %s", inc.AmountAuthorized)
	assert.False(t, inc.IsPartialApproval)

	// A second increment builds on the new total.
	inc2, err := h.o.IncrementAuth(ctx, domain.PaymentRequest{TerminalID: "T1", RecordNo: recordNo, Amount: dec("5.00")})
	require.NoError(t, err)
	assert.True(t, inc2.AmountAuthorized.Equal(dec("65.00")), "authorized %s", inc2.AmountAuthorized)

	capture, err := h.o.CapturePreAuth(ctx, domain.PaymentRequest{
		TerminalID:     "T1",
		RecordNo:       recordNo,
		Amount:         dec("45.00"),
		GratuityAmount: dec("9.00"),
	})
	require.NoError(t, err)
	assert.True(t, capture.Approved)
	assert.True(t, capture.AmountAuthorized.Equal(dec("54.00")), "authorized %s", capture.AmountAuthorized)
	assert.False(t, capture.IsPartialApproval)
	assert.Equal(t, recordNo, capture.RecordNo)

	rec := h.last()
	assert.Equal(t, domain.OperationCapture, rec.Kind)
	assert.True(t, rec.TipAmount.Equal(dec("9.00")))

	// A second capture on the same chain replays instead of charging again.
	again, err := h.o.CapturePreAuth(ctx, domain.PaymentRequest{TerminalID: "T1", RecordNo: recordNo, Amount: dec("45.00"), GratuityAmount: dec("9.00")})
	require.NoError(t, err)
	assert.True(t, again.AmountAuthorized.Equal(dec("54.00")))
	assert.Len(t, h.records(), 4)

	// Increment is refused once the tab is closed.
	_, err = h.o.IncrementAuth(ctx, domain.PaymentRequest{TerminalID: "T1", RecordNo: recordNo, Amount: dec("1.00")})
	assert.Equal(t, apperror.CodeConfiguration, apperror.CodeOf(err))
}

func TestOrchestrator_PartialApproval(t *testing.T) {
	h := newOrchHarness(t)
	h.useSimulator(t, 0)
	h.allow()

	res, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-P", "40.37"))
	require.NoError(t, err)
	assert.True(t, res.Approved)
	assert.True(t, res.IsPartialApproval)
	assert.True(t, res.AmountRequested.Equal(dec("40.37")))
	assert.True(t, res.AmountAuthorized.Equal(dec("20.18")))
	assert.True(t, h.last().Result.IsPartialApproval)
}

func TestOrchestrator_ExactFloatAmountIsNotPartial(t *testing.T) {
	h := newOrchHarness(t)
	h.useSimulator(t, 0)
	h.allow()

	res, err := h.o.ProcessPayment(context.Background(), domain.PaymentRequest{
		TerminalID: "T1", InvoiceNo: "INV-F", Amount: decimal.NewFromFloat(65.82),
	})
	require.NoError(t, err)
	assert.True(t, res.Approved)
	assert.False(t, res.IsPartialApproval)
}

func TestOrchestrator_ReplayFromCache(t *testing.T) {
	h := newOrchHarness(t)
	h.allow()

	prior := &domain.TransactionResult{Approved: true, RecordNo: "R9", AmountAuthorized: dec("12.00")}
	data, err := json.Marshal(prior)
	require.NoError(t, err)
	h.cache["T1:sale:INV-9:12.00"] = data
	before := testutil.ToFloat64(metrics.ReplaysTotal.WithLabelValues("redis"))

	res, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-9", "12.00"))
	require.NoError(t, err)
	assert.Equal(t, "R9", res.RecordNo)
	assert.Empty(t, h.records(), "a replay creates no record")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ReplaysTotal.WithLabelValues("redis")))
}

func TestOrchestrator_ReplayFromDatabase(t *testing.T) {
	h := newOrchHarness(t)
	h.allow()

	h.seed(domain.Transaction{
		TerminalID: "T1",
		Kind:       domain.OperationSale,
		InvoiceNo:       "INV-8",
		AmountRequested: dec("12.00"),
		RecordNo:        "R8",
		Status:          domain.StatusApproved,
		Result:          &domain.TransactionResult{Approved: true, RecordNo: "R8"},
	})

	res, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-8", "12.00"))
	require.NoError(t, err)
	assert.Equal(t, "R8", res.RecordNo)
	assert.Len(t, h.records(), 1)
	assert.Contains(t, h.cache, "T1:sale:INV-8:12.00", "database replay warms the cache")
}

func TestOrchestrator_SplitTenderIsNotReplayed(t *testing.T) {
	h := newOrchHarness(t)
	h.useSimulator(t, 0)
	h.allow()
	ctx := context.Background()

	first, err := h.o.ProcessPayment(ctx, saleRequest("INV-SPLIT", "30.00"))
	require.NoError(t, err)
	require.True(t, first.Approved)

	second, err := h.o.ProcessPayment(ctx, saleRequest("INV-SPLIT", "20.00"))
	require.NoError(t, err)
	assert.True(t, second.Approved)
	assert.NotEqual(t, first.RecordNo, second.RecordNo, "second tender reached the reader")
	assert.True(t, second.AmountAuthorized.Equal(dec("20.00")), "authorized %s", second.AmountAuthorized)
	assert.Len(t, h.records(), 2)

	// Retrying the first tender still replays it.
	again, err := h.o.ProcessPayment(ctx, saleRequest("INV-SPLIT", "30.00"))
	require.NoError(t, err)
	assert.Equal(t, first.RecordNo, again.RecordNo)
	assert.Len(t, h.records(), 2)
}

func TestOrchestrator_LockCoversSlowBinding(t *testing.T) {
	h := newOrchHarness(t)
	h.useSimulator(t, 0)
	h.binding.FailoverTimeout = 30 * time.Second
	h.o.cfg.CardTimeout = time.Minute

	var ttl time.Duration
	h.locks.EXPECT().Acquire(gomock.Any(), "reader-a", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, d time.Duration) (string, bool, error) {
			ttl = d
			return "tok-reader-a", true, nil
		})
	h.allow()

	_, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-L", "10.00"))
	require.NoError(t, err)
	assert.Equal(t, 2*30*time.Second+time.Minute+persistTimeout, ttl, "pre-flight attempts plus the card wait")

	// Background operations skip pre-flight and fall back to the configured floor.
	inc := domain.BuildCommand(domain.OperationIncrement, domain.PaymentRequest{RecordNo: "R1", Amount: dec("5")})
	assert.Equal(t, time.Minute, h.o.lockTTL(&h.binding, inc))
}

func TestOrchestrator_ReaderBusy(t *testing.T) {
	h := newOrchHarness(t)
	h.allow()
	h.held["reader-a"] = true
	before := testutil.ToFloat64(metrics.ReaderBusyTotal)

	_, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-B", "5.00"))
	assert.Equal(t, apperror.CodeReaderBusy, apperror.CodeOf(err))
	assert.Empty(t, h.records())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ReaderBusyTotal))
}

func TestOrchestrator_ConcurrentSaleAndVoidOnOneReader(t *testing.T) {
	h := newOrchHarness(t)
	h.seed(domain.Transaction{TerminalID: "T1", Kind: domain.OperationSale, RecordNo: "R0", Status: domain.StatusApproved})

	events, unsub := h.bus.Subscribe("T1")
	defer unsub()

	release := make(chan struct{})
	approved := &domain.TransactionResult{Approved: true, RecordNo: "R1"}
	approved.Finalize(dec("30.00"))

	h.client.EXPECT().Identify(gomock.Any(), gomock.Any()).Return(identityOf("reader-a"), nil)
	h.client.EXPECT().Transact(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *domain.Reader, domain.ReaderCommand) (*domain.TransactionResult, error) {
			<-release
			return approved, nil
		}).Times(1)
	h.allow()

	done := make(chan error, 1)
	go func() {
		_, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-C", "30.00"))
		done <- err
	}()
	waitForStatus(t, events, domain.StatusWaitingCard)

	_, err := h.o.VoidSale(context.Background(), domain.PaymentRequest{TerminalID: "T1", RecordNo: "R0"})
	assert.Equal(t, apperror.CodeReaderBusy, apperror.CodeOf(err))

	close(release)
	require.NoError(t, <-done)
}

func TestOrchestrator_CancelMidFlight(t *testing.T) {
	h := newOrchHarness(t)
	events, unsub := h.bus.Subscribe("T1")
	defer unsub()

	h.client.EXPECT().Identify(gomock.Any(), gomock.Any()).Return(identityOf("reader-a"), nil)
	h.client.EXPECT().Transact(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *domain.Reader, _ domain.ReaderCommand) (*domain.TransactionResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
	h.client.EXPECT().Reset(gomock.Any(), h.readers["reader-a"]).Return(nil).Times(1)
	h.allow()

	done := make(chan error, 1)
	go func() {
		_, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-X", "10.00"))
		done <- err
	}()
	waitForStatus(t, events, domain.StatusWaitingCard)

	state, err := h.o.CancelTransaction(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, state.Status)
	assert.Empty(t, state.Error)

	err = <-done
	assert.Equal(t, apperror.CodeCancelled, apperror.CodeOf(err))

	rec := h.last()
	assert.Equal(t, domain.StatusError, rec.Status)
	assert.Equal(t, apperror.CodeCancelled, rec.ErrorCode)
	assert.False(t, rec.ReconciliationRequired, "cancel while waiting for a card moves no money")

	// The unwinding operation does not overwrite the idle state.
	assert.Equal(t, domain.StatusIdle, h.o.Status("T1").Status)
}

func TestOrchestrator_CancelWhenIdleResetsBoundReader(t *testing.T) {
	h := newOrchHarness(t)
	h.client.EXPECT().Reset(gomock.Any(), h.readers["reader-a"]).Return(errors.New("no answer")).Times(1)
	h.allow()

	state, err := h.o.CancelTransaction(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, state.Status)
}

func TestOrchestrator_CardTimeout(t *testing.T) {
	h := newOrchHarness(t)
	h.o.cfg.CardTimeout = 30 * time.Millisecond

	h.client.EXPECT().Identify(gomock.Any(), gomock.Any()).Return(identityOf("reader-a"), nil)
	h.client.EXPECT().Transact(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *domain.Reader, _ domain.ReaderCommand) (*domain.TransactionResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
	h.client.EXPECT().Reset(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	h.allow()

	_, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-T", "10.00"))
	assert.Equal(t, apperror.CodeTimeout, apperror.CodeOf(err))

	rec := h.last()
	assert.Equal(t, domain.StatusError, rec.Status, "no record is left pending")
	assert.Equal(t, apperror.CodeTimeout, rec.ErrorCode)
	assert.NotNil(t, rec.CompletedAt)
	assert.Equal(t, domain.StatusError, h.o.Status("T1").Status)
}

func TestOrchestrator_CardTimeoutWithClaimedRelayCommandIsAmbiguous(t *testing.T) {
	h := newOrchHarness(t)
	h.o.cfg.CardTimeout = 30 * time.Millisecond
	before := testutil.ToFloat64(metrics.AmbiguousTotal)

	h.client.EXPECT().Identify(gomock.Any(), gomock.Any()).Return(identityOf("reader-a"), nil)
	h.client.EXPECT().Transact(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *domain.Reader, _ domain.ReaderCommand) (*domain.TransactionResult, error) {
			<-ctx.Done()
			return nil, fmt.Errorf("sale on reader-a: %w", fmt.Errorf("%w: %w", domain.ErrCommandInFlight, ctx.Err()))
		})
	h.client.EXPECT().Reset(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	h.allow()

	_, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-TC", "10.00"))
	assert.Equal(t, apperror.CodeAmbiguousState, apperror.CodeOf(err))

	rec := h.last()
	assert.Equal(t, domain.StatusError, rec.Status)
	assert.True(t, rec.ReconciliationRequired)
	assert.Equal(t, apperror.CodeAmbiguousState, rec.ErrorCode)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.AmbiguousTotal))
}

func TestOrchestrator_CancelWithClaimedRelayCommandIsAmbiguous(t *testing.T) {
	h := newOrchHarness(t)
	dispatched := make(chan struct{})

	h.client.EXPECT().Identify(gomock.Any(), gomock.Any()).Return(identityOf("reader-a"), nil)
	h.client.EXPECT().Transact(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *domain.Reader, _ domain.ReaderCommand) (*domain.TransactionResult, error) {
			close(dispatched)
			<-ctx.Done()
			return nil, fmt.Errorf("%w: %w", domain.ErrCommandInFlight, ctx.Err())
		})
	h.client.EXPECT().Reset(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	h.allow()

	errc := make(chan error, 1)
	go func() {
		_, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-CC", "10.00"))
		errc <- err
	}()
	<-dispatched
	_, err := h.o.CancelTransaction(context.Background(), "T1")
	require.NoError(t, err)

	err = <-errc
	assert.Equal(t, apperror.CodeAmbiguousState, apperror.CodeOf(err))
	assert.True(t, h.last().ReconciliationRequired)
}

func TestOrchestrator_ReaderOfflineSuggestsFailover(t *testing.T) {
	h := newOrchHarness(t)
	events, unsub := h.bus.Subscribe("T1")
	defer unsub()

	h.client.EXPECT().Identify(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused")).Times(2)
	h.allow()

	_, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-O", "10.00"))
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeConnectivity, appErr.Code)
	assert.Equal(t, "reader-b", appErr.Details["backup_reader_id"])
	assert.Equal(t, false, h.marks["reader-a"])

	var types []domain.EventType
	for _, ev := range drain(events) {
		types = append(types, ev.Type)
	}
	assert.Contains(t, types, domain.EventReaderOffline)
	assert.Contains(t, types, domain.EventFailoverSuggested)

	rec := h.last()
	assert.Equal(t, domain.StatusError, rec.Status)
	assert.False(t, rec.ReconciliationRequired)
}

func TestOrchestrator_IdentityMismatch(t *testing.T) {
	h := newOrchHarness(t)
	h.client.EXPECT().Identify(gomock.Any(), gomock.Any()).Return(&domain.ReaderIdentity{SerialNumber: "SN-OTHER"}, nil)
	h.allow()

	_, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-M", "10.00"))
	assert.Equal(t, apperror.CodeIdentityMismatch, apperror.CodeOf(err))
}

func TestOrchestrator_AmbiguousCapture(t *testing.T) {
	h := newOrchHarness(t)
	h.seed(domain.Transaction{TerminalID: "T1", Kind: domain.OperationPreAuth, RecordNo: "P5", Status: domain.StatusApproved})
	before := testutil.ToFloat64(metrics.AmbiguousTotal)

	h.client.EXPECT().Identify(gomock.Any(), gomock.Any()).Return(identityOf("reader-a"), nil)
	h.client.EXPECT().Transact(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, reader.ErrTransport)
	h.client.EXPECT().Reset(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	h.allow()

	_, err := h.o.CapturePreAuth(context.Background(), domain.PaymentRequest{TerminalID: "T1", RecordNo: "P5", Amount: dec("20.00")})
	assert.Equal(t, apperror.CodeAmbiguousState, apperror.CodeOf(err))

	rec := h.last()
	assert.True(t, rec.ReconciliationRequired)
	assert.Equal(t, apperror.CodeAmbiguousState, rec.ErrorCode)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.AmbiguousTotal))
}

func TestOrchestrator_IncrementFailureIsSilent(t *testing.T) {
	h := newOrchHarness(t)
	h.seed(domain.Transaction{TerminalID: "T1", Kind: domain.OperationPreAuth, RecordNo: "P6", Status: domain.StatusApproved})
	events, unsub := h.bus.Subscribe("T1")
	defer unsub()

	// Background operations skip the identity ping.
	h.client.EXPECT().Transact(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, reader.ErrTransport)
	h.client.EXPECT().Reset(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	h.allow()

	res, err := h.o.IncrementAuth(context.Background(), domain.PaymentRequest{TerminalID: "T1", RecordNo: "P6", Amount: dec("15.00")})
	require.NoError(t, err)
	assert.False(t, res.Approved)
	assert.Equal(t, "P6", res.RecordNo)

	assert.Empty(t, drain(events), "background operations publish no transitions")
	assert.Equal(t, domain.StatusError, h.last().Status)
	assert.Equal(t, domain.StatusIdle, h.o.Status("T1").Status)
}

func TestOrchestrator_CollectCardTransportFailureIsNotAmbiguous(t *testing.T) {
	h := newOrchHarness(t)
	h.client.EXPECT().Identify(gomock.Any(), gomock.Any()).Return(identityOf("reader-a"), nil)
	h.client.EXPECT().Transact(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, reader.ErrTransport)
	h.client.EXPECT().Reset(gomock.Any(), gomock.Any()).Return(nil)
	h.allow()

	_, err := h.o.CollectCardData(context.Background(), domain.PaymentRequest{TerminalID: "T1"})
	assert.Equal(t, apperror.CodeConnectivity, apperror.CodeOf(err))
	assert.False(t, h.last().ReconciliationRequired)
}

func TestOrchestrator_ShutdownCancelsInFlight(t *testing.T) {
	h := newOrchHarness(t)
	events, unsub := h.bus.Subscribe("T1")
	defer unsub()

	h.client.EXPECT().Identify(gomock.Any(), gomock.Any()).Return(identityOf("reader-a"), nil)
	h.client.EXPECT().Transact(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *domain.Reader, _ domain.ReaderCommand) (*domain.TransactionResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
	h.client.EXPECT().Reset(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	h.allow()

	done := make(chan error, 1)
	go func() {
		_, err := h.o.ProcessPayment(context.Background(), saleRequest("INV-S", "10.00"))
		done <- err
	}()
	waitForStatus(t, events, domain.StatusWaitingCard)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.o.Shutdown(ctx))

	assert.Equal(t, apperror.CodeCancelled, apperror.CodeOf(<-done))
	rec := h.last()
	assert.Equal(t, domain.StatusError, rec.Status)
	assert.False(t, rec.ReconciliationRequired)
}

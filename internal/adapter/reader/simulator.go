package reader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"payment-terminal-bridge/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Simulator amount triggers, on the cents part of the requested amount.
const (
	SimDeclineCents = 13 // e.g. 20.13 declines
	SimPartialCents = 37 // e.g. 40.37 approves half, rounded down to the cent
)

type simChain struct {
	kind       domain.OperationKind
	authorized decimal.Decimal
	voided     bool
	captured   bool
}

// Simulator is an in-process reader. It answers in the nested response shape
// of real firmware, tracks authorization chains and waits Delay for a card on
// card-present operations while honouring ctx.
type Simulator struct {
	Delay time.Duration

	mu      sync.Mutex
	seq     int
	chains  map[string]*simChain
	offline map[string]bool
}

// NewSimulator creates a simulator that waits delay for card-present operations.
func NewSimulator(delay time.Duration) *Simulator {
	return &Simulator{Delay: delay, chains: make(map[string]*simChain), offline: make(map[string]bool)}
}

// SetOnline makes a simulated reader reachable or not.
func (s *Simulator) SetOnline(readerID string, online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline[readerID] = !online
}

// Send implements Backend.
func (s *Simulator) Send(ctx context.Context, rd *domain.Reader, op string, payload map[string]any) (map[string]any, error) {
	s.mu.Lock()
	down := s.offline[rd.ID]
	s.mu.Unlock()
	if down {
		return nil, fmt.Errorf("%w: simulated reader %s unreachable", ErrTransport, rd.ID)
	}

	switch op {
	case opIdentify:
		serial := rd.SerialNumber
		if serial == "" {
			serial = "SIM-" + rd.ID
		}
		return map[string]any{"Device": map[string]any{"SerialNumber": serial, "Model": "Simulator", "Firmware": "1.0"}}, nil
	case opReset, opBeep:
		return map[string]any{"CmdStatus": "Success"}, nil
	}

	kind := domain.OperationKind(op)
	if kind == domain.OperationSale || kind == domain.OperationPreAuth || kind == domain.OperationCollectCard ||
		(kind == domain.OperationReturn && payload["cardPresent"] == true) {
		if err := s.waitForCard(ctx); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case domain.OperationSale, domain.OperationPreAuth:
		amount := amountField(payload, "amount").Add(amountField(payload, "tipAmount"))
		return s.authorize(kind, amount), nil
	case domain.OperationCapture, domain.OperationAdjust:
		chain, resp := s.chain(payload, domain.OperationPreAuth, domain.OperationSale)
		if chain == nil {
			return resp, nil
		}
		total := amountField(payload, "purchaseAmount").Add(amountField(payload, "gratuityAmount"))
		chain.authorized = total
		if kind == domain.OperationCapture {
			chain.captured = true
		}
		return s.approved(payload["recordNo"].(string), total), nil
	case domain.OperationIncrement:
		chain, resp := s.chain(payload, domain.OperationPreAuth)
		if chain == nil {
			return resp, nil
		}
		chain.authorized = chain.authorized.Add(amountField(payload, "additionalAmount"))
		return s.approved(payload["recordNo"].(string), chain.authorized), nil
	case domain.OperationVoid:
		chain, resp := s.chain(payload, domain.OperationPreAuth, domain.OperationSale)
		if chain == nil {
			return resp, nil
		}
		chain.voided = true
		return map[string]any{"CmdStatus": "Approved", "TextResponse": "VOIDED", "Transaction": map[string]any{"RecordNo": payload["recordNo"]}}, nil
	case domain.OperationReturn:
		s.seq++
		return map[string]any{
			"CmdStatus":    "Approved",
			"TextResponse": "RETURN APPROVED",
			"Transaction":  map[string]any{"RefNo": fmt.Sprintf("REF%06d", s.seq), "AcctNo": "XXXXXXXXXXXX4242", "CardType": "VISA"},
			"Amount":       map[string]any{"Authorize": amountField(payload, "amount").StringFixed(2)},
		}, nil
	case domain.OperationCollectCard:
		return map[string]any{
			"CmdStatus":    "Approved",
			"TextResponse": "CARD DATA COLLECTED",
			"Transaction":  map[string]any{"AcctNo": "XXXXXXXXXXXX4242", "CardType": "VISA", "EntryMethod": "CHIP"},
		}, nil
	}
	return nil, fmt.Errorf("%w: simulator does not support %q", ErrTransport, op)
}

func (s *Simulator) waitForCard(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// authorize must be called with s.mu held.
func (s *Simulator) authorize(kind domain.OperationKind, amount decimal.Decimal) map[string]any {
	cents := amount.Shift(2).IntPart() % 100
	if cents == SimDeclineCents {
		return map[string]any{"CmdStatus": "Declined", "TextResponse": "DECLINED - INSUFFICIENT FUNDS", "DSIXReturnCode": "100201"}
	}

	authorized := amount
	if cents == SimPartialCents {
		authorized = amount.Div(decimal.NewFromInt(2)).RoundDown(2)
	}

	s.seq++
	recordNo := fmt.Sprintf("SIM%06d", s.seq)
	s.chains[recordNo] = &simChain{kind: kind, authorized: authorized}
	return s.approved(recordNo, authorized)
}

func (s *Simulator) approved(recordNo string, authorized decimal.Decimal) map[string]any {
	s.seq++
	return map[string]any{
		"CmdStatus":      "Approved",
		"TextResponse":   "APPROVED",
		"DSIXReturnCode": "000000",
		"Transaction": map[string]any{
			"AuthCode":    fmt.Sprintf("A%05d", s.seq),
			"RefNo":       fmt.Sprintf("REF%06d", s.seq),
			"RecordNo":    recordNo,
			"AcctNo":      "XXXXXXXXXXXX4242",
			"CardType":    "VISA",
			"EntryMethod": "CHIP",
			"CVM":         "PIN",
		},
		"Amount": map[string]any{"Authorize": authorized.StringFixed(2)},
	}
}

// chain returns the open chain named by the payload, or a decline response.
func (s *Simulator) chain(payload map[string]any, kinds ...domain.OperationKind) (*simChain, map[string]any) {
	recordNo, _ := payload["recordNo"].(string)
	c, ok := s.chains[recordNo]
	if !ok || c.voided {
		return nil, map[string]any{"CmdStatus": "Declined", "TextResponse": "RECORD NOT FOUND"}
	}
	for _, k := range kinds {
		if c.kind == k {
			return c, nil
		}
	}
	return nil, map[string]any{"CmdStatus": "Declined", "TextResponse": "INVALID OPERATION FOR RECORD"}
}

func amountField(payload map[string]any, key string) decimal.Decimal {
	s, _ := payload[key].(string)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

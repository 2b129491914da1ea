package domain

import "github.com/shopspring/decimal"

// ReaderCommand is a canonical operation plus its wire payload.
type ReaderCommand struct {
	Kind    OperationKind
	Payload map[string]any
	// Requested is the amount the result's authorized amount is measured against.
	Requested decimal.Decimal
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// BuildCommand maps a request onto the canonical payload shape of kind.
// An increment's Requested is only the additional amount; see
// IncrementCommand for the chain-aware form.
func BuildCommand(kind OperationKind, req PaymentRequest) ReaderCommand {
	cmd := ReaderCommand{Kind: kind, Payload: map[string]any{}}
	switch kind {
	case OperationSale, OperationPreAuth:
		tranType := "Sale"
		if kind == OperationPreAuth {
			tranType = "PreAuth"
		}
		cmd.Payload["invoiceNo"] = req.InvoiceNo
		cmd.Payload["amount"] = money(req.Amount)
		cmd.Payload["tranType"] = tranType
		cmd.Payload["tipRequest"] = kind == OperationSale && req.TipAmount.IsZero()
		cmd.Payload["signatureRequest"] = true
		cmd.Payload["partialAuth"] = true
		if !req.TipAmount.IsZero() {
			cmd.Payload["tipAmount"] = money(req.TipAmount)
		}
		cmd.Requested = req.Amount.Add(req.TipAmount)
	case OperationCapture, OperationAdjust:
		cmd.Payload["recordNo"] = req.RecordNo
		cmd.Payload["purchaseAmount"] = money(req.Amount)
		if !req.GratuityAmount.IsZero() {
			cmd.Payload["gratuityAmount"] = money(req.GratuityAmount)
		}
		cmd.Requested = req.Amount.Add(req.GratuityAmount)
	case OperationIncrement:
		cmd.Payload["recordNo"] = req.RecordNo
		cmd.Payload["additionalAmount"] = money(req.Amount)
		cmd.Requested = req.Amount
	case OperationVoid:
		cmd.Payload["recordNo"] = req.RecordNo
		cmd.Requested = decimal.Zero
	case OperationReturn:
		if req.RecordNo != "" {
			cmd.Payload["recordNo"] = req.RecordNo
		}
		cmd.Payload["amount"] = money(req.Amount)
		cmd.Payload["cardPresent"] = req.CardPresent
		cmd.Requested = req.Amount
	case OperationCollectCard:
		cmd.Payload["amount"] = money(decimal.Zero)
		cmd.Payload["tranType"] = "CollectCardData"
		cmd.Requested = decimal.Zero
	}
	return cmd
}

// IncrementCommand builds an incremental authorization on chain. The reader
// reports the new running total, so Requested is the held amount plus the
// increment.
func IncrementCommand(req PaymentRequest, chain []Transaction) ReaderCommand {
	cmd := BuildCommand(OperationIncrement, req)
	cmd.Requested = AuthorizedTotal(chain).Add(req.Amount)
	return cmd
}

// CardPresent reports whether the command waits on a customer at the reader.
func (c ReaderCommand) CardPresent() bool {
	switch c.Kind {
	case OperationSale, OperationPreAuth, OperationCollectCard:
		return true
	case OperationReturn:
		present, _ := c.Payload["cardPresent"].(bool)
		return present
	}
	return false
}

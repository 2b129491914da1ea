package domain

import "github.com/shopspring/decimal"

// BuildResultKey constructs the replay key for an invoice-scoped operation.
// Format: "terminal_id:kind:invoice_no:requested"
func BuildResultKey(terminalID string, kind OperationKind, invoiceNo string, requested decimal.Decimal) string {
	return terminalID + ":" + string(kind) + ":" + invoiceNo + ":" + money(requested)
}

// BuildChainResultKey constructs the replay key for an operation that closes
// an authorization chain (capture, void).
func BuildChainResultKey(kind OperationKind, recordNo string) string {
	return "chain:" + string(kind) + ":" + recordNo
}

// ResultKeyFor returns the replay key for req, or "" when the operation is
// not replayable (adjust and increment may legitimately repeat). Invoice
// keys carry the requested amount: a split tender charges one invoice on
// several cards and each tender replays on its own.
func ResultKeyFor(kind OperationKind, req PaymentRequest) string {
	switch kind {
	case OperationSale, OperationPreAuth, OperationReturn:
		if req.InvoiceNo == "" {
			return ""
		}
		return BuildResultKey(req.TerminalID, kind, req.InvoiceNo, BuildCommand(kind, req).Requested)
	case OperationCapture, OperationVoid:
		if req.RecordNo == "" {
			return ""
		}
		return BuildChainResultKey(kind, req.RecordNo)
	}
	return ""
}

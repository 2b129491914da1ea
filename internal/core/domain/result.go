package domain

import "github.com/shopspring/decimal"

// partialTolerance absorbs rounding noise between requested and authorized
// amounts reported by different firmware versions.
var partialTolerance = decimal.New(1, -2)

// TransactionResult is the canonical, backend-independent outcome of a reader
// operation.
type TransactionResult struct {
	Approved          bool            `json:"approved"`
	AuthCode          string          `json:"auth_code,omitempty"`
	RefNumber         string          `json:"ref_number,omitempty"`
	RecordNo          string          `json:"record_no,omitempty"`
	CardBrand         string          `json:"card_brand,omitempty"`
	CardLast4         string          `json:"card_last4,omitempty"`
	EntryMethod       string          `json:"entry_method,omitempty"`
	CVM               string          `json:"cvm,omitempty"`
	SignatureData     string          `json:"signature_data,omitempty"`
	ResponseCode      string          `json:"response_code,omitempty"`
	ResponseMessage   string          `json:"response_message,omitempty"`
	AmountRequested   decimal.Decimal `json:"amount_requested"`
	AmountAuthorized  decimal.Decimal `json:"amount_authorized"`
	IsPartialApproval bool            `json:"is_partial_approval"`
	Error             string          `json:"error,omitempty"`

	// AuthorizedReported is set by the normalizer when the reader response
	// carried an explicit authorized-amount field.
	AuthorizedReported bool `json:"-"`
}

// IsPartialApproval reports whether authorized is a reduced, non-zero
// approval of requested.
func IsPartialApproval(requested, authorized decimal.Decimal) bool {
	return authorized.IsPositive() && requested.Sub(authorized).GreaterThan(partialTolerance)
}

// Finalize fills the amount fields for a result of a request for requested.
// A missing authorized amount is taken to equal the requested amount only
// when the reader approved the operation.
func (r *TransactionResult) Finalize(requested decimal.Decimal) {
	r.AmountRequested = requested
	if !r.AuthorizedReported {
		if r.Approved {
			r.AmountAuthorized = requested
		} else {
			r.AmountAuthorized = decimal.Zero
		}
	}
	if r.Approved && r.AmountAuthorized.GreaterThan(requested) {
		r.AmountAuthorized = requested
	}
	r.IsPartialApproval = r.Approved && IsPartialApproval(requested, r.AmountAuthorized)
	if !r.Approved && r.Error == "" {
		r.Error = r.ResponseMessage
		if r.Error == "" {
			r.Error = "Declined"
		}
	}
}

// Status maps the result onto the terminal state it produces.
func (r *TransactionResult) Status() TransactionStatus {
	if r.Approved {
		return StatusApproved
	}
	return StatusDeclined
}

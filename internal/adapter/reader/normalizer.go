package reader

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"payment-terminal-bridge/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Field name variants seen across reader firmware, lowercased. The first
// present key wins.
var (
	approvedKeys   = []string{"approved", "cmdstatus", "status", "resultcode", "dsixreturncode"}
	authCodeKeys   = []string{"authcode", "authorizationcode"}
	refNumberKeys  = []string{"refno", "refnumber", "referencenumber"}
	recordNoKeys   = []string{"recordno", "token"}
	cardBrandKeys  = []string{"cardtype", "cardbrand"}
	last4Keys      = []string{"acctno", "last4", "maskedpan"}
	entryKeys      = []string{"entrymethod", "entrymode"}
	cvmKeys        = []string{"cvm", "cardholderverification"}
	authorizedKeys = []string{"authorize", "amountauthorized", "approvedamount"}
	messageKeys    = []string{"textresponse", "responsemessage", "message"}
	respCodeKeys   = []string{"responsecode", "returncode", "dsixreturncode"}
	signatureKeys  = []string{"signaturedata", "signature"}
	serialKeys     = []string{"serialnumber", "serial", "deviceserial", "sn"}
	modelKeys      = []string{"model", "devicemodel"}
	firmwareKeys   = []string{"firmware", "firmwareversion", "version"}
)

// Flag keys carry a yes/no answer; code keys carry a processor return code
// where zero means success.
var (
	flagKeys = map[string]bool{"approved": true, "cmdstatus": true, "status": true}
	codeKeys = map[string]bool{"resultcode": true, "dsixreturncode": true}
)

var approvedWords = map[string]bool{
	"true": true, "yes": true, "y": true, "1": true,
	"approved": true, "approval": true, "success": true, "captured": true, "accepted": true,
}

var successCodes = map[string]bool{"0": true, "00": true, "000": true, "000000": true}

// Normalize maps a raw reader response of any supported shape onto a
// TransactionResult. Amount fields are left for Finalize.
func Normalize(raw map[string]any) *domain.TransactionResult {
	f := flatten(raw)
	r := &domain.TransactionResult{
		Approved:        f.approved(),
		AuthCode:        f.str(authCodeKeys...),
		RefNumber:       f.str(refNumberKeys...),
		RecordNo:        f.str(recordNoKeys...),
		CardBrand:       f.str(cardBrandKeys...),
		CardLast4:       lastFour(f.str(last4Keys...)),
		EntryMethod:     f.str(entryKeys...),
		CVM:             f.str(cvmKeys...),
		SignatureData:   f.str(signatureKeys...),
		ResponseCode:    f.str(respCodeKeys...),
		ResponseMessage: f.str(messageKeys...),
	}
	if amt, ok := f.decimal(authorizedKeys...); ok {
		r.AmountAuthorized = amt
		r.AuthorizedReported = true
	}
	return r
}

// NormalizeIdentity extracts the device identity from an identify response.
func NormalizeIdentity(raw map[string]any) *domain.ReaderIdentity {
	f := flatten(raw)
	return &domain.ReaderIdentity{
		SerialNumber: f.str(serialKeys...),
		Model:        f.str(modelKeys...),
		Firmware:     f.str(firmwareKeys...),
	}
}

type fields map[string]any

// flatten lowercases keys and lifts nested objects breadth first, so a
// top-level field shadows a nested one with the same name. Keys are visited
// in sorted order; between siblings the object under the smaller key wins.
func flatten(raw map[string]any) fields {
	out := fields{}
	queue := []map[string]any{raw}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var nested []map[string]any
		for _, k := range keys {
			v := m[k]
			if child, ok := v.(map[string]any); ok {
				nested = append(nested, child)
				continue
			}
			key := strings.ToLower(k)
			if _, seen := out[key]; !seen {
				out[key] = v
			}
		}
		queue = append(queue, nested...)
	}
	return out
}

func (f fields) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := f[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (f fields) str(keys ...string) string {
	v, ok := f.lookup(keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return decimal.NewFromFloat(t).String()
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func (f fields) approved() bool {
	for _, k := range approvedKeys {
		v, ok := f[k]
		if !ok || v == nil {
			continue
		}
		if codeKeys[k] {
			return isSuccessCode(v)
		}
		if flagKeys[k] {
			return isApprovedFlag(v)
		}
	}
	return false
}

func isApprovedFlag(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t == 1
	case json.Number:
		n, err := t.Int64()
		return err == nil && n == 1
	case string:
		return approvedWords[strings.ToLower(strings.TrimSpace(t))]
	}
	return false
}

func isSuccessCode(v any) bool {
	switch t := v.(type) {
	case float64:
		return t == 0
	case json.Number:
		n, err := t.Int64()
		return err == nil && n == 0
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return successCodes[s] || s == "approved" || s == "success"
	}
	return false
}

func (f fields) decimal(keys ...string) (decimal.Decimal, bool) {
	v, ok := f.lookup(keys...)
	if !ok {
		return decimal.Zero, false
	}
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t).Round(2), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d.Round(2), err == nil
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "$"))
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d.Round(2), err == nil
	case decimal.Decimal:
		return t, true
	}
	return decimal.Zero, false
}

// lastFour keeps the trailing four digits of a masked account number.
func lastFour(s string) string {
	var digits []rune
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 4 {
		return string(digits)
	}
	return string(digits[len(digits)-4:])
}

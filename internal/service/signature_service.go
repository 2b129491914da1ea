package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"payment-terminal-bridge/pkg/apperror"
)

// HMACSignatureService signs webhook deliveries with HMAC-SHA256.
type HMACSignatureService struct{}

func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign returns the lowercase hex HMAC-SHA256 of payload.
func (s *HMACSignatureService) Sign(secretKey string, payload string) string {
	return hex.EncodeToString(mac(secretKey, payload))
}

// Verify compares in constant time. A signature that is not valid hex fails.
func (s *HMACSignatureService) Verify(secretKey string, payload string, signature string) bool {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(mac(secretKey, payload), got)
}

// SignedContent is what a delivery signature covers: "TIMESTAMP.BODY".
func SignedContent(timestamp int64, body []byte) string {
	return strconv.FormatInt(timestamp, 10) + "." + string(body)
}

// VerifyDelivery is the receiving side of a webhook: it checks the
// timestamp and signature headers against body. Deliveries stamped further
// than tolerance from now are rejected so a captured request cannot be
// replayed later. A zero tolerance skips the age check.
func (s *HMACSignatureService) VerifyDelivery(secretKey string, h http.Header, body []byte, now time.Time, tolerance time.Duration) error {
	ts, err := strconv.ParseInt(h.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return apperror.ErrInvalidSignature()
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > tolerance || age < -tolerance {
			return apperror.ErrInvalidSignature()
		}
	}
	if !s.Verify(secretKey, SignedContent(ts, body), h.Get(HeaderSignature)) {
		return apperror.ErrInvalidSignature()
	}
	return nil
}

func mac(secretKey, payload string) []byte {
	m := hmac.New(sha256.New, []byte(secretKey))
	m.Write([]byte(payload))
	return m.Sum(nil)
}

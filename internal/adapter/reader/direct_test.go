package reader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDirectBackend_Sale(t *testing.T) {
	ctrl := gomock.NewController(t)
	encSvc := mocks.NewMockEncryptionService(ctrl)
	encSvc.EXPECT().Decrypt("enc-creds").Return("bridge:s3cret", nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/sale", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "bridge", user)
		assert.Equal(t, "s3cret", pass)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "42.50", body["amount"])
		assert.Equal(t, "Sale", body["tranType"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"CmdStatus":"Approved","TranResponse":{"RecordNo":"R1","Amount":{"Authorize":42.50}}}`))
	}))
	defer srv.Close()

	g := NewGateway(zerolog.Nop())
	g.Register(domain.BackendDirect, NewDirectBackend(srv.Client(), encSvc))
	c, err := g.Client(domain.BackendDirect)
	require.NoError(t, err)

	rd := &domain.Reader{ID: "reader-a", Address: strings.TrimPrefix(srv.URL, "http://"), CredentialsEnc: "enc-creds"}
	res, err := c.Transact(context.Background(), rd, domain.BuildCommand(domain.OperationSale,
		domain.PaymentRequest{InvoiceNo: "INV-1", Amount: dec("42.50")}))
	require.NoError(t, err)
	assert.True(t, res.Approved)
	assert.Equal(t, "R1", res.RecordNo)
	assert.True(t, res.AmountAuthorized.Equal(dec("42.50")))
}

func TestDirectBackend_Non2xxIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	b := NewDirectBackend(srv.Client(), nil)
	rd := &domain.Reader{ID: "reader-a", Address: strings.TrimPrefix(srv.URL, "http://")}

	_, err := b.Send(context.Background(), rd, "identify", nil)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestDirectBackend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	b := NewDirectBackend(http.DefaultClient, nil)
	_, err := b.Send(context.Background(), &domain.Reader{ID: "reader-a", Address: addr}, "identify", nil)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestDirectBackend_NoAddress(t *testing.T) {
	b := NewDirectBackend(http.DefaultClient, nil)
	_, err := b.Send(context.Background(), &domain.Reader{ID: "reader-a"}, "identify", nil)
	assert.ErrorIs(t, err, ErrTransport)
}

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"slotbook/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	sig := Sign("secret", "order_1", "pay_1")
	assert.Len(t, sig, 64)
	assert.True(t, Verify("secret", "order_1", "pay_1", sig))
	assert.False(t, Verify("secret", "order_1", "pay_2", sig))
	assert.False(t, Verify("other", "order_1", "pay_1", sig))
	assert.False(t, Verify("secret", "order_1", "pay_1", ""))
	assert.False(t, Verify("", "order_1", "pay_1", sig))
}

func TestRazorpayCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test", user)
		assert.Equal(t, "s3cret", pass)

		var req orderRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(58900), req.Amount)
		assert.Equal(t, "INR", req.Currency)

		_ = json.NewEncoder(w).Encode(orderResponse{ID: "order_abc", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"})
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	gw := NewRazorpay(config.GatewayConfig{BaseURL: srv.URL + "/", KeyID: "rzp_test", KeySecret: "s3cret"}, &logger)

	order, err := gw.CreateOrder(context.Background(), 58900, "INR", "rcpt_1")
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(58900), order.Amount)
	assert.Equal(t, "rcpt_1", order.Receipt)
	assert.Equal(t, "rzp_test", gw.KeyID())

	assert.True(t, gw.VerifySignature("order_abc", "pay_1", Sign("s3cret", "order_abc", "pay_1")))
}

func TestRazorpayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	gw := NewRazorpay(config.GatewayConfig{BaseURL: srv.URL}, &logger)

	_, err := gw.CreateOrder(context.Background(), 1, "INR", "r")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGateway)
	assert.Contains(t, err.Error(), "amount too small")
}

func TestFakeGateway(t *testing.T) {
	f := NewFake("", "")
	assert.Equal(t, FakeKeyID, f.KeyID())

	order, err := f.CreateOrder(context.Background(), 58900, "INR", "r")
	require.NoError(t, err)
	assert.Contains(t, order.ID, "order_")

	assert.True(t, f.VerifySignature(order.ID, "pay_1", Sign(FakeSecret, order.ID, "pay_1")))
	assert.False(t, f.VerifySignature(order.ID, "pay_1", "forged"))

	_, err = f.CreateOrder(context.Background(), 0, "INR", "r")
	assert.ErrorIs(t, err, ErrGateway)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.CreateOrder(ctx, 100, "INR", "r")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	logger := zerolog.Nop()

	gw, err := New(config.GatewayConfig{Mode: "fake"}, &logger)
	require.NoError(t, err)
	assert.IsType(t, &Fake{}, gw)

	gw, err = New(config.GatewayConfig{Mode: "razorpay", KeyID: "k"}, &logger)
	require.NoError(t, err)
	assert.IsType(t, &Razorpay{}, gw)

	_, err = New(config.GatewayConfig{Mode: "stripe"}, &logger)
	assert.Error(t, err)
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingWireNames(t *testing.T) {
	b := Booking{ID: "1", Token: "AB12CD34", Phone: "9876543210", PackagePrice: "499", PaymentMode: PaymentModeCash}

	raw, err := json.Marshal(b)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "9876543210", fields["number"])
	assert.Equal(t, "499", fields["package"])
	assert.Equal(t, "cash", fields["paymentMode"])
	assert.Equal(t, false, fields["isPaid"])
	assert.NotContains(t, fields, "gatewayPaymentId")
}

func TestBookingIsConfirmed(t *testing.T) {
	assert.False(t, (&Booking{}).IsConfirmed())
	assert.True(t, (&Booking{Token: "X"}).IsConfirmed())
}

func TestVerifyRequestGatewayFieldNames(t *testing.T) {
	raw, err := json.Marshal(VerifyRequest{GatewayOrderID: "order_1", GatewayPaymentID: "pay_1", GatewaySignature: "sig"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"razorpay_order_id":"order_1"`)
	assert.Contains(t, string(raw), `"razorpay_payment_id":"pay_1"`)
	assert.Contains(t, string(raw), `"razorpay_signature":"sig"`)
}

package models

import "time"

// Order is a gateway-side charge intent created per online payment attempt.
type Order struct {
	OrderID      string    `json:"orderId"`
	Amount       int64     `json:"amount"` // minor units
	Currency     string    `json:"currency"`
	BaseAmount   int64     `json:"baseAmount"`
	GSTAmount    int64     `json:"gstAmount"`
	TotalAmount  int64     `json:"totalAmount"`
	KeyID        string    `json:"key,omitempty"`
	Status       string    `json:"-"`
	Name         string    `json:"-"`
	Phone        string    `json:"-"`
	Address      string    `json:"-"`
	PackagePrice string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// OrderRequest carries the customer fields needed to open an order.
type OrderRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"number"`
	Address      string `json:"address"`
	PackagePrice string `json:"package"`
}

// VerifyRequest carries the gateway callback fields plus the original booking fields.
type VerifyRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	GatewaySignature string `json:"razorpay_signature"`
	Name             string `json:"name"`
	Phone            string `json:"number"`
	Address          string `json:"address"`
	PackagePrice     string `json:"package"`
}

// VerifyResult is the backend answer to a payment verification.
type VerifyResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Token   string   `json:"token"`
	Booking *Booking `json:"booking,omitempty"`
}

// PriceBreakdown is the GST split for a base amount.
type PriceBreakdown struct {
	BaseAmount  int64 `json:"baseAmount"`
	GSTAmount   int64 `json:"gstAmount"`
	TotalAmount int64 `json:"totalAmount"`
	GSTRate     int64 `json:"gstRate"`
}

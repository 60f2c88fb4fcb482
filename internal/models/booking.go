package models

import "time"

// Booking is the durable record of a confirmed reservation.
type Booking struct {
	ID               string    `json:"id"`
	Token            string    `json:"token"`
	Name             string    `json:"name"`
	Phone            string    `json:"number"`
	Address          string    `json:"address"`
	PackagePrice     string    `json:"package"`
	PaymentMode      string    `json:"paymentMode"` // cash, online
	IsPaid           bool      `json:"isPaid"`
	ScreenshotURL    string    `json:"screenshotUrl,omitempty"`
	GatewayOrderID   string    `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string    `json:"gatewayPaymentId,omitempty"`
	GSTAmount        int64     `json:"gstAmount,omitempty"`
	TotalAmountPaid  int64     `json:"totalAmountPaid,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// IsConfirmed reports whether the booking carries its confirmation token.
func (b *Booking) IsConfirmed() bool {
	return b.Token != ""
}

// CashBookingRequest is the payload of a cash reservation.
type CashBookingRequest struct {
	Name         string
	Phone        string
	Address      string
	PackagePrice string
	Screenshot   *Upload
}

// Upload is a file attached to a multipart request.
type Upload struct {
	FileName string
	Data     []byte
}

// BookingsDeleted is returned by bulk delete operations.
type BookingsDeleted struct {
	DeletedCount int64 `json:"deletedCount"`
}

package client

import (
	"context"
	"net/http"
	"net/url"

	"slotbook/internal/models"
)

// CreateOrder opens a gateway order. The returned amount is authoritative.
func (c *Client) CreateOrder(ctx context.Context, in models.OrderRequest, idempotencyKey string) (*models.Order, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers[models.IdempotencyHeader] = idempotencyKey
	}
	var order models.Order
	if err := c.doJSON(ctx, http.MethodPost, "/payments/create-order", "", headers, in, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// VerifyPayment asks the backend to check the gateway signature and persist the booking.
// It is never retried.
func (c *Client) VerifyPayment(ctx context.Context, in models.VerifyRequest) (*models.VerifyResult, error) {
	var res models.VerifyResult
	if err := c.doJSON(ctx, http.MethodPost, "/payments/verify", "", nil, in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) PriceBreakdown(ctx context.Context, amount string) (*models.PriceBreakdown, error) {
	var bd models.PriceBreakdown
	if err := c.doGet(ctx, "/payments/price-breakdown/"+url.PathEscape(amount), "", &bd); err != nil {
		return nil, err
	}
	return &bd, nil
}

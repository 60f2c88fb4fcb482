package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"slotbook/internal/models"
)

// CreateCashBooking submits a cash reservation as multipart form data.
func (c *Client) CreateCashBooking(ctx context.Context, in models.CashBookingRequest, idempotencyKey string) (*models.Booking, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"name", in.Name},
		{"number", in.Phone},
		{"address", in.Address},
		{"package", in.PackagePrice},
		{"paymentMode", models.PaymentModeCash},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", f[0], err)
		}
	}
	if in.Screenshot != nil && len(in.Screenshot.Data) > 0 {
		fw, err := mw.CreateFormFile("screenshot", in.Screenshot.FileName)
		if err != nil {
			return nil, fmt.Errorf("failed to attach screenshot: %w", err)
		}
		if _, err := fw.Write(in.Screenshot.Data); err != nil {
			return nil, fmt.Errorf("failed to attach screenshot: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/bookings", "", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if idempotencyKey != "" {
		req.Header.Set(models.IdempotencyHeader, idempotencyKey)
	}

	var booking models.Booking
	if err := c.do(req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListBookings returns all bookings, newest first.
func (c *Client) ListBookings(ctx context.Context, token string) ([]models.Booking, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	var bookings []models.Booking
	if err := c.doGet(ctx, "/bookings", token, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// TogglePaid flips the paid flag of a cash booking and returns the updated record.
func (c *Client) TogglePaid(ctx context.Context, token, id string) (*models.Booking, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	var booking models.Booking
	path := "/bookings/" + url.PathEscape(id) + "/toggle-paid"
	if err := c.doJSON(ctx, http.MethodPatch, path, token, nil, nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) DeleteBooking(ctx context.Context, token, id string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, "/bookings/"+url.PathEscape(id), token, nil, nil, nil)
}

// DeleteAllBookings removes every booking and returns the count removed.
func (c *Client) DeleteAllBookings(ctx context.Context, token string) (int64, error) {
	if err := requireToken(token); err != nil {
		return 0, err
	}
	var res models.BookingsDeleted
	if err := c.doJSON(ctx, http.MethodDelete, "/bookings/all", token, nil, nil, &res); err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteBookingsByPackage removes bookings whose package price equals price.
func (c *Client) DeleteBookingsByPackage(ctx context.Context, token, price string) (int64, error) {
	if err := requireToken(token); err != nil {
		return 0, err
	}
	var res models.BookingsDeleted
	path := "/bookings/by-package/" + url.PathEscape(price)
	if err := c.doJSON(ctx, http.MethodDelete, path, token, nil, nil, &res); err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

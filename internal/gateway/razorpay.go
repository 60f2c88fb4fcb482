package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"slotbook/internal/config"
	"slotbook/internal/domain"

	"github.com/rs/zerolog"
)

var ErrGateway = errors.New("payment gateway error")

type Razorpay struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	logger     *zerolog.Logger
}

func NewRazorpay(cfg config.GatewayConfig, logger *zerolog.Logger) *Razorpay {
	l := logger.With().Str("component", "razorpay").Logger()
	return &Razorpay{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     &l,
	}
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder opens an order for amount minor units.
func (r *Razorpay) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*domain.GatewayOrder, error) {
	body, err := json.Marshal(orderRequest{Amount: amount, Currency: currency, Receipt: receipt})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.SetBasicAuth(r.keyID, r.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		r.logger.Warn().
			Int("status", resp.StatusCode).
			Str("code", e.Error.Code).
			Str("description", e.Error.Description).
			Msg("Gateway rejected order")
		return nil, fmt.Errorf("%w: status %d: %s", ErrGateway, resp.StatusCode, e.Error.Description)
	}

	var out orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("%w: order response without id", ErrGateway)
	}

	return &domain.GatewayOrder{ID: out.ID, Amount: out.Amount, Currency: out.Currency, Receipt: out.Receipt}, nil
}

func (r *Razorpay) VerifySignature(orderID, paymentID, signature string) bool {
	return Verify(r.keySecret, orderID, paymentID, signature)
}

func (r *Razorpay) KeyID() string {
	return r.keyID
}

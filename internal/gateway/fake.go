package gateway

import (
	"context"
	"fmt"
	"strings"

	"slotbook/internal/config"
	"slotbook/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	FakeKeyID  = "rzp_test_fake"
	FakeSecret = "fake_secret"
)

// Fake issues local order ids and verifies signatures made with Sign and its secret.
type Fake struct {
	keyID  string
	secret string
}

func NewFake(keyID, secret string) *Fake {
	if keyID == "" {
		keyID = FakeKeyID
	}
	if secret == "" {
		secret = FakeSecret
	}
	return &Fake{keyID: keyID, secret: secret}
}

func (f *Fake) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*domain.GatewayOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrGateway)
	}
	id := "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
	return &domain.GatewayOrder{ID: id, Amount: amount, Currency: currency, Receipt: receipt}, nil
}

func (f *Fake) VerifySignature(orderID, paymentID, signature string) bool {
	return Verify(f.secret, orderID, paymentID, signature)
}

func (f *Fake) KeyID() string {
	return f.keyID
}

// Secret is exposed so local tools can sign fake callbacks.
func (f *Fake) Secret() string {
	return f.secret
}

// New picks the gateway implementation named by cfg.Mode.
func New(cfg config.GatewayConfig, logger *zerolog.Logger) (domain.PaymentGateway, error) {
	switch cfg.Mode {
	case "razorpay":
		return NewRazorpay(cfg, logger), nil
	case "fake", "":
		logger.Warn().Msg("Using fake payment gateway")
		return NewFake(cfg.KeyID, cfg.KeySecret), nil
	default:
		return nil, fmt.Errorf("unsupported gateway mode %q", cfg.Mode)
	}
}

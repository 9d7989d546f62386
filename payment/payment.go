package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Gateway charges an order and returns the provider's payment reference.
type Gateway interface {
	Name() string
	Charge(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) (string, error)
}

// PayPalGateway logs the charge it would submit to PayPal.
type PayPalGateway struct {
	log *zap.Logger
}

func NewPayPalGateway(log *zap.Logger) *PayPalGateway {
	return &PayPalGateway{log: log.Named("paypal")}
}

func (g *PayPalGateway) Name() string { return "paypal" }

func (g *PayPalGateway) Charge(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) (string, error) {
	return charge(g.log, g.Name(), orderID, amount)
}

// SSLCommerzGateway logs the charge it would submit to SSLCommerz.
type SSLCommerzGateway struct {
	log *zap.Logger
}

func NewSSLCommerzGateway(log *zap.Logger) *SSLCommerzGateway {
	return &SSLCommerzGateway{log: log.Named("sslcommerz")}
}

func (g *SSLCommerzGateway) Name() string { return "sslcommerz" }

func (g *SSLCommerzGateway) Charge(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) (string, error) {
	return charge(g.log, g.Name(), orderID, amount)
}

func charge(log *zap.Logger, name string, orderID uuid.UUID, amount decimal.Decimal) (string, error) {
	if !amount.IsPositive() {
		return "", fmt.Errorf("%s: amount must be positive, got %s", name, amount.StringFixed(2))
	}
	reference := strings.ToUpper(name) + "-" + uuid.NewString()
	log.Info("Charging order",
		zap.String("order_id", orderID.String()),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("reference", reference),
	)
	return reference, nil
}

// NewGateway picks the gateway by name. An empty name falls back to
// SSLCommerz.
func NewGateway(name string, log *zap.Logger) (Gateway, error) {
	switch name {
	case "sslcommerz", "":
		return NewSSLCommerzGateway(log), nil
	case "paypal":
		return NewPayPalGateway(log), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway %q", name)
	}
}

package payment_test

import (
	"context"
	"strings"
	"testing"

	"storefront/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewGatewayRoutesByName(t *testing.T) {
	for _, tc := range []struct {
		name    string
		gateway string
		prefix  string
	}{
		{"sslcommerz", "sslcommerz", "SSLCOMMERZ-"},
		{"", "sslcommerz", "SSLCOMMERZ-"},
		{"paypal", "paypal", "PAYPAL-"},
	} {
		core, logs := observer.New(zap.InfoLevel)
		g, err := payment.NewGateway(tc.name, zap.New(core))
		require.NoError(t, err)
		assert.Equal(t, tc.gateway, g.Name())

		orderID := uuid.New()
		ref, err := g.Charge(context.Background(), orderID, decimal.RequireFromString("12.50"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(ref, tc.prefix), ref)

		entries := logs.FilterMessage("Charging order").All()
		require.Len(t, entries, 1)
		assert.Equal(t, tc.gateway, entries[0].LoggerName)
		assert.Equal(t, orderID.String(), entries[0].ContextMap()["order_id"])
		assert.Equal(t, "12.50", entries[0].ContextMap()["amount"])
		assert.Equal(t, ref, entries[0].ContextMap()["reference"])
	}
}

func TestNewGatewayRejectsUnknownName(t *testing.T) {
	_, err := payment.NewGateway("barter", zap.NewNop())
	assert.ErrorContains(t, err, "barter")
}

func TestChargeRejectsNonPositiveAmount(t *testing.T) {
	g := payment.NewPayPalGateway(zap.NewNop())

	_, err := g.Charge(context.Background(), uuid.New(), decimal.Zero)
	assert.ErrorContains(t, err, "positive")

	_, err = g.Charge(context.Background(), uuid.New(), decimal.RequireFromString("-1"))
	assert.Error(t, err)
}

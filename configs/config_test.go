package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SESSION_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Hour, cfg.InvoiceTTL)
	assert.Equal(t, "USD", cfg.Currency)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("PAYMENT_GATEWAY_URL", "https://gateway.test")
	t.Setenv("PAYMENT_GATEWAY_KEY", "key")
	t.Setenv("PAYMENT_GATEWAY_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.PaymentGatewayConfigured())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("INVOICE_TTL", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestPaymentGatewayConfiguredNeedsAllFields(t *testing.T) {
	cfg := &Config{PaymentGatewayURL: "https://gateway.test", PaymentGatewayKey: "key"}
	assert.False(t, cfg.PaymentGatewayConfigured())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "storefront", cfg.MongoDBName)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, float64(1000), cfg.FreeShippingThreshold)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("FREE_SHIPPING_THRESHOLD", "150")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, float64(150), cfg.FreeShippingThreshold)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

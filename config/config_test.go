package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	LoadConfig()

	assert.Equal(t, "8080", AppConfig.AppPort)
	assert.Equal(t, "Asia/Kolkata", AppConfig.Timezone)
	assert.Equal(t, 4.0, AppConfig.InvoiceFee)
	assert.Equal(t, 60*time.Second, AppConfig.SlotReevaluationInterval)
	assert.Equal(t, 5*time.Second, AppConfig.CatalogFetchTimeout)
	assert.Equal(t, 168*time.Hour, AppConfig.SelectionTTL)
	assert.Equal(t, 30*time.Minute, AppConfig.SessionIdleTimeout)
	assert.False(t, IsProduction())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("INVOICE_FEE", "6.5")
	t.Setenv("SLOT_REEVALUATION_INTERVAL", "15s")
	t.Setenv("TIMEZONE", "UTC")

	LoadConfig()

	assert.True(t, IsProduction())
	assert.Equal(t, 6.5, AppConfig.InvoiceFee)
	assert.Equal(t, 15*time.Second, AppConfig.SlotReevaluationInterval)
	assert.Equal(t, time.UTC, Location())
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	AppConfig.Timezone = "Mars/Olympus_Mons"
	t.Cleanup(func() { AppConfig.Timezone = "" })

	assert.Equal(t, time.UTC, Location())
}

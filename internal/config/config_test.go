package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_IdempotencyDefaults(t *testing.T) {
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "")
	t.Setenv("IDEMPOTENCY_LOCK_SECONDS", "")

	cfg := FromEnv()
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 2*time.Minute, cfg.IdempotencyLockTTL)
}

func TestFromEnv_IdempotencyLockOverride(t *testing.T) {
	t.Setenv("IDEMPOTENCY_LOCK_SECONDS", "300")

	assert.Equal(t, 5*time.Minute, FromEnv().IdempotencyLockTTL)
}

func TestSaleLocation_FallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, Config{SaleTimezone: "Not/AZone"}.SaleLocation())
}

package ops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trading-watchlist-backend/internal/models"
)

func TestDeriveDedupKey(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 2, 30, 0, time.UTC)
	payload := models.OperationPayload{Symbol: "ACME", DeltaCashCents: 500, MaxAllowedCashCents: 10000}

	t.Run("identical submissions in one bucket share a key", func(t *testing.T) {
		k1 := DeriveDedupKey(models.KindAdjustManagedCash, "primary", payload, base)
		k2 := DeriveDedupKey(models.KindAdjustManagedCash, "primary", payload, base.Add(time.Minute))
		assert.Equal(t, k1, k2)
	})

	t.Run("bucket boundary separates keys", func(t *testing.T) {
		k1 := DeriveDedupKey(models.KindAdjustManagedCash, "primary", payload, base)
		k2 := DeriveDedupKey(models.KindAdjustManagedCash, "primary", payload, base.Add(DedupBucket))
		assert.NotEqual(t, k1, k2)
	})

	t.Run("kind is part of the key", func(t *testing.T) {
		k1 := DeriveDedupKey(models.KindAdjustManagedCash, "primary", payload, base)
		k2 := DeriveDedupKey(models.KindAdjustManagedShares, "primary", payload, base)
		assert.NotEqual(t, k1, k2)
	})

	t.Run("account is part of the key", func(t *testing.T) {
		k1 := DeriveDedupKey(models.KindAdjustManagedCash, "primary", payload, base)
		k2 := DeriveDedupKey(models.KindAdjustManagedCash, "secondary", payload, base)
		assert.NotEqual(t, k1, k2)
	})

	t.Run("payload is part of the key", func(t *testing.T) {
		other := payload
		other.DeltaCashCents = 501
		k1 := DeriveDedupKey(models.KindAdjustManagedCash, "primary", payload, base)
		k2 := DeriveDedupKey(models.KindAdjustManagedCash, "primary", other, base)
		assert.NotEqual(t, k1, k2)
	})

	t.Run("key is fixed length", func(t *testing.T) {
		k := DeriveDedupKey(models.KindAddStock, "primary", payload, base)
		assert.Len(t, k, 32)
	})
}

func TestNewsHash(t *testing.T) {
	h1 := NewsHash("ACME", "ACME beats estimates", "2026-08-01T10:00:00Z")
	h2 := NewsHash("ACME", "ACME beats estimates", "2026-08-01T10:00:00Z")
	h3 := NewsHash("ACME", "ACME misses estimates", "2026-08-01T10:00:00Z")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 32)
}

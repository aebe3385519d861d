package plot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-watchlist-backend/internal/models"
)

func TestRenderNetworth(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]models.NetworthSample, 4)
	for i := range samples {
		samples[i] = models.NetworthSample{
			AccountID:     "primary",
			Timestamp:     base.Add(time.Duration(i) * 15 * time.Minute),
			NetWorthCents: int64(100000 + i*2500),
		}
	}

	png, err := RenderNetworth("primary", samples)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	// PNG magic bytes.
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, png[:4])
}

func TestRenderNetworthEmpty(t *testing.T) {
	_, err := RenderNetworth("primary", nil)
	assert.ErrorIs(t, err, ErrEmptySeries)
}

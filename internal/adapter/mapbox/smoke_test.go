//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-risk-service/internal/observability"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

func TestSmoke_ReverseGeocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ReverseGeocode(context.Background(), 35.6895, 139.6917)
	require.NoError(t, err)

	assert.Contains(t, result.FormattedAddress, "Japan")
	assert.NotEmpty(t, result.PlaceName)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestSmoke_ReverseGeocode_OpenOcean(t *testing.T) {
	c := smokeClient(t)

	// Mid-Pacific has no place feature; the client must not treat that as an error.
	_, err := c.ReverseGeocode(context.Background(), 0, -140)
	require.NoError(t, err)
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	cached := NewCachedGeocoder(smokeClient(t), 10, observability.NewMetricsForTesting())

	r1, err := cached.ReverseGeocode(context.Background(), 32.7767, -96.7970)
	require.NoError(t, err)
	assert.Contains(t, r1.FormattedAddress, "Dallas")

	r2, err := cached.ReverseGeocode(context.Background(), 32.7767, -96.7970)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canaclima/cana-clima/internal/cache"
	"github.com/canaclima/cana-clima/internal/observability"
	"github.com/canaclima/cana-clima/internal/sugarcane"
	"github.com/canaclima/cana-clima/internal/weather/openmeteo"
)

type stubProvider struct {
	payload openmeteo.Forecast
	err     error
	calls   int
}

func (s *stubProvider) FetchForecast(_ context.Context, _, _ float64) (openmeteo.Forecast, error) {
	s.calls++
	return s.payload, s.err
}

func newTestService(p Provider, clock clockwork.Clock) *Service {
	return NewService(
		p,
		cache.NewMemory[Response](30*time.Minute, clock),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting(),
		clock,
	)
}

func TestService_CacheAside(t *testing.T) {
	clock := clockwork.NewFakeClock()
	provider := &stubProvider{payload: samplePayload()}
	svc := newTestService(provider, clock)

	first, err := svc.Get(context.Background(), -23.561, -46.655, "Piracicaba")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, provider.calls)

	// A nearby coordinate collapses onto the same key and is served from
	// cache with the flag flipped.
	second, err := svc.Get(context.Background(), -23.5614, -46.6549, "Piracicaba")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, first.Current, second.Current)

	// A different rounded coordinate misses.
	_, err = svc.Get(context.Background(), -23.57, -46.65, "Piracicaba")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)

	// After the TTL elapses, the original key misses again.
	clock.Advance(31 * time.Minute)
	third, err := svc.Get(context.Background(), -23.561, -46.655, "Piracicaba")
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, 3, provider.calls)
}

func TestService_ComposesAnalysis(t *testing.T) {
	svc := newTestService(&stubProvider{payload: samplePayload()}, clockwork.NewFakeClock())

	resp, err := svc.Get(context.Background(), -23.56, -46.65, "Piracicaba")
	require.NoError(t, err)

	// 28.4°C, 72% humidity, 18 km/h wind: everything in the comfortable bands.
	assert.Equal(t, sugarcane.OverallFavorable, resp.Analysis.OverallStatus)
	assert.Len(t, resp.Analysis.Factors, 3)
}

func TestService_UpstreamFailureIsTerminal(t *testing.T) {
	provider := &stubProvider{err: errors.New("boom")}
	svc := newTestService(provider, clockwork.NewFakeClock())

	_, err := svc.Get(context.Background(), -23.56, -46.65, "Piracicaba")
	require.Error(t, err)
	assert.Equal(t, 1, provider.calls, "a failed fetch is never retried")
}

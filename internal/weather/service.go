package weather

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/canaclima/cana-clima/internal/cache"
	"github.com/canaclima/cana-clima/internal/observability"
	"github.com/canaclima/cana-clima/internal/sugarcane"
	"github.com/canaclima/cana-clima/internal/weather/openmeteo"
)

// Provider abstracts the upstream forecast source.
type Provider interface {
	FetchForecast(ctx context.Context, lat, lon float64) (openmeteo.Forecast, error)
}

// Service composes the upstream payload, the agronomic analysis and the
// forecast into a single response, with cache-aside semantics over its own
// cache instance.
type Service struct {
	provider Provider
	cache    cache.Cache[Response]
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
}

func NewService(provider Provider, c cache.Cache[Response], logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		provider: provider,
		cache:    c,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
	}
}

// CacheKey derives the cache key from coordinates rounded to two decimal
// places (~1 km), so nearby requests collapse onto one entry. That precision
// loss is a deliberate cost trade-off.
func CacheKey(lat, lon float64) string {
	return fmt.Sprintf("weather:%.2f:%.2f", lat, lon)
}

// Get returns the composed weather response for the coordinates, serving
// from cache when a live entry exists. Upstream failures are terminal for
// the request; the caller retries only by issuing a new request.
func (s *Service) Get(ctx context.Context, lat, lon float64, locationName string) (Response, error) {
	key := CacheKey(lat, lon)

	if cached, ok := s.cache.Get(key); ok {
		s.logger.Info("weather cache hit", "key", key)
		s.metrics.CacheLookups.WithLabelValues("weather", "hit").Inc()
		cached.Cached = true
		return cached, nil
	}
	s.metrics.CacheLookups.WithLabelValues("weather", "miss").Inc()

	raw, err := s.provider.FetchForecast(ctx, lat, lon)
	if err != nil {
		s.metrics.UpstreamRequests.WithLabelValues("openmeteo", observability.Outcome(err)).Inc()
		return Response{}, err
	}
	s.metrics.UpstreamRequests.WithLabelValues("openmeteo", "success").Inc()

	resp, snapshot := compose(lat, lon, locationName, raw, s.clock.Now().UTC())
	resp.Analysis = sugarcane.Analyze(snapshot)

	// The cache wraps the final composed response, not the raw payload.
	s.cache.Set(key, resp)
	s.logger.Info("weather cache set", "key", key)

	return resp, nil
}

package quotation

import (
	"context"
	"log/slog"

	"github.com/canaclima/cana-clima/internal/cache"
	"github.com/canaclima/cana-clima/internal/observability"
)

// cacheKey is fixed: there is only one "current quotation" resource.
const cacheKey = "quotation:latest"

// Source is what the service needs from the scraper.
type Source interface {
	Scrape(ctx context.Context) ([]Record, error)
}

// Service is the cache-aside orchestration over the scraper. A miss always
// replaces the entire cached value with the fresh scrape result; there is no
// deduplication against previously cached records.
type Service struct {
	source  Source
	cache   cache.Cache[[]Record]
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewService(source Source, c cache.Cache[[]Record], logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		source:  source,
		cache:   c,
		logger:  logger,
		metrics: metrics,
	}
}

// Get returns the current quotation records, scraping only on cache miss.
// Fewer than the capped number of records is normal, not an error.
func (s *Service) Get(ctx context.Context) ([]Record, error) {
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.logger.Info("quotation cache hit", "records", len(cached))
		s.metrics.CacheLookups.WithLabelValues("quotation", "hit").Inc()
		return cached, nil
	}
	s.metrics.CacheLookups.WithLabelValues("quotation", "miss").Inc()

	records, err := s.source.Scrape(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cacheKey, records)
	s.logger.Info("quotation cache set", "records", len(records))
	return records, nil
}

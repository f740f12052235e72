package quotation

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canaclima/cana-clima/internal/cache"
	"github.com/canaclima/cana-clima/internal/observability"
)

func TestService_EndToEnd(t *testing.T) {
	var fetches int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		fmt.Fprint(w, page(
			quotationBlock("03/11/2025", "129,50", ""),       // field only
			quotationBlock("31/10/2025", "", "144,64"),       // conveyor only
			quotationBlock("30/10/2025", "128,00", "143,10"), // both
			quotationBlock("29/10/2025", "", ""),             // missing both: dropped
		))
	}))
	t.Cleanup(srv.Close)

	clock := clockwork.NewFakeClock()
	metrics := observability.NewMetricsForTesting()
	scraper := NewScraper(srv.Client(), srv.URL, testLogger(), metrics)
	svc := NewService(scraper, cache.NewMemory[[]Record](time.Hour, clock), testLogger(), metrics)

	records, err := svc.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3, "the malformed block is silently dropped")
	assert.Equal(t, 1, fetches)

	// A second call within the TTL serves the identical records without a
	// new fetch.
	clock.Advance(30 * time.Minute)
	again, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records, again)
	assert.Equal(t, 1, fetches)

	// Past the TTL the next call scrapes again and replaces the cached set.
	clock.Advance(31 * time.Minute)
	_, err = svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}

func TestService_ScrapeFailureIsTerminal(t *testing.T) {
	var fetches int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	metrics := observability.NewMetricsForTesting()
	scraper := NewScraper(srv.Client(), srv.URL, testLogger(), metrics)
	svc := NewService(scraper, cache.NewMemory[[]Record](time.Hour, clockwork.NewFakeClock()), testLogger(), metrics)

	_, err := svc.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, fetches, "a failed scrape is not retried within the request")

	// Nothing was cached; the next caller triggers a fresh attempt.
	_, err = svc.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, fetches)
}

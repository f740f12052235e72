package quotation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canaclima/cana-clima/internal/fetch"
	"github.com/canaclima/cana-clima/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// quotationBlock renders one div.cotacao in the source page's markup.
// An empty price string renders an empty cell.
func quotationBlock(date, fieldPrice, conveyorPrice string) string {
	return fmt.Sprintf(`
<div class="cotacao">
  <div class="info">
    <div class="fechamento">Fechamento: %s</div>
  </div>
  <table class="cot-fisicas">
    <tbody>
      <tr><td>Campo</td><td>%s</td></tr>
      <tr><td>Esteira</td><td>%s</td></tr>
    </tbody>
  </table>
</div>`, date, fieldPrice, conveyorPrice)
}

func page(blocks ...string) string {
	return "<html><body>" + strings.Join(blocks, "\n") + "</body></html>"
}

func scrapeServer(t *testing.T, html string) (*httptest.Server, *Scraper) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, html)
	}))
	t.Cleanup(srv.Close)

	s := NewScraper(srv.Client(), srv.URL, testLogger(), observability.NewMetricsForTesting())
	return srv, s
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"129,50", 129.50},
		{"1.234,56", 1234.56},
		{"144,64", 144.64},
		{" 99,00 ", 99.0},
	}
	for _, tt := range tests {
		got, err := ParseDecimal(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseDecimal("")
	assert.Error(t, err, "empty value must not become zero")

	_, err = ParseDecimal("n/d")
	assert.Error(t, err)
}

func TestScrape_ParsesBlocks(t *testing.T) {
	_, s := scrapeServer(t, page(
		quotationBlock("03/11/2025", "129,50", "144,64"),
		quotationBlock("31/10/2025", "128,00", ""),
	))

	records, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "03/11/2025", first.FormattedDate)
	assert.Equal(t, time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC), first.Date)
	require.NotNil(t, first.FieldPrice)
	assert.Equal(t, 129.50, *first.FieldPrice)
	require.NotNil(t, first.ConveyorPrice)
	assert.Equal(t, 144.64, *first.ConveyorPrice)

	second := records[1]
	require.NotNil(t, second.FieldPrice)
	assert.Nil(t, second.ConveyorPrice, "empty cell yields no value, not zero")
}

func TestScrape_SkipsMalformedBlocks(t *testing.T) {
	_, s := scrapeServer(t, page(
		quotationBlock("03/11/2025", "129,50", "144,64"),
		quotationBlock("not-a-date", "100,00", "100,00"),
		quotationBlock("30/10/2025", "", ""),                  // neither price
		`<div class="cotacao"><div class="info"></div></div>`, // no closing label
	))

	records, err := s.Scrape(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestScrape_SortsDescendingAndTruncates(t *testing.T) {
	// 15 valid blocks, oldest first, spanning 01..15/10/2025.
	blocks := make([]string, 0, 15)
	for day := 1; day <= 15; day++ {
		blocks = append(blocks, quotationBlock(fmt.Sprintf("%02d/10/2025", day), "100,00", "110,00"))
	}
	_, s := scrapeServer(t, page(blocks...))

	records, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 10, "response is capped at the 10 most recent")

	// Newest first: 15/10 down to 06/10.
	assert.Equal(t, "15/10/2025", records[0].FormattedDate)
	assert.Equal(t, "06/10/2025", records[9].FormattedDate)
	for i := 1; i < len(records); i++ {
		assert.True(t, records[i-1].Date.After(records[i].Date))
	}
}

func TestScrape_NonOKStatusAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	s := NewScraper(srv.Client(), srv.URL, testLogger(), observability.NewMetricsForTesting())
	_, err := s.Scrape(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrUpstream)
}

func TestScrape_SendsBrowserHeaders(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, page(quotationBlock("03/11/2025", "129,50", "")))
	}))
	t.Cleanup(srv.Close)

	s := NewScraper(srv.Client(), srv.URL, testLogger(), observability.NewMetricsForTesting())
	_, err := s.Scrape(context.Background())
	require.NoError(t, err)
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

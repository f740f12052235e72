// Package quotation extracts sugarcane price records from the quotation
// page of Notícias Agrícolas and serves them through a cache-aside service.
package quotation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"

	"github.com/canaclima/cana-clima/internal/common"
	"github.com/canaclima/cana-clima/internal/fetch"
	"github.com/canaclima/cana-clima/internal/observability"
)

const (
	// DefaultSourceURL is the fixed page the scraper reads.
	DefaultSourceURL = "https://www.noticiasagricolas.com.br/cotacoes/sucroenergetico/acucar-preco-da-cana-basica-pr"

	// closingPrefix precedes the quotation date in each block.
	closingPrefix = "Fechamento: "

	// maxRecords caps the response size; the page may carry more history.
	maxRecords = 10
)

// browserHeaders identify the request as a regular browser; the source
// rejects non-browser requests.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
	"Accept-Language": "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7",
}

// Record is one dated quotation. At least one of the two prices is non-nil;
// records are immutable once parsed.
type Record struct {
	Date          time.Time `json:"data"`
	FormattedDate string    `json:"data_formatada"`
	FieldPrice    *float64  `json:"valor_campo"`
	ConveyorPrice *float64  `json:"valor_esteira"`
}

// Scraper fetches and parses the quotation page.
type Scraper struct {
	url        string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
	logger     *slog.Logger
	metrics    *observability.Metrics
}

func NewScraper(httpClient *http.Client, url string, logger *slog.Logger, metrics *observability.Metrics) *Scraper {
	if url == "" {
		url = DefaultSourceURL
	}
	return &Scraper{
		url:        url,
		httpClient: httpClient,
		circuit:    fetch.NewBreaker("quotation"),
		logger:     logger,
		metrics:    metrics,
	}
}

// Scrape fetches the page and returns the most recent records, newest
// first, capped at maxRecords. A failed page fetch aborts the whole scrape;
// malformed individual blocks are skipped and reported as diagnostics only.
func (s *Scraper) Scrape(ctx context.Context) ([]Record, error) {
	started := time.Now()

	req, err := http.NewRequest(http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := fetch.Do(ctx, s.httpClient, s.circuit, req)
	if err != nil {
		s.metrics.UpstreamRequests.WithLabelValues("quotation", observability.Outcome(err)).Inc()
		s.logger.Error("quotation page fetch failed", "url", s.url, "err", err)
		return nil, err
	}
	defer resp.Body.Close()
	s.metrics.UpstreamRequests.WithLabelValues("quotation", "success").Inc()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse page: %v", fetch.ErrUpstream, err)
	}

	var records []Record
	var skipped []string
	doc.Find("div.cotacao").Each(func(i int, block *goquery.Selection) {
		rec, err := parseBlock(block)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("block %d: %v", i, err))
			return
		}
		records = append(records, rec)
	})

	s.metrics.ScrapeRecords.Add(float64(len(records)))
	s.metrics.ScrapeSkips.Add(float64(len(skipped)))
	s.metrics.ScrapeDuration.Observe(time.Since(started).Seconds())
	if len(skipped) > 0 {
		s.logger.Warn("skipped malformed quotation blocks", "count", len(skipped), "reasons", skipped)
	}
	s.logger.Info("quotation scrape finished", "records", len(records), "skipped", len(skipped))

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	if len(records) > maxRecords {
		records = records[:maxRecords]
	}
	return records, nil
}

// parseBlock extracts one record from a quotation block. The returned error
// is a diagnostic for the skip list, never propagated to the caller.
func parseBlock(block *goquery.Selection) (Record, error) {
	closing := strings.TrimSpace(block.Find("div.info div.fechamento").First().Text())
	if closing == "" {
		return Record{}, errors.New("no closing label")
	}

	dateStr := strings.TrimPrefix(closing, closingPrefix)
	date, err := time.Parse("02/01/2006", dateStr)
	if err != nil {
		return Record{}, fmt.Errorf("unparseable date %q", dateStr)
	}

	var fieldPrice, conveyorPrice *float64
	block.Find("table.cot-fisicas tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		label := strings.TrimSpace(cells.Eq(0).Text())
		value, err := ParseDecimal(cells.Eq(1).Text())
		if err != nil {
			// Non-numeric or empty value skips this row only.
			return
		}

		switch {
		case common.ContainsAnyFold(label, "campo"):
			fieldPrice = &value
		case common.ContainsAnyFold(label, "esteira"):
			conveyorPrice = &value
		}
	})

	if fieldPrice == nil && conveyorPrice == nil {
		return Record{}, errors.New("no usable price")
	}

	return Record{
		Date:          date,
		FormattedDate: dateStr,
		FieldPrice:    fieldPrice,
		ConveyorPrice: conveyorPrice,
	}, nil
}

// ParseDecimal converts pt-BR decimal notation ("1.234,56") to a float:
// thousands separators are deleted, the decimal comma becomes a point. An
// empty string is an error, not zero.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty value")
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}

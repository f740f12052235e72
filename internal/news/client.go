// Package news proxies NewsAPI server-side so browser clients avoid CORS
// and the daily quota is protected by a cache.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/canaclima/cana-clima/internal/cache"
	"github.com/canaclima/cana-clima/internal/fetch"
	"github.com/canaclima/cana-clima/internal/observability"
)

const DefaultBaseURL = "https://newsapi.org/v2/everything"

// Categories maps the category names the API accepts to NewsAPI queries.
var Categories = map[string]string{
	"AGRIBUSINESS": `agronegócio OR agricultura OR "cana-de-açúcar"`,
	"SUGARCANE":    `"cana-de-açúcar" OR "canavial" OR "usina de açúcar"`,
	"WEATHER":      "clima OR meteorologia AND agricultura",
}

var (
	// ErrInvalidCategory rejects unknown categories before any fetch.
	ErrInvalidCategory = errors.New("invalid news category")

	// ErrQuotaExceeded maps NewsAPI's daily limit (HTTP 429).
	ErrQuotaExceeded = errors.New("news quota exceeded")

	// ErrInvalidKey maps a rejected API key (HTTP 401).
	ErrInvalidKey = errors.New("news api key rejected")
)

// Article is one NewsAPI article.
type Article struct {
	Source      ArticleSource `json:"source"`
	Author      string        `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	URLToImage  string        `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
	Content     string        `json:"content"`
}

type ArticleSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Result is the proxied response served to clients.
type Result struct {
	Articles     []Article `json:"articles"`
	TotalResults int       `json:"total_results"`
	Category     string    `json:"category"`
	Cached       bool      `json:"cached"`
}

// Client fetches and caches category feeds; each category is cached as one
// entry in the client's own cache instance.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
	cache      cache.Cache[Result]
	logger     *slog.Logger
	metrics    *observability.Metrics
}

func NewClient(httpClient *http.Client, baseURL, apiKey string, c cache.Cache[Result], logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		circuit:    fetch.NewBreaker("newsapi"),
		cache:      c,
		logger:     logger,
		metrics:    metrics,
	}
}

// Get returns the feed for a category, serving from cache when possible.
func (c *Client) Get(ctx context.Context, category string, pageSize int, sortBy string) (Result, error) {
	query, ok := Categories[category]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidCategory, category)
	}

	key := "news:" + category
	if cached, ok := c.cache.Get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("news", "hit").Inc()
		cached.Cached = true
		return cached, nil
	}
	c.metrics.CacheLookups.WithLabelValues("news", "miss").Inc()

	values := url.Values{}
	values.Set("q", query)
	values.Set("language", "pt")
	values.Set("sortBy", sortBy)
	values.Set("pageSize", strconv.Itoa(pageSize))
	values.Set("apiKey", c.apiKey)

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return Result{}, err
	}

	resp, err := fetch.Do(ctx, c.httpClient, c.circuit, req)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("newsapi", observability.Outcome(err)).Inc()
		var statusErr *fetch.StatusError
		if errors.As(err, &statusErr) {
			switch statusErr.Code {
			case http.StatusTooManyRequests:
				return Result{}, ErrQuotaExceeded
			case http.StatusUnauthorized:
				return Result{}, ErrInvalidKey
			}
		}
		c.logger.Error("newsapi fetch failed", "category", category, "err", err)
		return Result{}, err
	}
	defer resp.Body.Close()
	c.metrics.UpstreamRequests.WithLabelValues("newsapi", "success").Inc()

	var payload struct {
		Articles []Article `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("%w: decode response: %v", fetch.ErrUpstream, err)
	}

	// Drop placeholder articles NewsAPI leaves behind for removed content.
	articles := make([]Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if a.Title == "" || strings.Contains(a.Title, "[Removed]") {
			continue
		}
		articles = append(articles, a)
	}

	result := Result{
		Articles:     articles,
		TotalResults: len(articles),
		Category:     category,
	}
	c.cache.Set(key, result)
	c.logger.Info("news feed cached", "category", category, "articles", len(articles))
	return result, nil
}

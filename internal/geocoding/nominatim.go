// Package geocoding wraps the Nominatim search API for the location
// autocomplete endpoint.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/canaclima/cana-clima/internal/fetch"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org/search"

// Location is one search suggestion.
type Location struct {
	Name        string  `json:"name"`
	State       string  `json:"state,omitempty"`
	Country     string  `json:"country"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

// Client calls Nominatim. The usage policy requires an identifying
// User-Agent.
type Client struct {
	baseURL    string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

func NewClient(httpClient *http.Client, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		circuit:    fetch.NewBreaker("nominatim"),
		logger:     logger,
	}
}

// Search returns up to limit suggestions matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Location, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("format", "jsonv2")
	values.Set("limit", strconv.Itoa(limit))
	values.Set("addressdetails", "1")
	values.Set("accept-language", "pt-BR")

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "cana-clima/1.0")

	resp, err := fetch.Do(ctx, c.httpClient, c.circuit, req)
	if err != nil {
		c.logger.Error("nominatim search failed", "query", query, "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	var payload []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
		Address     struct {
			City    string `json:"city"`
			Town    string `json:"town"`
			Village string `json:"village"`
			State   string `json:"state"`
			Country string `json:"country"`
		} `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", fetch.ErrUpstream, err)
	}

	results := make([]Location, 0, len(payload))
	for _, p := range payload {
		lat, errLat := strconv.ParseFloat(p.Lat, 64)
		lon, errLon := strconv.ParseFloat(p.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}

		name := p.Address.City
		if name == "" {
			name = p.Address.Town
		}
		if name == "" {
			name = p.Address.Village
		}
		if name == "" {
			name = p.DisplayName
		}

		country := p.Address.Country
		if country == "" {
			country = "Brazil"
		}

		results = append(results, Location{
			Name:        name,
			State:       p.Address.State,
			Country:     country,
			Lat:         lat,
			Lon:         lon,
			DisplayName: p.DisplayName,
		})
	}
	return results, nil
}

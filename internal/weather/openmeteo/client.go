// Package openmeteo fetches forecast data from the Open-Meteo API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/canaclima/cana-clima/internal/fetch"
)

const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Forecast is the typed upstream payload. Only the fields the pipeline
// consumes are decoded; everything else upstream sends is dropped.
type Forecast struct {
	Timezone         string `json:"timezone"`
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`

	Current struct {
		Time               string  `json:"time"`
		Temperature2m      float64 `json:"temperature_2m"`
		RelativeHumidity2m float64 `json:"relative_humidity_2m"`
		Precipitation      float64 `json:"precipitation"`
		WeatherCode        int     `json:"weather_code"`
		CloudCover         int     `json:"cloud_cover"`
		PressureMsl        float64 `json:"pressure_msl"`
		WindSpeed10m       float64 `json:"wind_speed_10m"` // km/h
		WindDirection10m   int     `json:"wind_direction_10m"`
		IsDay              int     `json:"is_day"`
	} `json:"current"`

	Hourly struct {
		UVIndex []float64 `json:"uv_index"`
	} `json:"hourly"`

	Daily struct {
		Time             []string  `json:"time"`
		Temperature2mMax []float64 `json:"temperature_2m_max"`
		Temperature2mMin []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
		Sunrise          []string  `json:"sunrise"`
		Sunset           []string  `json:"sunset"`
	} `json:"daily"`
}

// Client calls the Open-Meteo forecast endpoint. Open-Meteo needs no API
// key; the per-request deadline comes from the injected http.Client.
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
		circuit:    fetch.NewBreaker("openmeteo"),
		logger:     logger,
	}
}

// FetchForecast requests current conditions, the hourly UV series and a
// 7-day daily series for the given coordinates. Failures are terminal and
// never retried.
func (c *Client) FetchForecast(ctx context.Context, lat, lon float64) (Forecast, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("current", "temperature_2m,relative_humidity_2m,precipitation,weather_code,cloud_cover,pressure_msl,wind_speed_10m,wind_direction_10m,is_day")
	values.Set("hourly", "temperature_2m,precipitation,uv_index")
	values.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,precipitation_hours,sunrise,sunset")
	values.Set("timezone", "auto")
	values.Set("forecast_days", "7")

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return Forecast{}, err
	}

	resp, err := fetch.Do(ctx, c.httpClient, c.circuit, req)
	if err != nil {
		c.logger.Error("open-meteo fetch failed", "lat", lat, "lon", lon, "err", err)
		return Forecast{}, err
	}
	defer resp.Body.Close()

	var payload Forecast
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Forecast{}, fmt.Errorf("%w: decode response: %v", fetch.ErrUpstream, err)
	}
	return payload, nil
}

package openmeteo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canaclima/cana-clima/internal/fetch"
)

const sampleResponse = `{
  "timezone": "America/Sao_Paulo",
  "utc_offset_seconds": -10800,
  "current": {
    "time": "2025-11-03T14:00",
    "temperature_2m": 28.4,
    "relative_humidity_2m": 72,
    "precipitation": 0.2,
    "weather_code": 2,
    "cloud_cover": 40,
    "pressure_msl": 1015.0,
    "wind_speed_10m": 18.0,
    "wind_direction_10m": 140,
    "is_day": 1
  },
  "hourly": {"uv_index": [2, 4, 6]},
  "daily": {
    "time": ["2025-11-03"],
    "temperature_2m_max": [31.0],
    "temperature_2m_min": [19.2],
    "precipitation_sum": [0.0],
    "sunrise": ["2025-11-03T05:22"],
    "sunset": ["2025-11-03T18:31"]
  }
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchForecast_DecodesPayload(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, sampleResponse)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client(), srv.URL, testLogger())
	payload, err := c.FetchForecast(context.Background(), -23.56, -46.65)
	require.NoError(t, err)

	assert.Equal(t, 28.4, payload.Current.Temperature2m)
	assert.Equal(t, 2, payload.Current.WeatherCode)
	assert.Equal(t, -10800, payload.UTCOffsetSeconds)
	assert.Equal(t, []float64{2, 4, 6}, payload.Hourly.UVIndex)
	assert.Equal(t, []string{"2025-11-03"}, payload.Daily.Time)

	assert.Contains(t, gotQuery, "forecast_days=7")
	assert.Contains(t, gotQuery, "timezone=auto")
	assert.Contains(t, gotQuery, "uv_index")
}

func TestFetchForecast_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client(), srv.URL, testLogger())
	_, err := c.FetchForecast(context.Background(), 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrUpstream)
}

func TestFetchForecast_TimeoutClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{Timeout: 20 * time.Millisecond}
	c := NewClient(client, srv.URL, testLogger())
	_, err := c.FetchForecast(context.Background(), 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrTimeout)
}

func TestFetchForecast_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client(), srv.URL, testLogger())
	_, err := c.FetchForecast(context.Background(), 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrUpstream)
}

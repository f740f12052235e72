package weather

import (
	"time"

	"github.com/canaclima/cana-clima/internal/sugarcane"
	"github.com/canaclima/cana-clima/internal/weather/openmeteo"
)

// uvAveragingWindow is how many upcoming hourly UV readings feed the mean
// exposed to the analyzer.
const uvAveragingWindow = 6

// compose reshapes the raw upstream payload into the external response and
// the flat snapshot the analyzer consumes. It is a pure mapping; now is the
// response timestamp.
func compose(lat, lon float64, locationName string, raw openmeteo.Forecast, now time.Time) (Response, sugarcane.WeatherSnapshot) {
	uv := averageUV(raw.Hourly.UVIndex)

	snapshot := sugarcane.WeatherSnapshot{
		Temperature:   raw.Current.Temperature2m,
		Humidity:      raw.Current.RelativeHumidity2m,
		Precipitation: raw.Current.Precipitation,
		// The analyzer thresholds are calibrated in the upstream unit (km/h).
		WindSpeed: raw.Current.WindSpeed10m,
		UVIndex:   uv,
	}

	sunrise := localToEpoch(firstOr(raw.Daily.Sunrise, ""), raw.UTCOffsetSeconds, now)
	sunset := localToEpoch(firstOr(raw.Daily.Sunset, ""), raw.UTCOffsetSeconds, now)

	current := Current{
		Coord:   Coord{Lat: lat, Lon: lon},
		Weather: []Condition{conditionForCode(raw.Current.WeatherCode, raw.Current.IsDay != 0)},
		Base:    "stations",
		Main: MainMetrics{
			Temp: raw.Current.Temperature2m,
			// Open-Meteo's current block has no apparent temperature.
			FeelsLike: raw.Current.Temperature2m,
			TempMin:   firstOr(raw.Daily.Temperature2mMin, raw.Current.Temperature2m),
			TempMax:   firstOr(raw.Daily.Temperature2mMax, raw.Current.Temperature2m),
			Pressure:  raw.Current.PressureMsl,
			Humidity:  raw.Current.RelativeHumidity2m,
		},
		// Not present in the upstream payload; fixed so consumers keep working.
		Visibility: 10000,
		Wind: Wind{
			Speed: raw.Current.WindSpeed10m / 3.6, // km/h -> m/s
			Deg:   raw.Current.WindDirection10m,
		},
		Clouds:   Clouds{All: raw.Current.CloudCover},
		Rain:     Rain{OneHour: raw.Current.Precipitation},
		Dt:       now.Unix(),
		Sys:      Sys{Country: "BR", Sunrise: sunrise, Sunset: sunset},
		Timezone: raw.UTCOffsetSeconds,
		Name:     locationName,
		Cod:      200,
	}

	forecast := composeForecast(lat, lon, locationName, raw, sunrise, sunset)

	resp := Response{
		Location: Location{
			Name:     locationName,
			Lat:      lat,
			Lon:      lon,
			Timezone: raw.Timezone,
		},
		Current:  current,
		Forecast: forecast,
		Cached:   false,
	}
	return resp, snapshot
}

// composeForecast forwards the daily series largely as-is, one entry per day.
func composeForecast(lat, lon float64, locationName string, raw openmeteo.Forecast, sunrise, sunset int64) Forecast {
	days := len(raw.Daily.Time)
	if n := len(raw.Daily.Temperature2mMax); n < days {
		days = n
	}
	if n := len(raw.Daily.Temperature2mMin); n < days {
		days = n
	}
	if n := len(raw.Daily.PrecipitationSum); n < days {
		days = n
	}

	list := make([]ForecastItem, 0, days)
	for i := 0; i < days; i++ {
		precip := raw.Daily.PrecipitationSum[i]

		cond := Condition{ID: 800, Main: "Clear", Description: "céu limpo", Icon: "01d"}
		pop := 0.0
		if precip > 0 {
			cond = Condition{ID: 500, Main: "Rain", Description: "chuva", Icon: "10d"}
			pop = 0.5
		}

		list = append(list, ForecastItem{
			Dt: localToEpoch(raw.Daily.Time[i], raw.UTCOffsetSeconds, time.Time{}),
			Main: MainMetrics{
				Temp:    raw.Daily.Temperature2mMax[i],
				TempMin: raw.Daily.Temperature2mMin[i],
				TempMax: raw.Daily.Temperature2mMax[i],
				// The daily series carries no humidity.
				Humidity: 60,
			},
			Weather: []Condition{cond},
			Pop:     pop,
			Rain:    RainThreeHour{ThreeHours: precip},
			DtTxt:   raw.Daily.Time[i] + " 12:00:00",
		})
	}

	return Forecast{
		Cod:  "200",
		Cnt:  len(list),
		List: list,
		City: ForecastCity{
			Name:     locationName,
			Coord:    Coord{Lat: lat, Lon: lon},
			Country:  "BR",
			Timezone: raw.UTCOffsetSeconds,
			Sunrise:  sunrise,
			Sunset:   sunset,
		},
	}
}

// averageUV returns the arithmetic mean of the first uvAveragingWindow
// hourly readings, clamped to however many are available. An empty series
// yields nil so the UV field is omitted downstream.
func averageUV(series []float64) *float64 {
	if len(series) == 0 {
		return nil
	}
	n := uvAveragingWindow
	if len(series) < n {
		n = len(series)
	}
	var sum float64
	for _, v := range series[:n] {
		sum += v
	}
	mean := sum / float64(n)
	return &mean
}

// localToEpoch converts an upstream local timestamp ("2006-01-02T15:04" or
// a bare date) plus the payload's UTC offset into epoch seconds. fallback's
// Unix value is used when the string cannot be parsed.
func localToEpoch(s string, offsetSeconds int, fallback time.Time) int64 {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix() - int64(offsetSeconds)
		}
	}
	if fallback.IsZero() {
		return 0
	}
	return fallback.Unix()
}

func firstOr[T any](s []T, def T) T {
	if len(s) == 0 {
		return def
	}
	return s[0]
}

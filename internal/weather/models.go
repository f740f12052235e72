package weather

import "github.com/canaclima/cana-clima/internal/sugarcane"

// Response is the composed weather payload served to clients and stored in
// the cache. Current mimics the OpenWeatherMap shape the frontend was built
// against, even though the data comes from Open-Meteo.
type Response struct {
	Location Location           `json:"location"`
	Current  Current            `json:"current"`
	Analysis sugarcane.Analysis `json:"sugarcane_analysis"`
	Forecast Forecast           `json:"forecast"`
	Cached   bool               `json:"cached"`
}

type Location struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
}

// Current is the OpenWeatherMap-compatible current-conditions structure.
// Wind.Speed carries m/s (converted from the upstream's km/h); the raw km/h
// figure only exists in the analyzer snapshot.
type Current struct {
	Coord      Coord       `json:"coord"`
	Weather    []Condition `json:"weather"`
	Base       string      `json:"base"`
	Main       MainMetrics `json:"main"`
	Visibility int         `json:"visibility"`
	Wind       Wind        `json:"wind"`
	Clouds     Clouds      `json:"clouds"`
	Rain       Rain        `json:"rain"`
	Dt         int64       `json:"dt"`
	Sys        Sys         `json:"sys"`
	Timezone   int         `json:"timezone"`
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	Cod        int         `json:"cod"`
}

type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Condition carries the provider-agnostic icon token mapped from the
// upstream WMO weather code.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type MainMetrics struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
}

type Wind struct {
	Speed float64 `json:"speed"` // m/s
	Deg   int     `json:"deg"`
}

type Clouds struct {
	All int `json:"all"`
}

type Rain struct {
	OneHour float64 `json:"1h"`
}

type Sys struct {
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

// Forecast holds one entry per upcoming day.
type Forecast struct {
	Cod     string         `json:"cod"`
	Message int            `json:"message"`
	Cnt     int            `json:"cnt"`
	List    []ForecastItem `json:"list"`
	City    ForecastCity   `json:"city"`
}

type ForecastItem struct {
	Dt      int64         `json:"dt"`
	Main    MainMetrics   `json:"main"`
	Weather []Condition   `json:"weather"`
	Clouds  Clouds        `json:"clouds"`
	Wind    Wind          `json:"wind"`
	Pop     float64       `json:"pop"`
	Rain    RainThreeHour `json:"rain"`
	DtTxt   string        `json:"dt_txt"`
}

type RainThreeHour struct {
	ThreeHours float64 `json:"3h"`
}

type ForecastCity struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Coord    Coord  `json:"coord"`
	Country  string `json:"country"`
	Timezone int    `json:"timezone"`
	Sunrise  int64  `json:"sunrise"`
	Sunset   int64  `json:"sunset"`
}

package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/canaclima/cana-clima/internal/fetch"
	"github.com/canaclima/cana-clima/internal/geocoding"
	"github.com/canaclima/cana-clima/internal/news"
	"github.com/canaclima/cana-clima/internal/quotation"
	"github.com/canaclima/cana-clima/internal/weather"
)

var validate = validator.New()

// Service contracts consumed by the route layer.
type (
	WeatherService interface {
		Get(ctx context.Context, lat, lon float64, locationName string) (weather.Response, error)
	}
	QuotationService interface {
		Get(ctx context.Context) ([]quotation.Record, error)
	}
	LocationSearcher interface {
		Search(ctx context.Context, query string, limit int) ([]geocoding.Location, error)
	}
	NewsService interface {
		Get(ctx context.Context, category string, pageSize int, sortBy string) (news.Result, error)
	}
)

// Deps bundles the services the routes depend on.
type Deps struct {
	Weather   WeatherService
	Quotation QuotationService
	Locations LocationSearcher
	News      NewsService
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		req, err := parseWeatherQuery(c)
		if err != nil {
			return validationError(c, err)
		}

		resp, err := deps.Weather.Get(c.Context(), *req.Lat, *req.Lon, req.LocationName)
		if err != nil {
			return upstreamError(c, err, "WEATHER_API")
		}
		return c.JSON(resp)
	})

	v1.Get("/quotation", func(c *fiber.Ctx) error {
		records, err := deps.Quotation.Get(c.Context())
		if err != nil {
			return upstreamError(c, err, "QUOTATION_SCRAPING")
		}
		return c.JSON(records)
	})

	v1.Get("/locations/search", func(c *fiber.Ctx) error {
		var req locationSearchQuery
		req.Query = c.Query("q")
		req.Limit = c.QueryInt("limit", 5)
		if err := validate.Struct(req); err != nil {
			return validationError(c, err)
		}

		suggestions, err := deps.Locations.Search(c.Context(), req.Query, req.Limit)
		if err != nil {
			return upstreamError(c, err, "GEOCODING")
		}
		return c.JSON(fiber.Map{"suggestions": suggestions})
	})

	v1.Get("/news", func(c *fiber.Ctx) error {
		var req newsQuery
		req.Category = c.Query("category", "AGRIBUSINESS")
		req.PageSize = c.QueryInt("page_size", 10)
		req.SortBy = c.Query("sort_by", "publishedAt")
		if err := validate.Struct(req); err != nil {
			return validationError(c, err)
		}

		result, err := deps.News.Get(c.Context(), req.Category, req.PageSize, req.SortBy)
		switch {
		case errors.Is(err, news.ErrInvalidCategory):
			return sendError(c, fiber.StatusBadRequest, "INVALID_CATEGORY", "Categoria de notícias inválida", err.Error())
		case errors.Is(err, news.ErrQuotaExceeded):
			return sendError(c, fiber.StatusTooManyRequests, "NEWS_API_QUOTA_EXCEEDED", "Limite diário de notícias excedido", "")
		case errors.Is(err, news.ErrInvalidKey):
			return sendError(c, fiber.StatusBadGateway, "NEWS_API_KEY_INVALID", "Configuração do serviço de notícias inválida", "")
		case err != nil:
			return upstreamError(c, err, "NEWS_API")
		}
		return c.JSON(result)
	})
}

// weatherQuery holds the validated coordinates and display name. Pointers
// distinguish "missing" from the legitimate zero coordinate.
type weatherQuery struct {
	Lat          *float64 `validate:"required,gte=-90,lte=90"`
	Lon          *float64 `validate:"required,gte=-180,lte=180"`
	LocationName string   `validate:"required"`
}

func parseWeatherQuery(c *fiber.Ctx) (weatherQuery, error) {
	var q weatherQuery

	if s := c.Query("lat"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, errors.New("lat must be a number")
		}
		q.Lat = &v
	}
	if s := c.Query("lon"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, errors.New("lon must be a number")
		}
		q.Lon = &v
	}
	q.LocationName = c.Query("location_name")

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

type locationSearchQuery struct {
	Query string `validate:"required,min=3"`
	Limit int    `validate:"gte=1,lte=10"`
}

type newsQuery struct {
	Category string `validate:"required"`
	PageSize int    `validate:"gte=1,lte=100"`
	SortBy   string `validate:"oneof=relevancy popularity publishedAt"`
}

// errorBody is the structured error payload both pipelines surface at the
// boundary; a stack trace never leaks.
type errorBody struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func sendError(c *fiber.Ctx, status int, code, message, details string) error {
	return c.Status(status).JSON(errorBody{Error: apiError{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

func validationError(c *fiber.Ctx, err error) error {
	return sendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Parâmetros inválidos", err.Error())
}

// upstreamError maps the fetch taxonomy to HTTP, keeping timeouts
// distinguishable from protocol failures.
func upstreamError(c *fiber.Ctx, err error, codePrefix string) error {
	if errors.Is(err, fetch.ErrTimeout) {
		return sendError(c, fiber.StatusGatewayTimeout, codePrefix+"_TIMEOUT",
			"Serviço temporariamente indisponível (timeout)", err.Error())
	}
	return sendError(c, fiber.StatusServiceUnavailable, codePrefix+"_ERROR",
		"Serviço temporariamente indisponível", err.Error())
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/canaclima/cana-clima/internal/api/http"
	"github.com/canaclima/cana-clima/internal/cache"
	"github.com/canaclima/cana-clima/internal/config"
	"github.com/canaclima/cana-clima/internal/geocoding"
	"github.com/canaclima/cana-clima/internal/news"
	"github.com/canaclima/cana-clima/internal/observability"
	"github.com/canaclima/cana-clima/internal/quotation"
	"github.com/canaclima/cana-clima/internal/scheduler"
	"github.com/canaclima/cana-clima/internal/weather"
	"github.com/canaclima/cana-clima/internal/weather/openmeteo"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	// Per-pipeline outbound clients: the scraper downloads a full HTML page
	// and gets a longer budget than the JSON APIs.
	weatherClient := &http.Client{Timeout: cfg.WeatherHTTPTimeout}
	quotationClient := &http.Client{Timeout: cfg.QuotationHTTPTimeout}

	// Each pipeline owns an isolated cache instance with its own TTL.
	weatherCache := cache.NewMemory[weather.Response](cfg.WeatherCacheTTL, nil)
	quotationCache := cache.NewMemory[[]quotation.Record](cfg.QuotationCacheTTL, nil)
	newsCache := cache.NewMemory[news.Result](cfg.NewsCacheTTL, nil)

	weatherSvc := weather.NewService(
		openmeteo.NewClient(weatherClient, cfg.OpenMeteoBaseURL, logger),
		weatherCache, logger, metrics, nil,
	)
	quotationSvc := quotation.NewService(
		quotation.NewScraper(quotationClient, cfg.QuotationURL, logger, metrics),
		quotationCache, logger, metrics,
	)
	geocodingSvc := geocoding.NewClient(weatherClient, cfg.NominatimBaseURL, logger)
	newsSvc := news.NewClient(weatherClient, cfg.NewsAPIBaseURL, cfg.NewsAPIKey, newsCache, logger, metrics)

	// Periodic sweep reclaims memory held by entries nobody reads anymore.
	sched := scheduler.New(cfg.CacheSweepInterval, logger, weatherCache, quotationCache, newsCache)
	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", "err", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "cana-clima",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response; handlers map known failures
			// themselves, so anything landing here is unexpected.
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "INTERNAL_ERROR",
					"message": err.Error(),
				},
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOriginsList(), ","),
		AllowMethods: "GET,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "cana-clima",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Weather:   weatherSvc,
		Quotation: quotationSvc,
		Locations: geocodingSvc,
		News:      newsSvc,
	})

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "err", err)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/hiho-nelson/go-shopify-storefront/internal/catalog"
	"github.com/hiho-nelson/go-shopify-storefront/internal/httpapi"
	"github.com/hiho-nelson/go-shopify-storefront/internal/mail"
	"github.com/hiho-nelson/go-shopify-storefront/internal/shopify"
)

type Config struct {
	HTTPPort               string
	ShopifyStoreDomain     string
	ShopifyStorefrontToken string
	RedisAddr              string
	SendGridAPIKey         string
	ContactFromEmail       string
	ContactAdminEmail      string
	CookieSecure           bool
	RequestTimeout         time.Duration
	ShutdownTimeout        time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		ShopifyStoreDomain:     os.Getenv("SHOPIFY_STORE_DOMAIN"),
		ShopifyStorefrontToken: os.Getenv("SHOPIFY_STOREFRONT_ACCESS_TOKEN"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		SendGridAPIKey:         os.Getenv("SENDGRID_API_KEY"),
		ContactFromEmail:       getEnv("CONTACT_FROM_EMAIL", "no-reply@yourdomain.com"),
		ContactAdminEmail:      getEnv("CONTACT_ADMIN_EMAIL", "admin@yourdomain.com"),
		CookieSecure:           getEnv("COOKIE_SECURE", "true") == "true",
		RequestTimeout:         30 * time.Second,
		ShutdownTimeout:        10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.ShopifyStoreDomain == "" || cfg.ShopifyStorefrontToken == "" {
		logger.Fatal("SHOPIFY_STORE_DOMAIN and SHOPIFY_STOREFRONT_ACCESS_TOKEN must be set")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	gateway := shopify.NewClient(cfg.ShopifyStoreDomain, cfg.ShopifyStorefrontToken, shopify.DefaultPolicy(), logger)
	catalogSvc := catalog.NewService(gateway, catalog.NewRedisCache(redisClient), logger)

	handlers := httpapi.Handlers{
		Cart:    httpapi.NewCartHandler(gateway, logger),
		Auth:    httpapi.NewAuthHandler(gateway, cfg.CookieSecure, logger),
		Account: httpapi.NewAccountHandler(gateway, logger),
		Catalog: httpapi.NewCatalogHandler(catalogSvc, logger),
		Webhook: httpapi.NewWebhookHandler(catalogSvc, logger),
	}
	if cfg.SendGridAPIKey != "" {
		mailer := mail.NewSendGridMailer(cfg.SendGridAPIKey, "Storefront", logger)
		handlers.Contact = httpapi.NewContactHandler(mailer, cfg.ContactFromEmail, cfg.ContactAdminEmail, logger)
	} else {
		logger.Warn("SENDGRID_API_KEY not set, contact route disabled")
	}

	router := httpapi.NewRouter(handlers, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ramyeon-storefront/internal/auth"
	"ramyeon-storefront/internal/cart"
	"ramyeon-storefront/internal/category"
	"ramyeon-storefront/internal/config"
	"ramyeon-storefront/internal/db"
	"ramyeon-storefront/internal/httpapi"
	"ramyeon-storefront/internal/httpclient"
	"ramyeon-storefront/internal/logger"
	"ramyeon-storefront/internal/loyalty"
	"ramyeon-storefront/internal/metrics"
	"ramyeon-storefront/internal/middleware"
	"ramyeon-storefront/internal/order"
	"ramyeon-storefront/internal/payment"
	"ramyeon-storefront/internal/product"
	"ramyeon-storefront/internal/promotion"
	"ramyeon-storefront/internal/storage"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.L().Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	m := metrics.New()
	session := auth.NewSession(store, cfg.APIServiceToken)
	client := httpclient.New(cfg.APIBaseURL,
		httpclient.WithTimeout(cfg.APITimeout),
		httpclient.WithTokenSource(session),
		httpclient.WithRateLimit(cfg.APIRateLimit),
		httpclient.WithMetrics(m),
	)

	api := buildHandler(ctx, cfg, client, store, session, m)

	limiter := middleware.NewRateLimiter()
	go limiter.Cleanup(ctx)

	var h http.Handler = api.Routes()
	h = limiter.Middleware(h)
	h = middleware.AuthMiddleware(h)
	h = middleware.CORS(cfg.StoreOrigin)(h)
	h = logger.LoggingMiddleware(h)
	h = logger.RequestIDMiddleware(h)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           setupRouter(h, promhttp.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("storefront server running", zap.String("addr", srv.Addr), zap.String("backend", cfg.APIBaseURL))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.L().Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func buildHandler(ctx context.Context, cfg *config.Config, client *httpclient.Client, store storage.Store, session *auth.Session, m *metrics.Metrics) *httpapi.Handler {
	products := product.NewService(product.NewRepository(client), product.Options{
		CacheTTL:        cfg.CacheTTL,
		CacheMaxEntries: cfg.CacheMaxEntries,
		Metrics:         m,
	})
	promos := promotion.NewService(promotion.NewRepository(client), promotion.Options{
		ExcludedNames:   cfg.ExcludedPromotions,
		DrinkKeywords:   cfg.DrinkKeywords,
		CacheTTL:        cfg.CacheTTL,
		CacheMaxEntries: cfg.CacheMaxEntries,
		Metrics:         m,
	})
	ledger := loyalty.NewService(loyalty.NewRepository(client), loyalty.Options{Metrics: m})

	return &httpapi.Handler{
		Products:   products,
		Categories: category.NewService(category.NewRepository(client), cfg.CacheTTL, cfg.CacheMaxEntries, m),
		Promotions: promos,
		Loyalty:    ledger,
		Cart:       cart.NewManager(ctx, cart.NewRepository(store), products, promos, ledger, cart.Options{Metrics: m}),
		Orders: order.NewService(order.NewRepository(client), order.Options{
			Stock:           products,
			Promotions:      promos,
			Points:          ledger,
			Store:           store,
			CacheTTL:        cfg.CacheTTL,
			CacheMaxEntries: cfg.CacheMaxEntries,
			Metrics:         m,
		}),
		Payments:      payment.NewPayMongoGateway(cfg.PayMongoSecretKey, cfg.StoreOrigin, m),
		PaymentConfig: payment.NewPublicConfig(cfg.PayMongoPublicKey, cfg.PayMongoMode),
		Auth:          auth.NewService(auth.NewRepository(client), session),
		Identity:      session,
	}
}

// openStore picks the storage backend named by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		return storage.NewMemoryStore(), func() {}, nil
	case "file":
		fs, err := storage.NewFileStore(cfg.StoreDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	case "postgres":
		database, err := db.NewDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		pg := storage.NewPostgresStore(database)
		if err := pg.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("failed to ensure kv_store table: %w", err)
		}
		return pg, func() { database.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q (use memory, file or postgres)", cfg.StoreDriver)
	}
}

func setupRouter(api, metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", metricsHandler)
	mux.Handle("/api/", api)
	return mux
}

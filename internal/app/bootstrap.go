package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/shop_admin/config"
	cachemem "github.com/Gunvolt24/shop_admin/internal/cache/memory"
	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/kafka"
	"github.com/Gunvolt24/shop_admin/internal/migrate"
	"github.com/Gunvolt24/shop_admin/internal/ports"
	"github.com/Gunvolt24/shop_admin/internal/repo/catalog"
	"github.com/Gunvolt24/shop_admin/internal/repo/postgres"
	"github.com/Gunvolt24/shop_admin/internal/shopify"
	rest "github.com/Gunvolt24/shop_admin/internal/transport/http"
	"github.com/Gunvolt24/shop_admin/internal/usecase"
	"github.com/Gunvolt24/shop_admin/pkg/logger"
	"github.com/Gunvolt24/shop_admin/pkg/metrics"
	"github.com/Gunvolt24/shop_admin/pkg/telemetry"
	"github.com/Gunvolt24/shop_admin/pkg/validate"
)

// App — собранное приложение и его внешние интерфейсы (HTTP, consumer).
type App struct {
	Logger          ports.Logger          // логгер
	HTTPServer      *http.Server          // HTTP-сервер
	KafkaConsumer   ports.MessageConsumer // консьюмер webhook-событий; nil — выключен
	gracefulTimeout time.Duration         // время ожидания завершения HTTP-сервера
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// sessionVerifier — nil-интерфейс, если секрет приложения не задан (авторизация выключена).
func sessionVerifier(cfg config.Shopify) ports.SessionVerifier {
	if strings.TrimSpace(cfg.APISecret) == "" {
		return nil
	}
	return shopify.NewSessionVerifier(cfg.APIKey, cfg.APISecret)
}

// servedShop — магазин инстанса. Снимок заказов один, поэтому магазин задаётся явно.
func servedShop(cfg config.Shopify) (string, error) {
	if strings.TrimSpace(cfg.Shop) == "" {
		return "", fmt.Errorf("%w: SHOPIFY_SHOP is required", domain.ErrValidation)
	}
	return domain.NormalizeShopDomain(cfg.Shop)
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}
	fail := func(err error) (*App, Cleanup, error) {
		logg.Errorf(ctx, "bootstrap failed: %v", err)
		_ = cleanupLogger()
		return nil, func() {}, err
	}

	shop, err := servedShop(cfg.Shopify)
	if err != nil {
		return fail(err)
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Схема БД.
	if cfg.Postgres.MigrateOnStart {
		if err := migrate.Up(ctx, cfg.Postgres.DSN, logg); err != nil {
			return fail(err)
		}
	}

	// Пул подключений Postgres
	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return fail(err)
	}

	gormDB, err := catalog.Open(pool)
	if err != nil {
		pool.Close()
		return fail(err)
	}

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, telemetry.Options{
			ServiceName:    cfg.Tracing.ServiceName,
			ServiceVersion: cfg.Tracing.Version,
			Environment:    cfg.Tracing.Environment,
			Endpoint:       cfg.Tracing.Endpoint,
			SampleRatio:    cfg.Tracing.SampleRatio,
		})
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// Shopify: токены магазинов и GraphQL-клиент.
	sessionRepo := postgres.NewSessionRepository(pool)
	tokens := shopify.NewTokenSource(sessionRepo, cfg.Shopify.SessionCacheSize, cfg.Shopify.SessionCacheTTL,
		shop, cfg.Shopify.AccessToken, logg)
	client := shopify.NewClient(shopify.Config{
		Shop:       shop,
		APIVersion: cfg.Shopify.APIVersion,
		Endpoint:   cfg.Shopify.Endpoint,
		Timeout:    cfg.Shopify.Timeout,
	}, tokens, logg, nil)

	// Сборка зависимостей доменного слоя.
	orderService := usecase.NewOrderCacheService(
		client,
		client,
		postgres.NewSnapshotRepository(pool),
		cachemem.NewSnapshotCache(),
		validate.NewSnapshotValidator(),
		logg,
		usecase.RefreshOptions{
			Shop:           shop,
			MaxPageSize:    cfg.Refresh.MaxPageSize,
			FetchTimeout:   cfg.Shopify.Timeout,
			CommitAttempts: cfg.Refresh.CommitAttempts,
			CommitBackoff:  cfg.Refresh.CommitBackoff,
		},
	)
	pricingService := usecase.NewPricingService(catalog.NewPriceRepository(gormDB), logg)

	// Прогрев кэша из последнего записанного поколения.
	if err := orderService.WarmUp(ctx); err != nil {
		logg.Warnf(ctx, "warm-up snapshot failed: %v", err)
	}

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	verifier := sessionVerifier(cfg.Shopify)
	if verifier == nil {
		logg.Warnf(ctx, "SHOPIFY_API_SECRET is empty: /api is served without session token check")
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(orderService, pricingService, logg, cfg.HTTP.HandlerTimeout,
		cfg.Refresh.PageSize, cfg.Refresh.MaxPageSize)
	router := rest.NewRouter(httpHandler, rest.RouterOptions{
		Verifier:        verifier,
		OtelServiceName: otelServiceName,
		Readiness:       postgres.Readiness(pool),
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	// Консьюмер webhook-событий (по умолчанию выключен).
	var consumer ports.MessageConsumer
	if cfg.Kafka.Enabled {
		consumer = kafka.NewConsumer(&kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			Topic:          cfg.Kafka.Topic,
			StartOffset:    cfg.Kafka.StartOffset,
			PageSize:       cfg.Refresh.PageSize,
			ProcessTimeout: cfg.Kafka.ProcessTimeout,
			RetryInitial:   cfg.Kafka.RetryInitial,
			RetryMax:       cfg.Kafka.RetryMax,
			ErrorLogger:    kafkago.LoggerFunc(logg.Sugared().Errorf),
		}, orderService, logg)
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		KafkaConsumer:   consumer,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				logg.Warnf(ctx, "kafka consumer close error: %v", err)
			}
		}

		pool.Close()
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	}

	return app, cleanup, nil
}

// Run — запускает HTTP-сервер и консьюмера; ждёт отмены контекста или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	// Запуск консьюмера.
	if a.KafkaConsumer != nil {
		go func() {
			a.Logger.Infof(ctx, "kafka consumer starting")
			if err := a.KafkaConsumer.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	// Запуск HTTP-сервера.
	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Ожидание сигнала остановки или фоновой ошибки.
	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Errorf(ctx, "background error: %v", err)
			runErr = err
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	// Остановка Kafka-консьюмера
	if a.KafkaConsumer != nil {
		if err := a.KafkaConsumer.Close(); err != nil {
			a.Logger.Warnf(ctx, "kafka consumer close error: %v", err)
		}
	}

	a.Logger.Infof(ctx, "service stopped")
	return runErr
}

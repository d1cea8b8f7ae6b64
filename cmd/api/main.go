package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/nomado-booking-ledger/internal/api"
	"github.com/sanosuguru/nomado-booking-ledger/internal/api/handler"
	"github.com/sanosuguru/nomado-booking-ledger/internal/api/middleware"
	"github.com/sanosuguru/nomado-booking-ledger/internal/application"
	"github.com/sanosuguru/nomado-booking-ledger/internal/config"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/payment"
	"github.com/sanosuguru/nomado-booking-ledger/internal/infrastructure/kafka"
	"github.com/sanosuguru/nomado-booking-ledger/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/nomado-booking-ledger/internal/infrastructure/redis"
	"github.com/sanosuguru/nomado-booking-ledger/internal/pkg/logger"
	"github.com/sanosuguru/nomado-booking-ledger/internal/pkg/metrics"
	"github.com/sanosuguru/nomado-booking-ledger/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.Init(cfg.Env)
	defer logger.Sync()

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		log.Fatal("マイグレーションエラー", zap.Error(err))
	}

	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()
	if err := redisinfra.Ping(context.Background(), redisClient); err != nil {
		// キャッシュとロックが使えないだけで台帳は動くため起動は続ける
		log.Warn("Redisに接続できません", zap.Error(err))
	}

	m := metrics.Init()

	txManager := postgres.NewTxManager(db)
	resourceRepo := postgres.NewResourceRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	methodRepo := postgres.NewPaymentMethodRepository(db)

	cache := redisinfra.NewAvailabilityCache(redisClient)
	lockManager := redisinfra.NewLockManager(redisClient, m)

	ledgerOpts := []application.LedgerOption{
		application.WithAvailabilityCache(cache),
		application.WithRecorder(m),
	}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(&cfg.Kafka)
		defer producer.Close()
		ledgerOpts = append(ledgerOpts, application.WithEventPublisher(producer))
		log.Info("予約イベントを Kafka に送信します",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	if cfg.Payment.KeySecret == "" {
		log.Warn("PAYMENT_KEY_SECRET が未設定です。決済の署名検証は常に失敗します")
	}

	ledgerService := application.NewLedgerService(txManager, resourceRepo, bookingRepo,
		booking.NewRandomIDGenerator(), cfg.Ledger, ledgerOpts...)
	resourceService := application.NewResourceService(resourceRepo, cache, cfg.Ledger.AvailabilityTTL, m)
	paymentService := application.NewPaymentService(txManager, paymentRepo, methodRepo, ledgerService,
		payment.NewHMACVerifier(cfg.Payment.KeySecret), cfg.Payment, m)

	e := newServer(cfg, m, handler.Handlers{
		Resource: handler.NewResourceHandler(resourceService, ledgerService),
		Booking:  handler.NewBookingHandler(ledgerService),
		Payment:  handler.NewPaymentHandler(paymentService),
	}, map[string]handler.Checker{
		"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
		"redis":    func(ctx context.Context) error { return redisinfra.Ping(ctx, redisClient) },
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sweeper := worker.NewBookingCompletionSweeper(ledgerService, lockManager, cfg.Ledger.CompletionInterval)
	go sweeper.Start(ctx)

	go func() {
		log.Info("サーバーを起動します", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("サーバーをシャットダウンしています...")
	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("サーバーシャットダウンエラー", zap.Error(err))
	}
	log.Info("サーバーが正常にシャットダウンしました")
}

// newServer は echo にミドルウェアとルートを登録する
func newServer(cfg *config.Config, m *metrics.Metrics, h handler.Handlers, checks map[string]handler.Checker) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	middleware.SetupMiddleware(e, cfg.Server)
	e.Use(middleware.PrometheusMiddleware(m))

	e.GET("/health", handler.NewHealthHandler(checks).Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(cfg.Metrics))

	handler.RegisterRoutes(e.Group("/api/v1"), h)
	return e
}

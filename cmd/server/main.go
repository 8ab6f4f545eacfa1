package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	catalogapp "github.com/distribo/backend/internal/application/catalog"
	deliveryapp "github.com/distribo/backend/internal/application/delivery"
	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/application/notify"
	partnerapp "github.com/distribo/backend/internal/application/partner"
	paymentapp "github.com/distribo/backend/internal/application/payment"
	reportapp "github.com/distribo/backend/internal/application/report"
	tradeapp "github.com/distribo/backend/internal/application/trade"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/distribo/backend/internal/infrastructure/auth"
	"github.com/distribo/backend/internal/infrastructure/cache"
	"github.com/distribo/backend/internal/infrastructure/config"
	"github.com/distribo/backend/internal/infrastructure/event"
	"github.com/distribo/backend/internal/infrastructure/logger"
	"github.com/distribo/backend/internal/infrastructure/persistence"
	"github.com/distribo/backend/internal/interfaces/http/handler"
	"github.com/distribo/backend/internal/interfaces/http/middleware"
	"github.com/distribo/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("starting distribo backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()
	log.Info("database connected")

	// Redis is optional. Without it the token blacklist and the event
	// dedup store fall back to in-process implementations, which is
	// fine for a single instance.
	var redisClient *redis.Client
	var blacklist auth.TokenBlacklist
	var dedupStore shared.IdempotencyStore
	redisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if store, err := cache.NewRedisIdempotencyStore(redisClient, "distribo"); err != nil {
		log.Warn("redis unavailable, using in-process stores", zap.Error(err))
		_ = redisClient.Close()
		redisClient = nil
		blacklist = auth.NewInMemoryTokenBlacklist()
		dedupStore = cache.NewInMemoryIdempotencyStore()
	} else {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		dedupStore = store
		log.Info("redis connected")
	}
	defer func() {
		if err := dedupStore.Close(); err != nil {
			log.Error("error closing dedup store", zap.Error(err))
		}
	}()

	// Transactional core
	scope := persistence.NewGormTransactionScope(db.DB)
	ledgerSvc := ledger.NewService()
	numbers := persistence.NewGormOrderNumberGenerator(db.DB, cfg.Ledger.OrderNumberPrefix)

	// Application services
	customerService := partnerapp.NewCustomerService(scope, ledgerSvc)
	productService := catalogapp.NewProductService(scope, ledgerSvc)
	orderService := tradeapp.NewOrderService(scope, ledgerSvc, numbers)
	paymentService := paymentapp.NewService(scope, ledgerSvc)
	deliveryService := deliveryapp.NewService(scope, paymentService)
	registerService := deliveryapp.NewRegisterService(scope)
	statementService := reportapp.NewStatementService(scope)

	// Event bus with delivery dedup and the activity feed subscriber
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.SetDeduplicator(dedupStore)
	eventBus.Subscribe(notify.NewActivityLogHandler(log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("error stopping event bus", zap.Error(err))
		}
	}()

	customerService.SetEventPublisher(eventBus)
	productService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	deliveryService.SetEventPublisher(eventBus)
	registerService.SetEventPublisher(eventBus)

	// Auth
	tokenService := auth.NewTokenService(cfg.JWT)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORS(cfg.HTTP.CORSAllowOrigins),
	)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("invalid trusted proxies", zap.Error(err))
		}
	}

	authMiddleware := middleware.Auth(middleware.AuthConfig{
		Tokens:    tokenService,
		Blacklist: blacklist,
		SkipPaths: []string{"/api/v1/health", "/api/v1/ready"},
	})

	router.New(engine, router.WithMiddleware(authMiddleware)).
		Register(
			handler.NewSystemHandler(db.DB, redisClient, version),
			handler.NewAuthHandler(blacklist),
			handler.NewCustomerHandler(customerService),
			handler.NewProductHandler(productService),
			handler.NewOrderHandler(orderService, deliveryService),
			handler.NewPaymentHandler(paymentService),
			handler.NewDeliveryHandler(deliveryService),
			handler.NewRegisterHandler(registerService),
			handler.NewReportHandler(statementService, cfg.Ledger.StatementMaxRangeDays),
		).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

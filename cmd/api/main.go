package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ryucoder/crown-backend/internal/config"
	"github.com/ryucoder/crown-backend/internal/email"
	authHandler "github.com/ryucoder/crown-backend/internal/handler/auth"
	businessHandler "github.com/ryucoder/crown-backend/internal/handler/business"
	directoryHandler "github.com/ryucoder/crown-backend/internal/handler/directory"
	"github.com/ryucoder/crown-backend/internal/handler/health"
	orderHandler "github.com/ryucoder/crown-backend/internal/handler/order"
	userHandler "github.com/ryucoder/crown-backend/internal/handler/user"
	"github.com/ryucoder/crown-backend/internal/middleware"
	"github.com/ryucoder/crown-backend/internal/repository/postgres"
	"github.com/ryucoder/crown-backend/internal/router"
	authService "github.com/ryucoder/crown-backend/internal/service/auth"
	businessService "github.com/ryucoder/crown-backend/internal/service/business"
	directoryService "github.com/ryucoder/crown-backend/internal/service/directory"
	notificationService "github.com/ryucoder/crown-backend/internal/service/notification"
	orderService "github.com/ryucoder/crown-backend/internal/service/order"
	"github.com/ryucoder/crown-backend/pkg/auth"
	"github.com/ryucoder/crown-backend/pkg/logger"
	"github.com/ryucoder/crown-backend/pkg/messaging/redis"
	"github.com/ryucoder/crown-backend/pkg/metrics"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	businessRepo := postgres.NewBusinessRepository(base)
	connectRepo := postgres.NewConnectRepository(base)
	addressRepo := postgres.NewAddressRepository(base)
	accountRepo := postgres.NewAccountRepository(base)
	contactRepo := postgres.NewContactRepository(base)
	orderRepo := postgres.NewOrderRepository(base)
	tokenRepo := postgres.NewTokenRepository(base)
	directoryRepo := postgres.NewDirectoryRepository(base)

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, log.Zerolog())
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	appMetrics := metrics.NewMetrics("crown")
	emailSvc := email.NewSMTPService(cfg.SMTP, cfg.App.DomainName)
	notifier := notificationService.NewService(emailSvc, broker, log, appMetrics)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})

	authSvc := authService.NewService(userRepo, businessRepo, tokenRepo, jwtSvc, notifier, log)
	businessSvc := businessService.NewService(
		businessRepo, connectRepo, addressRepo, accountRepo, contactRepo,
		notifier, log, cfg.App.DefaultOwnerPassword,
	)
	orderSvc := orderService.NewService(
		orderRepo, businessRepo, connectRepo, directoryRepo,
		notifier, log, appMetrics,
	)
	directorySvc := directoryService.NewService(directoryRepo)

	r := router.NewRouter(
		log.Zerolog(),
		jwtSvc,
		userRepo,
		businessRepo,
		authHandler.NewHandler(authSvc),
		userHandler.NewHandler(authSvc),
		businessHandler.NewHandler(businessSvc),
		orderHandler.NewHandler(orderSvc),
		directoryHandler.NewHandler(directorySvc),
		health.NewHandler(db),
		router.Config{
			RateLimitRPS:   cfg.Server.RateLimitRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
			RequestTimeout: cfg.Server.RequestTimeout,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "crown_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
}

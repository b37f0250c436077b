package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ErlanBelekov/mobile-signup/config"
	"github.com/ErlanBelekov/mobile-signup/internal/cache"
	"github.com/ErlanBelekov/mobile-signup/internal/dispatch"
	"github.com/ErlanBelekov/mobile-signup/internal/health"
	"github.com/ErlanBelekov/mobile-signup/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/mobile-signup/internal/log"
	"github.com/ErlanBelekov/mobile-signup/internal/metrics"
	"github.com/ErlanBelekov/mobile-signup/internal/sms"
	"github.com/ErlanBelekov/mobile-signup/internal/token"
	httptransport "github.com/ErlanBelekov/mobile-signup/internal/transport/http"
	"github.com/ErlanBelekov/mobile-signup/internal/transport/http/handler"
	"github.com/ErlanBelekov/mobile-signup/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	metrics.Register()

	// OTP cache
	store := cache.Open(ctx, cache.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}
	metrics.CacheBackend.WithLabelValues(store.Name()).Set(1)

	// SMS
	sender, err := sms.NewSender(ctx, cfg.SMS, logger)
	if err != nil {
		stop()
		log.Fatalf("sms: %v", err)
	}
	if cfg.SMS.MockMode {
		logger.Warn("MOCK_SMS_MODE is on, verification codes are logged instead of sent")
	}
	queue := dispatch.NewQueue(sender, logger, cfg.SMS.Workers, cfg.SMS.QueueSize, cfg.SMS.SendTimeout())
	queueCtx, stopQueue := context.WithCancel(context.Background())
	queueDone := make(chan struct{})
	go func() {
		defer close(queueDone)
		queue.Start(queueCtx)
	}()

	// Registration
	userRepo := postgres.NewUserRepository(pool)
	registration := usecase.NewRegistrationUsecase(userRepo, store, logger, usecase.WithOTPTTL(cfg.OTPTTL()))

	var issuer *token.Issuer
	var signupHandler *handler.SignupHandler
	if cfg.JWTSecret != "" {
		issuer = token.NewIssuer([]byte(cfg.JWTSecret))
		signupHandler = handler.NewSignupHandler(registration, queue, issuer, logger)
	} else {
		signupHandler = handler.NewSignupHandler(registration, queue, nil, logger)
	}

	checker := health.NewChecker(map[string]health.Pinger{
		"postgres": pool,
		"cache":    store,
	}, logger, prometheus.DefaultRegisterer)

	router := httptransport.NewRouter(logger,
		handler.NewHealthHandler(checker),
		signupHandler,
		handler.NewUserHandler(registration, logger),
		issuer,
	)

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           withCORS(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":" + cfg.MetricsPort)

	go func() {
		logger.Info("server started", "project", cfg.ProjectName, "port", cfg.Port, "cache", store.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}

	// No new jobs can arrive once the HTTP server is down.
	stopQueue()
	select {
	case <-queueDone:
	case <-shutdownCtx.Done():
		logger.Warn("sms queue did not drain before shutdown deadline")
	}

	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

// withCORS allows any origin, including credentialed requests.
func withCORS(h http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})(h)
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}

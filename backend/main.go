package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/config"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/handlers"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/logging"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/metrics"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/ratelimit"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/repositories"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_LOAD_FAILED, Description: %v", err)
	}

	logging.InitLogger(logging.Options{
		SystemName: "mesatech-api",
		File:       cfg.LogFile,
		Level:      cfg.LogLevel,
		Console:    true,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New("mesatech", reg)

	store, err := openStore(cfg, appMetrics)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DATABASE_CONNECTION_FAILED, Description: %v", err)
	}

	var limiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		redisLimiter, err := ratelimit.NewRedisLimiter(cfg.RedisURL)
		if err != nil {
			logging.Logger.Warnf("Event ID: RATE_LIMIT_DISABLED, Description: %v", err)
		} else {
			defer redisLimiter.Close()
			limiter = redisLimiter
		}
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Store:           store,
		Tokens:          utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpire),
		AuthRequired:    cfg.AuthRequired,
		Metrics:         appMetrics,
		Limiter:         limiter,
		RateLimit:       cfg.RateLimit,
		RateLimitWindow: cfg.RateLimitWindow,
		CORSOrigins:     cfg.CORSOrigins,
		RequestTimeout:  cfg.RequestTimeout,
		LogRequests:     cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_STARTED, Description: MesaTech API listening on port %s (%s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatalf("Event ID: SERVER_START_FAILED, Description: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("Event ID: SERVER_SHUTDOWN, Description: Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_FAILED, Description: Server forced to shutdown: %v", err)
	}
	if err := store.Close(ctx); err != nil {
		logging.Logger.Errorf("Event ID: DATABASE_CLOSE_FAILED, Description: %v", err)
	}
	logging.Logger.Info("Event ID: SERVER_STOPPED, Description: Server exited")
}

func openStore(cfg *config.Config, m *metrics.Metrics) (*repositories.Store, error) {
	if cfg.Store == config.StoreMemory {
		logging.Logger.Warn("Event ID: MEMORY_STORE, Description: Using the in-memory store; data is lost on restart")
		return repositories.NewMemoryStore(), nil
	}

	cb := repositories.NewBreaker(repositories.BreakerSettings{
		Name:          "mongodb",
		MaxFailures:   cfg.BreakerMaxFailures,
		Timeout:       cfg.BreakerTimeout,
		OnStateChange: m.SetBreakerState,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return repositories.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDBName, cb)
}

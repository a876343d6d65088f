package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"hampuff/internal/audit"
	"hampuff/internal/command"
	"hampuff/internal/platform/config"
	"hampuff/internal/platform/httpserver"
	"hampuff/internal/platform/logger"
	"hampuff/internal/platform/metrics"
	platformredis "hampuff/internal/platform/redis"
	"hampuff/internal/propagation"
	"hampuff/internal/ratelimit"
	ratelimitstore "hampuff/internal/ratelimit/store"
	"hampuff/internal/registration"
	regsvc "hampuff/internal/registration/service"
	regstore "hampuff/internal/registration/store"
	"hampuff/internal/service"
	"hampuff/internal/transport/api"
	"hampuff/internal/transport/sms"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx := context.Background()

	// Audit trail: in-memory tail always, Kafka when brokers are set.
	auditOpts := []audit.Option{audit.WithLogger(log)}
	if cfg.KafkaBrokers != "" {
		kafkaClient, err := kgo.NewClient(
			kgo.SeedBrokers(strings.Split(cfg.KafkaBrokers, ",")...),
		)
		if err != nil {
			log.Error("kafka client init failed", "error", err)
			os.Exit(1)
		}
		auditOpts = append(auditOpts, audit.WithKafka(kafkaClient, "hampuff.audit"))
	}
	auditor := audit.NewPublisher(auditOpts...)
	defer auditor.Close(ctx)

	// Registration store: Postgres when configured, otherwise in-memory.
	var store registration.Store
	if cfg.PostgresURL != "" {
		pg, err := regstore.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres init failed", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
		log.Info("using postgres registration store")
	} else {
		store = regstore.NewMemoryStore()
		log.Warn("using in-memory registration store; registrations will not survive restarts")
	}
	registrations := regsvc.New(store, log, m, auditor)

	// Rate limit counters: Redis when configured, otherwise in-memory.
	var counters ratelimit.CounterStore
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		counters = ratelimitstore.NewRedisCounterStore(redisClient.Client)
		log.Info("using redis rate limit store")
	} else {
		counters = ratelimitstore.NewMemoryCounterStore()
	}
	limiter := ratelimit.NewService(counters, log, ratelimit.WithMetrics(m))

	source := propagation.NewClient(log, propagation.WithMetrics(m))

	core := service.New(registrations, source, limiter, command.NewParser(), service.Messages{
		RegistrationURL: cfg.RegistrationURL,
		Consent:         cfg.ConsentMessage,
		Redirect:        cfg.RedirectMessage,
		WrongNumber:     cfg.WrongNumberMessage,
	}, log, m)

	handler := api.NewHandler(core, registrations, auditor, log)
	smsHandler := sms.NewHandler(core, log)
	router := api.NewRouter(handler, smsHandler, ratelimit.NewMiddleware(limiter, log), log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting hampuff-sms", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

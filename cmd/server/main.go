package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	attendancehandler "gatherly/internal/attendance/handler"
	attendancemetrics "gatherly/internal/attendance/metrics"
	attendanceservice "gatherly/internal/attendance/service"
	eventhandler "gatherly/internal/event/handler"
	eventservice "gatherly/internal/event/service"
	eventstore "gatherly/internal/event/store"
	httpapi "gatherly/internal/http"
	memberstore "gatherly/internal/member/store"
	"gatherly/internal/notify"
	"gatherly/internal/platform/config"
	"gatherly/internal/platform/httpserver"
	"gatherly/internal/platform/logger"
	"gatherly/internal/platform/metrics"
	"gatherly/internal/platform/middleware"
	"gatherly/internal/platform/postgres"
	platformredis "gatherly/internal/platform/redis"
	registrationhandler "gatherly/internal/registration/handler"
	registrationmetrics "gatherly/internal/registration/metrics"
	registrationservice "gatherly/internal/registration/service"
	registrationstore "gatherly/internal/registration/store"
	"gatherly/pkg/platform/tx"
)

// main wires storage, messaging, services, and the HTTP surface. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	var (
		regEvents     registrationservice.EventStore
		attEvents     attendanceservice.EventStore
		evtStore      eventservice.Store
		members       registrationservice.MemberStore
		registrations registrationservice.RegistrationStore
		attRegs       attendanceservice.RegistrationStore
		runner        tx.Runner = tx.NewNoop()
	)

	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		es := eventstore.NewPostgres(db)
		rs := registrationstore.NewPostgres(db)
		regEvents, attEvents, evtStore = es, es, es
		members = memberstore.NewPostgres(db)
		registrations, attRegs = rs, rs
		runner = tx.NewSQL(db)
		log.Info("using postgres storage")
	} else {
		es := eventstore.NewInMemory()
		rs := registrationstore.NewInMemory()
		regEvents, attEvents, evtStore = es, es, es
		members = memberstore.NewInMemory()
		registrations, attRegs = rs, rs
		log.Warn("no postgres DSN configured, using in-memory storage")
	}

	var notifier registrationservice.Notifier = notify.NewLogDispatcher(log)
	if cfg.KafkaBroker != "" {
		kafkaDispatcher := notify.NewKafkaDispatcher(cfg.KafkaBroker, cfg.KafkaTopic)
		defer kafkaDispatcher.Close()
		notifier = kafkaDispatcher
		log.Info("dispatching registration outcomes to kafka", "topic", cfg.KafkaTopic)
	}

	var publisher attendanceservice.SnapshotPublisher = notify.NewLogSnapshotPublisher(log)
	redisClient, err := platformredis.New(cfg.Redis())
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		publisher = notify.NewRedisSnapshotPublisher(redisClient)
		log.Info("publishing occupancy snapshots to redis", "channel", notify.SnapshotChannel)
	}

	m := metrics.New()

	registrationSvc := registrationservice.New(regEvents, members, registrations,
		registrationservice.WithLogger(log),
		registrationservice.WithMetrics(registrationmetrics.New()),
		registrationservice.WithNotifier(notifier),
		registrationservice.WithTxRunner(runner),
	)
	attendanceSvc := attendanceservice.New(attEvents, members, attRegs,
		attendanceservice.WithLogger(log),
		attendanceservice.WithMetrics(attendancemetrics.New()),
		attendanceservice.WithPublisher(publisher),
	)
	eventSvc := eventservice.New(evtStore, eventservice.WithLogger(log))

	router := httpapi.NewRouter(httpapi.Deps{
		Events:         eventhandler.New(eventSvc, log),
		Registrations:  registrationhandler.New(registrationSvc, log),
		Attendance:     attendancehandler.New(attendanceSvc, log),
		Sessions:       middleware.NewJWTSessionValidator(cfg.JWTSigningKey),
		Logger:         log,
		Metrics:        m,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting gatherly", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

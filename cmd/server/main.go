package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotdesk/internal/config"
	"github.com/iliyamo/hotdesk/internal/database"
	"github.com/iliyamo/hotdesk/internal/handler"
	"github.com/iliyamo/hotdesk/internal/metrics"
	"github.com/iliyamo/hotdesk/internal/middleware"
	"github.com/iliyamo/hotdesk/internal/queue"
	"github.com/iliyamo/hotdesk/internal/repository"
	"github.com/iliyamo/hotdesk/internal/router"
	"github.com/iliyamo/hotdesk/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("load config")
	}
	log := config.NewLogger(cfg.Env, cfg.LogLevel)
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		desks    service.DeskRepository
		bookings service.BookingRepository
		events   queue.EventStore
		ready    = &handler.ReadyHandler{}
	)
	switch cfg.Store {
	case config.StoreMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatal().Err(err).Msg("open database")
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migrate schema")
		}
		desks = repository.NewDeskRepo(db)
		bookings = repository.NewBookingRepo(db)
		events = repository.NewBookingEventRepo(db)
		ready.DB = db
	case config.StoreMemory:
		store := repository.NewMemoryStore()
		desks, bookings, events = store.Desks(), store.Bookings(), store.Events()
		log.Warn().Msg("using in-memory store; data is lost on exit")
	}

	svc := service.NewBookingService(desks, bookings, log)

	if cfg.DesksFile != "" {
		inv, err := config.LoadDesksConfig(cfg.DesksFile)
		if err != nil {
			log.Fatal().Err(err).Msg("load desk inventory")
		}
		if _, err := svc.SeedDesks(ctx, inv.Names()); err != nil {
			log.Fatal().Err(err).Msg("seed desks")
		}
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
		ready.Redis = rdb
	} else {
		log.Info().Msg("redis unavailable; using in-process rate limiting without response cache")
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, log)
	svc.Cache = cache

	if cfg.AMQPURL != "" {
		svc.Publisher = queue.NewPublisher(cfg.AMQPURL, log)
		if cfg.Consumer {
			go func() {
				if err := queue.StartBookingConsumer(ctx, cfg.AMQPURL, events, log); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("booking consumer stopped")
				}
			}()
		}
	}

	e := router.New(log)
	router.RegisterRoutes(e, ready)
	router.RegisterAPI(e, router.API{
		Desks:     &handler.DeskHandler{Service: svc, Log: log},
		Bookings:  &handler.BookingHandler{Service: svc, Log: log},
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Cache:     cache,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.Store).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("stopped")
}

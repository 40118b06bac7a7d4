package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/logging"
	"github.com/iliyamo/hotel-reservation/internal/notify"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/router"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.IsProd())

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	defer db.Close()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	var cacheStore repository.ByteStore
	if rdb != nil {
		defer rdb.Close()
		cacheStore = repository.NewRedisStore(rdb)
	} else {
		log.Warn("redis unavailable: category cache and rate limiting disabled")
	}

	clients := repository.NewClientRepo(db)
	svc := booking.NewService(booking.Deps{
		Categories:   repository.NewCachedCategories(repository.NewCategoryRepo(db), cacheStore, config.LoadCategoryCacheConfig()),
		Rooms:        repository.NewRoomRepo(db),
		Catalog:      repository.NewServiceCatalogRepo(db),
		Clients:      clients,
		Reservations: repository.NewReservationRepo(db),
		UnitOfWork:   database.NewUnitOfWork(db),
		Notifier:     notify.NewPublisher(cfg.RabbitURL, cfg.NotifyQueue),
		Auditor:      logging.NewAuditor(log),
	}, booking.Options{
		ObservationMaxLen: cfg.ObservationMaxLen,
		StoreTimeout:      cfg.StoreTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.ConsumerEnabled {
		go runConsumer(ctx, cfg, clients, log)
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, router.Deps{
		Reservations: handler.NewReservationHandler(svc),
		DB:           db,
		Log:          log,
		Redis:        rdb,
		RateLimit:    config.LoadRateLimitConfig(),
		JWTSecret:    cfg.JWTSecret,
	})
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set: /v1 routes are unauthenticated")
	}

	go func() {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}

// runConsumer drains the notification queue until ctx is cancelled.  Mail
// is sent only when SMTP is configured.
func runConsumer(ctx context.Context, cfg config.Config, contacts queue.ContactLookup, log *logrus.Logger) {
	c := &queue.Consumer{
		URL:        cfg.RabbitURL,
		Queue:      cfg.NotifyQueue,
		LogPath:    cfg.NotificationLog,
		MaxBackoff: cfg.ReconnectMax,
		Contacts:   contacts,
		Log:        log,
	}
	if smtp := config.LoadSMTPConfig(); smtp.Enabled() {
		c.Mailer = notify.NewMailer(smtp)
	}
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("notification consumer stopped")
	}
}

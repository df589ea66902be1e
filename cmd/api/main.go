package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/servicehub/booking-api/internal/config"
	"github.com/servicehub/booking-api/internal/domain/booking"
	"github.com/servicehub/booking-api/internal/domain/currency"
	"github.com/servicehub/booking-api/internal/domain/notification"
	"github.com/servicehub/booking-api/internal/domain/profile"
	"github.com/servicehub/booking-api/internal/middleware"
	"github.com/servicehub/booking-api/internal/pkg/database"
	"github.com/servicehub/booking-api/internal/pkg/jwt"
	"github.com/servicehub/booking-api/internal/pkg/lock"
	"github.com/servicehub/booking-api/internal/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting ServiceHub booking API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if cfg.RunMigrations {
		if err := database.RunMigrations(db, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Currency ----------
	catalog := currency.NewCatalog(currency.NewRepository(db))
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	if err := catalog.Load(loadCtx); err != nil {
		cancelLoad()
		log.Fatal().Err(err).Msg("Failed to load currency catalog")
	}
	cancelLoad()
	normalizer := currency.NewNormalizer(catalog)

	// ---------- Booking ----------
	locker, dispatcher := coordination(redisClient, cfg)
	bookingService := booking.NewService(
		booking.NewRepository(db, cfg.BookingLockWait),
		booking.NewEngine(),
		locker,
		dispatcher,
		profile.NewRepository(db),
		normalizer,
		booking.Assets{
			BaseURL:                 cfg.AssetsBaseURL,
			DefaultAvatarPath:       cfg.DefaultAvatarPath,
			DefaultServiceImagePath: cfg.DefaultServiceImagePath,
		},
	)

	transitionLimit, err := middleware.RateLimit(redisClient, "booking-transitions", cfg.TransitionRateLimit)
	if err != nil {
		log.Fatal().Err(err).Str("rate", cfg.TransitionRateLimit).Msg("Invalid transition rate limit")
	}

	router := newRouter(cfg, jwtService, handlers{
		bookings:   booking.NewHandler(bookingService, profile.NewCurrencySettings(db, cfg.DefaultCurrency)),
		currencies: currency.NewHandler(catalog, normalizer),
	}, transitionLimit)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// coordination picks the lock and event backends. Without Redis the
// conditional update in the repository is the only guard against races.
func coordination(client *redis.Client, cfg *config.Config) (lock.Locker, booking.Dispatcher) {
	if client == nil {
		log.Warn().Msg("Booking locks disabled, events are logged only")
		return lock.Noop{}, notification.LogDispatcher{}
	}
	return lock.NewRedisLocker(client, cfg.BookingLockTTL, cfg.BookingLockWait),
		notification.NewRedisDispatcher(client)
}

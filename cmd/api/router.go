package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/servicehub/booking-api/internal/config"
	"github.com/servicehub/booking-api/internal/domain/booking"
	"github.com/servicehub/booking-api/internal/domain/currency"
	"github.com/servicehub/booking-api/internal/middleware"
	"github.com/servicehub/booking-api/internal/pkg/jwt"
	"github.com/servicehub/booking-api/internal/pkg/response"
)

type handlers struct {
	bookings   *booking.Handler
	currencies *currency.Handler
}

func newRouter(cfg *config.Config, jwtService *jwt.Service, h handlers, transitionLimit func(http.Handler) http.Handler) http.Handler {
	authMiddleware := middleware.Auth(jwtService)
	optionalAuth := middleware.OptionalAuth(jwtService)

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/bookings", h.bookings.BookingRoutes(authMiddleware, transitionLimit))
		r.Mount("/providers", h.bookings.ProviderRoutes(optionalAuth))
		r.Mount("/currencies", h.currencies.Routes())
	})

	return r
}

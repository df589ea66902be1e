package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/servicehub/booking-api/internal/domain/profile"
	"github.com/servicehub/booking-api/internal/middleware"
)

// BookingRoutes returns the /bookings router.
func (h *Handler) BookingRoutes(auth, transitionLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/statuses", h.Statuses)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Use(middleware.RequireRole(profile.RoleProvider.String(), profile.RoleUser.String()))
		r.Use(transitionLimit)
		r.Post("/{id}/transitions", h.Transition)
	})

	return r
}

// ProviderRoutes returns the /providers router.
func (h *Handler) ProviderRoutes(optionalAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(optionalAuth).Get("/{id}/bookings", h.ListProviderBookings)
	return r
}

package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"quicket/internal/auth"
)

// Deps bundles everything the router mounts. Redis is optional; without
// it the response cache and the daily quota are simply not installed.
type Deps struct {
	Tokens        *auth.TokenManager
	Redis         *redis.Client
	Auth          *AuthHandler
	Events        *EventHandler
	Venues        *VenueHandler
	Bookings      *BookingHandler
	Notifications *NotificationHandler
	Admin         *AdminHandler
}

// NewRouter builds the full route tree: public reads behind the response
// cache, credential endpoints behind a tight per-IP limiter, everything
// else behind token auth, and the admin surface behind the role gate.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(CORS)

	global := NewRateLimiter(LimiterConfig{RPS: 20, Burst: 40, IdleTTL: 3 * time.Minute})
	r.Use(global.Middleware(ClientIP))

	r.Get("/health", HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Credential endpoints get a much tighter per-IP limit.
		credentials := NewRateLimiter(LimiterConfig{RPS: 2, Burst: 5, IdleTTL: 3 * time.Minute})
		r.Group(func(r chi.Router) {
			r.Use(credentials.Middleware(ClientIP))
			r.Post("/register", deps.Auth.Register)
			r.Post("/login", deps.Auth.Login)
		})

		// Public reads, cached when redis is configured.
		r.Group(func(r chi.Router) {
			if deps.Redis != nil {
				r.Use(ResponseCache(deps.Redis, 30*time.Second))
			}
			r.Get("/events", deps.Events.List)
			r.Get("/events/{id}", deps.Events.Get)
			r.Get("/events/{id}/available-seats", deps.Events.AvailableSeats)
			r.Get("/venues", deps.Venues.List)
			r.Get("/venues/{id}", deps.Venues.Get)
		})

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(Authenticate(deps.Tokens))
			if deps.Redis != nil {
				r.Use(Quota(deps.Redis, QuotaRule{Limit: 1000, Window: 24 * time.Hour}))
			}

			r.Post("/bookings", deps.Bookings.Create)
			r.Put("/bookings/{id}/cancel", deps.Bookings.Cancel)
			r.Get("/users/{id}/bookings", deps.Bookings.ListForUser)

			r.Get("/users/{id}/notifications", deps.Notifications.List)
			r.Get("/users/{id}/notifications/unread-count", deps.Notifications.UnreadCount)
			r.Patch("/users/{id}/notifications/mark-all-read", deps.Notifications.MarkAllRead)
			r.Patch("/notifications/{id}/read", deps.Notifications.MarkRead)
			r.Delete("/notifications/{id}", deps.Notifications.Delete)

			// Admin surface.
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)

				r.Post("/events", deps.Events.Create)
				r.Put("/events/{id}", deps.Events.Update)
				r.Delete("/events/{id}", deps.Events.Delete)

				r.Post("/venues", deps.Venues.Create)
				r.Put("/venues/{id}", deps.Venues.Update)
				r.Delete("/venues/{id}", deps.Venues.Delete)

				r.Get("/admin/stats/bookings", deps.Admin.BookingStats)
				r.Get("/admin/stats/events", deps.Admin.EventStats)
				r.Get("/admin/stats/users", deps.Admin.UserStats)
				r.Get("/admin/users", deps.Admin.ListUsers)
				r.Put("/admin/users/{id}/role", deps.Admin.UpdateUserRole)
			})
		})
	})

	return r
}

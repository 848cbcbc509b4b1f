// Package rest serves the agenda and user APIs over HTTP with JSON bodies.
package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"interviewcal/internal/domain"
	"interviewcal/internal/service/agendas"
	"interviewcal/internal/service/users"
	"interviewcal/internal/store"
)

type AgendaService interface {
	Publish(ctx context.Context, ownerID uuid.UUID, periods []domain.AvailabilityPeriod) ([]domain.Slot, error)
	Search(ctx context.Context, in agendas.SearchInput) (domain.Page[domain.Slot], error)
}

type UserService interface {
	Create(ctx context.Context, in users.CreateInput) (domain.User, error)
	List(ctx context.Context, userType string, page domain.PageRequest) (domain.Page[domain.User], error)
}

type RouterConfig struct {
	Agendas AgendaService
	Users   UserService
	// Health is pinged by /healthz. Nil reports healthy.
	Health      store.Pinger
	Metrics     http.Handler
	RateLimiter *RateLimiter
	Log         *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "http"))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewRecoveryMiddleware(log))
	r.Use(NewLoggingMiddleware(log))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", healthHandler(cfg.Health, log))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}
		if cfg.Agendas != nil {
			h := &agendaHandler{svc: cfg.Agendas, log: log.With(slog.String("handler", "agendas"))}
			r.Route("/agendas", func(r chi.Router) {
				r.Post("/", h.publish)
				r.Get("/search", h.search)
			})
		}
		if cfg.Users != nil {
			h := &userHandler{svc: cfg.Users, log: log.With(slog.String("handler", "users"))}
			r.Route("/users", func(r chi.Router) {
				r.Post("/", h.create)
				r.Get("/", h.list)
			})
		}
	})

	return r
}

func healthHandler(p store.Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				log.Warn("health check failed", slog.Any("err", err))
				writeError(w, http.StatusServiceUnavailable, "store unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

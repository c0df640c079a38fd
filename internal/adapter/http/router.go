// Package http exposes the ledger over HTTP/JSON.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures the middleware around the ledger routes
type RouterOptions struct {
	APIToken       string
	AllowedOrigins []string
	Limiter        Limiter // Optional; nil disables rate limiting
	Logger         *slog.Logger
}

// NewRouter creates the chi router with every ledger route registered
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(PeerAddr)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(TokenAuth(opts.APIToken))

		r.Get("/user/{id}", h.GetAccount)
		r.Get("/user/{id}/tasks", h.ListTasks)
		r.Get("/user/{id}/withdrawals", h.ListCheckouts)

		r.Group(func(r chi.Router) {
			r.Use(RateLimit(opts.Limiter, "ledger_write", opts.Logger))

			r.Post("/users", h.CreateAccount)
			r.Post("/tasks", h.CreateTask)
			r.Post("/task/status", h.SetTaskStatus)
			r.Post("/checkout_requests", h.CreateCheckoutRequest)
			r.Post("/checkout_request/{id}/approve", h.ApproveCheckoutRequest)
			r.Post("/checkout_request/{id}/reject", h.RejectCheckoutRequest)
		})
	})

	return r
}

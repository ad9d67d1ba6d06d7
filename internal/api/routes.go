package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP routing table.
// The prediction endpoint requires the x-api-key header; the dashboard
// feed and probes are open.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", h.Root)
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)

	r.Group(func(r chi.Router) {
		r.Use(apiKeyMiddleware(h.APIKey))
		r.Post("/predict", h.Predict)
	})

	r.Get("/dashboard/data", h.DashboardData)
	r.Get("/predictions", h.Predictions)

	return r
}

// apiKeyMiddleware rejects requests whose x-api-key header does not
// match the configured key
func apiKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("x-api-key") != apiKey {
				writeJSON(w, http.StatusUnauthorized, errorResponse{
					Ok:      false,
					Message: "Unauthorized: Invalid API Key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

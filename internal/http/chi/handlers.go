package chi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/webhook-outbox/events"
	"github.com/marcelsud/webhook-outbox/webhook"
)

// Handlers sets up the webhook management API routes
func Handlers(ctx context.Context, service webhook.UseCase, dispatcher *webhook.Dispatcher, catalog *events.Catalog, metricsHandler http.Handler) *chi.Mux {
	logger := httplog.NewLogger("webhook-api", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	// Management API routes; the upstream gateway authenticates and sets
	// the caller headers
	r.Route("/v1", func(r chi.Router) {
		r.Use(callerContext)

		r.Get("/event-types", getEventTypes(catalog).ServeHTTP)

		// Internal dispatch trigger for sibling services
		r.Post("/events", postEvent(dispatcher, catalog).ServeHTTP)

		r.Route("/webhooks", func(r chi.Router) {
			r.Get("/", listEndpoints(service).ServeHTTP)
			r.Post("/", postEndpoint(service).ServeHTTP)
			r.Get("/{id}", getEndpoint(service).ServeHTTP)
			r.Put("/{id}", putEndpoint(service).ServeHTTP)
			r.Delete("/{id}", deleteEndpoint(service).ServeHTTP)
			r.Post("/{id}/rotate", rotateSecret(service).ServeHTTP)
			r.Post("/{id}/test", testEndpoint(service).ServeHTTP)
		})

		r.Route("/deliveries", func(r chi.Router) {
			r.Get("/", listDeliveries(service).ServeHTTP)
			r.Get("/{id}", getDelivery(service).ServeHTTP)
			r.Post("/{id}/retry", retryDelivery(service).ServeHTTP)
		})
	})

	return r
}

type contextKey string

const callerKey contextKey = "caller"

/* callerContext extracts the caller identity resolved upstream
 * X-Org-Id carries the tenant, X-Org-Role the caller's role; only the
 * "admin" role may manage webhooks
 */
func callerContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID := r.Header.Get("X-Org-Id")
		if orgID == "" {
			http.Error(w, "missing org", http.StatusUnauthorized)
			return
		}

		caller := webhook.Caller{
			OrgID:        orgID,
			WebhookAdmin: r.Header.Get("X-Org-Role") == "admin",
		}

		ctx := context.WithValue(r.Context(), callerKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerFrom(r *http.Request) webhook.Caller {
	caller, _ := r.Context().Value(callerKey).(webhook.Caller)
	return caller
}

// writeError maps the domain error taxonomy to client-error semantics
func writeError(w http.ResponseWriter, err error) {
	switch {
	case webhook.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, webhook.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, webhook.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

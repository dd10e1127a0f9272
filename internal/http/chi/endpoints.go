package chi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/webhook-outbox/webhook"
)

/* HTTP layer DTOs for the endpoint API
 * Separate from domain entities to avoid leaking internal structure
 */

// endpointRequest represents the payload for creating an endpoint
type endpointRequest struct {
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Events      []string `json:"events"`
}

// endpointUpdateRequest represents a partial update; nil fields are untouched
type endpointUpdateRequest struct {
	URL         *string  `json:"url"`
	Description *string  `json:"description"`
	Events      []string `json:"events"`
	Enabled     *bool    `json:"enabled"`
}

// endpointResponse represents an endpoint in the API. The secret is the
// full credential only in create/rotate responses, masked everywhere else.
type endpointResponse struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Secret      string    `json:"secret"`
	Events      []string  `json:"events"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// testResponse carries the event id of a synthesized test.ping
type testResponse struct {
	EventID string `json:"event_id"`
}

func toEndpointResponse(e webhook.Endpoint) endpointResponse {
	return endpointResponse{
		ID:          e.ID,
		URL:         e.URL,
		Description: e.Description,
		Secret:      e.Secret,
		Events:      e.Events,
		Enabled:     e.Enabled,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// postEndpoint handles POST /v1/webhooks
func postEndpoint(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req endpointRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		endpoint, err := service.CreateEndpoint(r.Context(), callerFrom(r), webhook.CreateEndpointInput{
			URL:         req.URL,
			Description: req.Description,
			Events:      req.Events,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(toEndpointResponse(endpoint)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// listEndpoints handles GET /v1/webhooks
func listEndpoints(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoints, err := service.ListEndpoints(r.Context(), callerFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}

		result := make([]endpointResponse, 0, len(endpoints))
		for _, e := range endpoints {
			result = append(result, toEndpointResponse(e))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// getEndpoint handles GET /v1/webhooks/{id}
func getEndpoint(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint, err := service.GetEndpoint(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toEndpointResponse(endpoint)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// putEndpoint handles PUT /v1/webhooks/{id}
func putEndpoint(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req endpointUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		endpoint, err := service.UpdateEndpoint(r.Context(), callerFrom(r), chi.URLParam(r, "id"), webhook.UpdateEndpointInput{
			URL:         req.URL,
			Description: req.Description,
			Events:      req.Events,
			Enabled:     req.Enabled,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toEndpointResponse(endpoint)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// deleteEndpoint handles DELETE /v1/webhooks/{id}
func deleteEndpoint(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := service.DeleteEndpoint(r.Context(), callerFrom(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

// rotateSecret handles POST /v1/webhooks/{id}/rotate
func rotateSecret(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint, err := service.RotateSecret(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toEndpointResponse(endpoint)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// testEndpoint handles POST /v1/webhooks/{id}/test
func testEndpoint(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eventID, err := service.TestEndpoint(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(testResponse{EventID: eventID}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

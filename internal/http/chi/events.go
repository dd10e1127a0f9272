package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/marcelsud/webhook-outbox/events"
	"github.com/marcelsud/webhook-outbox/webhook"
)

// eventRequest represents an internal dispatch trigger
type eventRequest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// eventResponse acknowledges an accepted dispatch
type eventResponse struct {
	Accepted bool `json:"accepted"`
}

/* postEvent handles POST /v1/events
 * Dispatch is fire-and-forget: the event is accepted as long as it is
 * well-formed; fan-out failures are logged, never surfaced here
 */
func postEvent(dispatcher *webhook.Dispatcher, catalog *events.Catalog) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req eventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if !catalog.Has(req.Type) {
			http.Error(w, fmt.Sprintf("unknown event type: %s", req.Type), http.StatusBadRequest)
			return
		}

		if len(req.Data) == 0 {
			http.Error(w, "data is required", http.StatusBadRequest)
			return
		}

		dispatcher.Dispatch(r.Context(), callerFrom(r).OrgID, req.Type, req.Data)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(eventResponse{Accepted: true}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// getEventTypes handles GET /v1/event-types
func getEventTypes(catalog *events.Catalog) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(catalog.List()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

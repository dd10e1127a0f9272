package chi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/webhook-outbox/webhook"
)

// deliveryResponse represents a delivery record in the API
type deliveryResponse struct {
	ID              string            `json:"id"`
	EndpointID      string            `json:"endpoint_id"`
	EventID         string            `json:"event_id"`
	EventType       string            `json:"event_type"`
	Payload         json.RawMessage   `json:"payload"`
	AttemptNumber   int               `json:"attempt_number"`
	Status          string            `json:"status"`
	ResponseStatus  int               `json:"response_status,omitempty"`
	ResponseBody    string            `json:"response_body,omitempty"`
	ResponseHeaders map[string]string `json:"response_headers,omitempty"`
	Error           string            `json:"error,omitempty"`
	DeliveredAt     *time.Time        `json:"delivered_at,omitempty"`
	FailedAt        *time.Time        `json:"failed_at,omitempty"`
	NextRetryAt     *time.Time        `json:"next_retry_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

func toDeliveryResponse(d webhook.Delivery) deliveryResponse {
	return deliveryResponse{
		ID:              d.ID,
		EndpointID:      d.EndpointID,
		EventID:         d.EventID,
		EventType:       d.EventType,
		Payload:         json.RawMessage(d.Payload),
		AttemptNumber:   d.AttemptNumber,
		Status:          d.Status().String(),
		ResponseStatus:  d.ResponseStatus,
		ResponseBody:    d.ResponseBody,
		ResponseHeaders: d.ResponseHeaders,
		Error:           d.Error,
		DeliveredAt:     d.DeliveredAt,
		FailedAt:        d.FailedAt,
		NextRetryAt:     d.NextRetryAt,
		CreatedAt:       d.CreatedAt,
	}
}

// listDeliveries handles GET /v1/deliveries
func listDeliveries(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter := webhook.DeliveryFilter{
			EndpointID: r.URL.Query().Get("endpoint_id"),
		}

		if status := r.URL.Query().Get("status"); status != "" {
			filter.Status = webhook.NewStatus(status)
		}
		if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
			filter.Page = page
		}
		if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			filter.Limit = limit
		}

		deliveries, err := service.ListDeliveries(r.Context(), callerFrom(r), filter)
		if err != nil {
			writeError(w, err)
			return
		}

		result := make([]deliveryResponse, 0, len(deliveries))
		for _, d := range deliveries {
			result = append(result, toDeliveryResponse(d))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// getDelivery handles GET /v1/deliveries/{id}
func getDelivery(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivery, err := service.GetDelivery(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toDeliveryResponse(delivery)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// retryDelivery handles POST /v1/deliveries/{id}/retry
func retryDelivery(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivery, err := service.RetryDelivery(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(toDeliveryResponse(delivery)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

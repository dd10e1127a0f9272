package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-outbox/webhook/payload"
	"github.com/rs/zerolog"
)

/* Dispatcher turns a domain event into N endpoint-scoped deliveries
 * One ledger row and one queue job per subscribed, enabled endpoint, all
 * sharing a single event id
 */
type Dispatcher struct {
	Endpoints  EndpointReader
	Deliveries DeliveryWriter
	Queue      Queue
	Log        zerolog.Logger
}

// NewDispatcher creates a new event dispatcher with dependency injection
func NewDispatcher(endpoints EndpointReader, deliveries DeliveryWriter, queue Queue, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		Endpoints:  endpoints,
		Deliveries: deliveries,
		Queue:      queue,
		Log:        log,
	}
}

/* Dispatch fans an event out to the org's subscribed endpoints
 * It has no error return on purpose: dispatch must never be able to fail
 * the business operation that triggered it. Infrastructure failures are
 * logged and swallowed; a partial fan-out is accepted.
 */
func (d *Dispatcher) Dispatch(ctx context.Context, orgID, eventType string, data interface{}) {
	endpoints, err := d.Endpoints.FindSubscribed(ctx, orgID, eventType)
	if err != nil {
		d.Log.Error().Err(err).
			Str("org_id", orgID).
			Str("event_type", eventType).
			Msg("resolving subscribed endpoints")
		return
	}

	// No subscribers is a no-op, not an error
	if len(endpoints) == 0 {
		return
	}

	eventID, err := d.fanOut(ctx, orgID, eventType, data, endpoints)
	if err != nil {
		d.Log.Error().Err(err).
			Str("org_id", orgID).
			Str("event_type", eventType).
			Msg("dispatching event")
		return
	}

	d.Log.Info().
		Str("org_id", orgID).
		Str("event_type", eventType).
		Str("event_id", eventID).
		Int("endpoints", len(endpoints)).
		Msg("event dispatched")
}

/* fanOut creates one delivery row and one queue job per endpoint
 * The payload is built and serialized once; every delivery stores and ships
 * the exact same bytes. Writes per endpoint are independent: a failure on
 * one endpoint does not roll back the others.
 */
func (d *Dispatcher) fanOut(ctx context.Context, orgID, eventType string, data interface{}, endpoints []Endpoint) (string, error) {
	eventID := uuid.New().String()

	p, err := payload.New(eventID, eventType, orgID, data)
	if err != nil {
		return "", fmt.Errorf("building payload: %w", err)
	}

	payloadBytes, err := p.Bytes()
	if err != nil {
		return "", fmt.Errorf("serializing payload: %w", err)
	}

	now := time.Now().UTC()
	var firstErr error

	for _, endpoint := range endpoints {
		delivery := Delivery{
			ID:            uuid.New().String(),
			OrgID:         orgID,
			EndpointID:    endpoint.ID,
			EventID:       eventID,
			EventType:     eventType,
			Payload:       payloadBytes,
			AttemptNumber: 1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := d.Deliveries.StoreDelivery(ctx, delivery); err != nil {
			d.Log.Error().Err(err).
				Str("endpoint_id", endpoint.ID).
				Str("event_id", eventID).
				Msg("storing delivery")
			if firstErr == nil {
				firstErr = fmt.Errorf("storing delivery: %w", err)
			}
			continue
		}

		job := Job{
			DeliveryID:    delivery.ID,
			EndpointID:    endpoint.ID,
			OrgID:         orgID,
			URL:           endpoint.URL,
			EventID:       eventID,
			EventType:     eventType,
			Payload:       payloadBytes,
			AttemptNumber: 1,
		}

		if err := d.Queue.Enqueue(ctx, job); err != nil {
			d.Log.Error().Err(err).
				Str("delivery_id", delivery.ID).
				Str("event_id", eventID).
				Msg("enqueueing delivery job")
			if firstErr == nil {
				firstErr = fmt.Errorf("enqueueing job: %w", err)
			}
		}
	}

	return eventID, firstErr
}

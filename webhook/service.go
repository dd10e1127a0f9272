package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-outbox/events"
	"github.com/marcelsud/webhook-outbox/webhook/signature"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the tenant-facing management operations for webhooks
type UseCase interface {
	CreateEndpoint(ctx context.Context, caller Caller, input CreateEndpointInput) (Endpoint, error)
	ListEndpoints(ctx context.Context, caller Caller) ([]Endpoint, error)
	GetEndpoint(ctx context.Context, caller Caller, id string) (Endpoint, error)
	UpdateEndpoint(ctx context.Context, caller Caller, id string, input UpdateEndpointInput) (Endpoint, error)
	DeleteEndpoint(ctx context.Context, caller Caller, id string) error
	RotateSecret(ctx context.Context, caller Caller, id string) (Endpoint, error)
	TestEndpoint(ctx context.Context, caller Caller, id string) (string, error)

	ListDeliveries(ctx context.Context, caller Caller, filter DeliveryFilter) ([]Delivery, error)
	GetDelivery(ctx context.Context, caller Caller, id string) (Delivery, error)
	RetryDelivery(ctx context.Context, caller Caller, id string) (Delivery, error)
}

// CreateEndpointInput carries the fields for a new endpoint
type CreateEndpointInput struct {
	URL         string
	Description string
	Events      []string
	CreatedBy   string
}

/* UpdateEndpointInput is a partial update: nil fields are left untouched */
type UpdateEndpointInput struct {
	URL         *string
	Description *string
	Events      []string
	Enabled     *bool
}

type Service struct {
	Repo         Repository
	Queue        Queue
	Catalog      *events.Catalog
	Dispatcher   *Dispatcher
	MaxEndpoints int
}

// NewService creates a new webhook management service with dependency injection
func NewService(repo Repository, queue Queue, catalog *events.Catalog, dispatcher *Dispatcher) *Service {
	return &Service{
		Repo:         repo,
		Queue:        queue,
		Catalog:      catalog,
		Dispatcher:   dispatcher,
		MaxEndpoints: MaxEndpointsPerOrg,
	}
}

// CreateEndpoint registers a new endpoint for the caller's org.
// The generated secret is returned in full exactly once, here.
func (s *Service) CreateEndpoint(ctx context.Context, caller Caller, input CreateEndpointInput) (Endpoint, error) {
	if err := caller.authorize(); err != nil {
		return Endpoint{}, err
	}

	if err := ValidateURL(input.URL); err != nil {
		return Endpoint{}, err
	}

	if err := s.Catalog.ValidateSubscription(input.Events); err != nil {
		return Endpoint{}, NewValidationError(err.Error())
	}

	count, err := s.Repo.CountEndpoints(ctx, caller.OrgID)
	if err != nil {
		return Endpoint{}, fmt.Errorf("counting endpoints: %w", err)
	}
	if count >= s.MaxEndpoints {
		return Endpoint{}, NewValidationError(fmt.Sprintf("endpoint limit reached (%d)", s.MaxEndpoints))
	}

	secret, err := signature.GenerateSecret()
	if err != nil {
		return Endpoint{}, fmt.Errorf("generating secret: %w", err)
	}

	now := time.Now().UTC()
	endpoint := Endpoint{
		ID:          uuid.New().String(),
		OrgID:       caller.OrgID,
		URL:         input.URL,
		Description: input.Description,
		Secret:      secret,
		Events:      input.Events,
		Enabled:     true,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Repo.StoreEndpoint(ctx, endpoint); err != nil {
		return Endpoint{}, fmt.Errorf("storing endpoint: %w", err)
	}

	return endpoint, nil
}

// ListEndpoints returns the org's endpoints with secrets masked
func (s *Service) ListEndpoints(ctx context.Context, caller Caller) ([]Endpoint, error) {
	if err := caller.authorize(); err != nil {
		return nil, err
	}

	endpoints, err := s.Repo.ListEndpoints(ctx, caller.OrgID)
	if err != nil {
		return nil, fmt.Errorf("listing endpoints: %w", err)
	}

	for i := range endpoints {
		endpoints[i].Secret = signature.Mask(endpoints[i].Secret)
	}

	return endpoints, nil
}

// GetEndpoint returns a single endpoint with the secret masked
func (s *Service) GetEndpoint(ctx context.Context, caller Caller, id string) (Endpoint, error) {
	if err := caller.authorize(); err != nil {
		return Endpoint{}, err
	}

	endpoint, err := s.Repo.GetEndpoint(ctx, caller.OrgID, id)
	if err != nil {
		return Endpoint{}, err
	}

	endpoint.Secret = signature.Mask(endpoint.Secret)
	return endpoint, nil
}

// UpdateEndpoint applies a partial update to url/description/events/enabled
func (s *Service) UpdateEndpoint(ctx context.Context, caller Caller, id string, input UpdateEndpointInput) (Endpoint, error) {
	if err := caller.authorize(); err != nil {
		return Endpoint{}, err
	}

	endpoint, err := s.Repo.GetEndpoint(ctx, caller.OrgID, id)
	if err != nil {
		return Endpoint{}, err
	}

	if input.URL != nil {
		if err := ValidateURL(*input.URL); err != nil {
			return Endpoint{}, err
		}
		endpoint.URL = *input.URL
	}
	if input.Description != nil {
		endpoint.Description = *input.Description
	}
	if input.Events != nil {
		if err := s.Catalog.ValidateSubscription(input.Events); err != nil {
			return Endpoint{}, NewValidationError(err.Error())
		}
		endpoint.Events = input.Events
	}
	if input.Enabled != nil {
		endpoint.Enabled = *input.Enabled
	}
	endpoint.UpdatedAt = time.Now().UTC()

	if err := s.Repo.UpdateEndpoint(ctx, endpoint); err != nil {
		return Endpoint{}, fmt.Errorf("updating endpoint: %w", err)
	}

	endpoint.Secret = signature.Mask(endpoint.Secret)
	return endpoint, nil
}

// DeleteEndpoint removes the endpoint; subsequent dispatches find no subscriber
func (s *Service) DeleteEndpoint(ctx context.Context, caller Caller, id string) error {
	if err := caller.authorize(); err != nil {
		return err
	}

	if _, err := s.Repo.GetEndpoint(ctx, caller.OrgID, id); err != nil {
		return err
	}

	if err := s.Repo.DeleteEndpoint(ctx, caller.OrgID, id); err != nil {
		return fmt.Errorf("deleting endpoint: %w", err)
	}

	return nil
}

// RotateSecret replaces the signing secret and returns the endpoint with
// the new secret visible once. The old secret stops verifying with the
// write; there is no grace window.
func (s *Service) RotateSecret(ctx context.Context, caller Caller, id string) (Endpoint, error) {
	if err := caller.authorize(); err != nil {
		return Endpoint{}, err
	}

	endpoint, err := s.Repo.GetEndpoint(ctx, caller.OrgID, id)
	if err != nil {
		return Endpoint{}, err
	}

	secret, err := signature.GenerateSecret()
	if err != nil {
		return Endpoint{}, fmt.Errorf("generating secret: %w", err)
	}

	endpoint.Secret = secret
	endpoint.UpdatedAt = time.Now().UTC()

	if err := s.Repo.UpdateEndpoint(ctx, endpoint); err != nil {
		return Endpoint{}, fmt.Errorf("rotating secret: %w", err)
	}

	return endpoint, nil
}

// TestEndpoint synthesizes a test.ping event and routes it through the
// same fan-out path as real events, targeted at this endpoint only.
// Returns the event id of the synthesized event.
func (s *Service) TestEndpoint(ctx context.Context, caller Caller, id string) (string, error) {
	if err := caller.authorize(); err != nil {
		return "", err
	}

	endpoint, err := s.Repo.GetEndpoint(ctx, caller.OrgID, id)
	if err != nil {
		return "", err
	}

	if !endpoint.Enabled {
		return "", NewValidationError(fmt.Sprintf("endpoint %s is disabled", id))
	}

	data := map[string]string{"message": "ping"}
	eventID, err := s.Dispatcher.fanOut(ctx, caller.OrgID, events.TestPing, data, []Endpoint{endpoint})
	if err != nil {
		return "", fmt.Errorf("dispatching test event: %w", err)
	}

	return eventID, nil
}

// ListDeliveries answers filtered, paginated queries over delivery history
func (s *Service) ListDeliveries(ctx context.Context, caller Caller, filter DeliveryFilter) ([]Delivery, error) {
	if err := caller.authorize(); err != nil {
		return nil, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	deliveries, err := s.Repo.ListDeliveries(ctx, caller.OrgID, filter)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}

	return deliveries, nil
}

// GetDelivery returns a single delivery record
func (s *Service) GetDelivery(ctx context.Context, caller Caller, id string) (Delivery, error) {
	if err := caller.authorize(); err != nil {
		return Delivery{}, err
	}

	return s.Repo.GetDelivery(ctx, caller.OrgID, id)
}

// RetryDelivery forces a new attempt for a terminal-failed delivery.
// The endpoint must still exist; deleted endpoints keep their history but
// it is no longer reachable for retry.
func (s *Service) RetryDelivery(ctx context.Context, caller Caller, id string) (Delivery, error) {
	if err := caller.authorize(); err != nil {
		return Delivery{}, err
	}

	delivery, err := s.Repo.GetDelivery(ctx, caller.OrgID, id)
	if err != nil {
		return Delivery{}, err
	}

	if err := delivery.ResetForRetry(time.Now().UTC()); err != nil {
		return Delivery{}, err
	}

	endpoint, err := s.Repo.GetEndpoint(ctx, caller.OrgID, delivery.EndpointID)
	if err != nil {
		return Delivery{}, err
	}

	reset, err := s.Repo.ResetDelivery(ctx, caller.OrgID, id)
	if err != nil {
		return Delivery{}, fmt.Errorf("resetting delivery: %w", err)
	}

	job := Job{
		DeliveryID:    reset.ID,
		EndpointID:    reset.EndpointID,
		OrgID:         reset.OrgID,
		URL:           endpoint.URL,
		EventID:       reset.EventID,
		EventType:     reset.EventType,
		Payload:       reset.Payload,
		AttemptNumber: reset.AttemptNumber,
	}

	if err := s.Queue.Enqueue(ctx, job); err != nil {
		return Delivery{}, fmt.Errorf("enqueueing retry: %w", err)
	}

	return reset, nil
}

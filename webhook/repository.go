package webhook

import (
	"context"
)

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 * Written for users of the API, not just for testing
 */

// EndpointReader provides read operations for endpoints
type EndpointReader interface {
	/* Context is always the first parameter in functions that do I/O
	 * This allows for cancellation, timeouts, and shared values
	 */
	GetEndpoint(ctx context.Context, orgID, id string) (Endpoint, error)
	ListEndpoints(ctx context.Context, orgID string) ([]Endpoint, error)
	CountEndpoints(ctx context.Context, orgID string) (int, error)
	/* FindSubscribed returns only enabled endpoints whose event set
	 * contains eventType; the dispatcher fans out over this result
	 */
	FindSubscribed(ctx context.Context, orgID, eventType string) ([]Endpoint, error)
}

// EndpointWriter provides write operations for endpoints
type EndpointWriter interface {
	StoreEndpoint(ctx context.Context, e Endpoint) error
	UpdateEndpoint(ctx context.Context, e Endpoint) error
	/* DeleteEndpoint removes the endpoint configuration
	 * Delivery history stays for audit but is no longer reachable for retry
	 */
	DeleteEndpoint(ctx context.Context, orgID, id string) error
}

// DeliveryReader provides read operations over the delivery ledger
type DeliveryReader interface {
	GetDelivery(ctx context.Context, orgID, id string) (Delivery, error)
	ListDeliveries(ctx context.Context, orgID string, filter DeliveryFilter) ([]Delivery, error)
	/* FindDueRetries returns pending deliveries whose NextRetryAt is in the
	 * past, capped at limit per scan. Safe to call from multiple nodes;
	 * duplicate pickup is tolerated, receivers dedupe on the event id.
	 */
	FindDueRetries(ctx context.Context, limit int) ([]Delivery, error)
}

// DeliveryWriter provides write operations over the delivery ledger
type DeliveryWriter interface {
	StoreDelivery(ctx context.Context, d Delivery) error
	/* UpdateDelivery applies an outcome to a delivery by id
	 * Only outcome fields are writable; identity and payload are immutable
	 */
	UpdateDelivery(ctx context.Context, id string, outcome Outcome) (Delivery, error)
	/* ResetDelivery clears the outcome of a failed delivery and bumps the
	 * attempt counter for a manual retry
	 */
	ResetDelivery(ctx context.Context, orgID, id string) (Delivery, error)
	/* ClaimDueRetry bumps the attempt counter and clears NextRetryAt so
	 * the scheduled attempt can be enqueued exactly once per claim
	 */
	ClaimDueRetry(ctx context.Context, id string) (Delivery, error)
}

/* Interface composition - combining small interfaces into larger ones
 * This is preferred over large monolithic interfaces
 */
type Repository interface {
	EndpointReader
	EndpointWriter
	DeliveryReader
	DeliveryWriter
	Close(ctx context.Context) error
}

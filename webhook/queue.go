package webhook

import "context"

/* Job is the queue payload the dispatcher produces and the worker consumes
 * It deliberately does not carry the endpoint secret: the worker fetches it
 * at execution time so a rotation between enqueue and execution is honored
 */
type Job struct {
	DeliveryID    string `json:"delivery_id"`
	EndpointID    string `json:"endpoint_id"`
	OrgID         string `json:"org_id"`
	URL           string `json:"url"`
	EventID       string `json:"event_id"`
	EventType     string `json:"event_type"`
	Payload       []byte `json:"payload"`
	AttemptNumber int    `json:"attempt_number"`

	// MessageID is the queue transport handle used for acknowledgment.
	// Set by the consumer, empty on enqueue.
	MessageID string `json:"-"`
}

// Queue hands delivery jobs to worker instances
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	/* Consume blocks until jobs are available or the context is cancelled
	 * The transport guarantees at most one active consumer per job
	 */
	Consume(ctx context.Context) ([]Job, error)
	// Acknowledge marks a consumed job as processed
	Acknowledge(ctx context.Context, messageID string) error
}

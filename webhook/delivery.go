package webhook

import (
	"fmt"
	"time"
)

/* Delivery represents one endpoint's attempt record for one event
 * Identity and payload are immutable after creation; only the outcome
 * fields change, and only through ApplyOutcome
 */
type Delivery struct {
	ID         string
	OrgID      string
	EndpointID string
	EventID    string
	EventType  string

	// Payload holds the exact bytes sent to the endpoint. Signing and
	// manual retry reuse them byte-for-byte; re-serializing would break
	// the signature.
	Payload []byte

	// AttemptNumber counts attempts made so far. Starts at 1 and is
	// incremented when the next attempt is enqueued, not when an outcome
	// is recorded.
	AttemptNumber int

	ResponseStatus  int
	ResponseBody    string
	ResponseHeaders map[string]string
	Error           string

	DeliveredAt *time.Time
	FailedAt    *time.Time
	NextRetryAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status derives the delivery state from its terminal timestamps
func (d Delivery) Status() Status {
	switch {
	case d.DeliveredAt != nil:
		return Delivered
	case d.FailedAt != nil:
		return Failed
	default:
		return Pending
	}
}

// DueForRetry reports whether the delivery is pending with a retry
// timestamp in the past
func (d Delivery) DueForRetry(now time.Time) bool {
	return d.Status() == Pending && d.NextRetryAt != nil && d.NextRetryAt.Before(now)
}

/* Outcome carries the writable fields of a delivery after an HTTP attempt
 * This is the worker -> ledger callback contract; identity fields and the
 * payload are deliberately absent
 */
type Outcome struct {
	ResponseStatus  *int
	ResponseBody    *string
	ResponseHeaders map[string]string
	Error           *string
	DeliveredAt     *time.Time
	FailedAt        *time.Time
	NextRetryAt     *time.Time
}

// ApplyOutcome merges an outcome into the delivery, enforcing terminal-state
// exclusivity: a delivery never carries both DeliveredAt and FailedAt, and
// NextRetryAt is cleared on any terminal transition.
func (d *Delivery) ApplyOutcome(o Outcome, now time.Time) error {
	if o.DeliveredAt != nil && o.FailedAt != nil {
		return fmt.Errorf("outcome cannot be both delivered and failed")
	}
	if o.DeliveredAt != nil && d.FailedAt != nil {
		return fmt.Errorf("delivery %s already failed", d.ID)
	}
	if o.FailedAt != nil && d.DeliveredAt != nil {
		return fmt.Errorf("delivery %s already delivered", d.ID)
	}

	if o.ResponseStatus != nil {
		d.ResponseStatus = *o.ResponseStatus
	}
	if o.ResponseBody != nil {
		d.ResponseBody = *o.ResponseBody
	}
	if o.ResponseHeaders != nil {
		d.ResponseHeaders = o.ResponseHeaders
	}
	if o.Error != nil {
		d.Error = *o.Error
	}
	if o.NextRetryAt != nil {
		d.NextRetryAt = o.NextRetryAt
	}
	if o.DeliveredAt != nil {
		d.DeliveredAt = o.DeliveredAt
		d.NextRetryAt = nil
	}
	if o.FailedAt != nil {
		d.FailedAt = o.FailedAt
		d.NextRetryAt = nil
	}

	d.UpdatedAt = now
	return nil
}

// ResetForRetry prepares a failed delivery for a manual retry: outcome
// fields are cleared and the attempt counter is bumped for the re-enqueue.
// Retrying a delivered delivery is an error, not a silent no-op.
func (d *Delivery) ResetForRetry(now time.Time) error {
	switch d.Status() {
	case Delivered:
		return NewValidationError(fmt.Sprintf("delivery %s was already delivered", d.ID))
	case Pending:
		return NewValidationError(fmt.Sprintf("delivery %s is still pending", d.ID))
	}

	d.FailedAt = nil
	d.Error = ""
	d.NextRetryAt = nil
	d.AttemptNumber++
	d.UpdatedAt = now
	return nil
}

/* DeliveryFilter narrows a delivery listing
 * A zero filter matches everything for the tenant
 */
type DeliveryFilter struct {
	EndpointID string
	Status     Status // zero value means any status
	Page       int
	Limit      int
}

package payload

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// eventTypePattern validates event types: hierarchical, full-stop delimited, [a-zA-Z0-9_.]
var eventTypePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)*$`)

/* Payload is the wire contract sent to endpoints
 * The ID is generated once per dispatch and shared by every delivery
 * spawned from that call - it is the idempotency key receivers should use
 * to deduplicate retried deliveries they already accepted
 */
type Payload struct {
	// ID is the event-scoped identifier, shared across the fan-out
	ID string `json:"id"`

	// Type is a full-stop delimited type associated with the event
	// Examples: "project.created", "member.role_changed"
	Type string `json:"type"`

	// CreatedAt is the ISO 8601 formatted timestamp of when the event occurred
	CreatedAt time.Time `json:"created_at"`

	// OrgID identifies the tenant the event belongs to
	OrgID string `json:"org_id"`

	// Data is the actual event data associated with the event
	Data json.RawMessage `json:"data"`
}

// Validate validates the payload structure
func (p Payload) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}

	if p.Type == "" {
		return fmt.Errorf("type is required")
	}

	if !eventTypePattern.MatchString(p.Type) {
		return fmt.Errorf("type must be hierarchical and contain only [a-zA-Z0-9_.]: %s", p.Type)
	}

	if p.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}

	if p.OrgID == "" {
		return fmt.Errorf("org_id is required")
	}

	if len(p.Data) == 0 {
		return fmt.Errorf("data is required")
	}

	if !json.Valid(p.Data) {
		return fmt.Errorf("data must be valid JSON")
	}

	return nil
}

// MarshalJSON returns the JSON encoding of the payload
func (p Payload) MarshalJSON() ([]byte, error) {
	type Alias Payload
	return json.Marshal(&struct {
		CreatedAt string `json:"created_at"`
		*Alias
	}{
		CreatedAt: p.CreatedAt.Format(time.RFC3339Nano),
		Alias:     (*Alias)(&p),
	})
}

// UnmarshalJSON parses the JSON-encoded data and stores the result
func (p *Payload) UnmarshalJSON(data []byte) error {
	type Alias Payload
	aux := &struct {
		CreatedAt string `json:"created_at"`
		*Alias
	}{
		Alias: (*Alias)(p),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("unmarshaling payload: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, aux.CreatedAt)
	if err != nil {
		// Try RFC3339 without nano precision
		createdAt, err = time.Parse(time.RFC3339, aux.CreatedAt)
		if err != nil {
			return fmt.Errorf("parsing created_at: %w", err)
		}
	}
	p.CreatedAt = createdAt

	return nil
}

// New creates a new Payload for an event occurrence
func New(eventID, eventType, orgID string, data interface{}) (Payload, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return Payload{}, fmt.Errorf("marshaling data: %w", err)
	}

	p := Payload{
		ID:        eventID,
		Type:      eventType,
		CreatedAt: time.Now().UTC(),
		OrgID:     orgID,
		Data:      dataBytes,
	}

	if err := p.Validate(); err != nil {
		return Payload{}, fmt.Errorf("validating payload: %w", err)
	}

	return p, nil
}

// Parse parses a JSON payload into a Payload
func Parse(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("unmarshaling payload: %w", err)
	}

	if err := p.Validate(); err != nil {
		return Payload{}, fmt.Errorf("validating payload: %w", err)
	}

	return p, nil
}

/* Bytes returns the canonical JSON-encoded payload
 * These bytes are produced once at dispatch time and reused byte-for-byte
 * for signing, delivery and manual retry
 */
func (p Payload) Bytes() ([]byte, error) {
	return json.Marshal(p)
}

// ValidateEventType validates an event type format
func ValidateEventType(eventType string) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}

	if !eventTypePattern.MatchString(eventType) {
		return fmt.Errorf("event type must be hierarchical and contain only [a-zA-Z0-9_.]: %s", eventType)
	}

	return nil
}

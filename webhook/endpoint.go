package webhook

import (
	"fmt"
	"net/url"
	"time"
)

/* Endpoint represents a tenant-configured HTTP destination for events
 * Uses value semantics as it represents data, not behavior
 */
type Endpoint struct {
	ID          string
	OrgID       string
	URL         string
	Description string
	Secret      string
	Events      []string
	Enabled     bool
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MaxEndpointsPerOrg is the default cap on endpoints a single tenant may register
const MaxEndpointsPerOrg = 10

// ValidateURL checks that the destination URL is well-formed and uses HTTPS.
// Plain HTTP destinations are rejected at creation time since the signed
// payload would travel in the clear.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return NewValidationError("url cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return NewValidationError(fmt.Sprintf("invalid url: %v", err))
	}

	if u.Scheme != "https" {
		return NewValidationError(fmt.Sprintf("url must use https scheme, got %q", u.Scheme))
	}

	if u.Host == "" {
		return NewValidationError("url must have a host")
	}

	return nil
}

// Subscribes reports whether the endpoint is subscribed to the given event type
func (e Endpoint) Subscribes(eventType string) bool {
	for _, et := range e.Events {
		if et == eventType {
			return true
		}
	}
	return false
}

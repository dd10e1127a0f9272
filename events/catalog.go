package events

import (
	"fmt"
	"os"
	"sort"

	"github.com/marcelsud/webhook-outbox/webhook/payload"
	"gopkg.in/yaml.v3"
)

/* Catalog is the closed, versionable set of event types endpoints may
 * subscribe to. Subscriptions are validated against it at create/update
 * time. Provides in-memory lookup for fast access.
 */

// TestPing is the reserved event type used by the endpoint test operation
const TestPing = "test.ping"

// Defaults are the event types compiled into the service
var Defaults = []string{
	"project.created",
	"project.updated",
	"project.deleted",
	"member.invited",
	"member.role_changed",
	"member.removed",
	TestPing,
}

// Config represents the structure of the event catalog YAML file
type Config struct {
	EventTypes []string `yaml:"event_types"`
}

// Catalog holds the known event types
type Catalog struct {
	types map[string]struct{}
}

// NewCatalog creates a catalog seeded with the default event types
func NewCatalog() *Catalog {
	c := &Catalog{
		types: make(map[string]struct{}),
	}
	for _, et := range Defaults {
		c.types[et] = struct{}{}
	}
	return c
}

// Load reads additional event types from a YAML file
func (c *Catalog) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading event catalog file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing event catalog YAML: %w", err)
	}

	for _, et := range config.EventTypes {
		if err := payload.ValidateEventType(et); err != nil {
			return fmt.Errorf("validating event type: %w", err)
		}
		c.types[et] = struct{}{}
	}

	return nil
}

// Has checks if an event type is part of the catalog
func (c *Catalog) Has(eventType string) bool {
	_, exists := c.types[eventType]
	return exists
}

// List returns all known event types, sorted
func (c *Catalog) List() []string {
	types := make([]string, 0, len(c.types))
	for et := range c.types {
		types = append(types, et)
	}
	sort.Strings(types)
	return types
}

// ValidateSubscription checks a subscription list against the catalog
func (c *Catalog) ValidateSubscription(eventTypes []string) error {
	if len(eventTypes) == 0 {
		return fmt.Errorf("event list cannot be empty")
	}

	for _, et := range eventTypes {
		if err := payload.ValidateEventType(et); err != nil {
			return err
		}
		if !c.Has(et) {
			return fmt.Errorf("unknown event type: %s", et)
		}
	}

	return nil
}

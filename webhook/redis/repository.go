package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcelsud/webhook-outbox/webhook"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of webhook.Repository
 * Uses Redis Hashes for endpoint and delivery records, Sets for per-org
 * endpoint membership, and Sorted Sets as secondary indexes:
 *   - per-org and per-endpoint delivery indexes scored by created_at
 *   - per-status delivery indexes so status-filtered listings are a single
 *     indexed scan
 *   - a global retry index scored by next_retry_at so FindDueRetries is a
 *     single ZRANGEBYSCORE
 */

const (
	endpointPrefix     = "endpoint"            // Hash naming: endpoint:{endpoint_id}
	orgEndpointsPrefix = "endpoints"           // Set naming: endpoints:{org_id}
	deliveryPrefix     = "delivery"            // Hash naming: delivery:{delivery_id}
	orgDeliveryPrefix  = "deliveries"          // ZSet naming: deliveries:{org_id}[...]
	retryIndexKey      = "deliveries:retrying" // ZSet scored by next_retry_at
)

type Repository struct {
	client *redis.Client
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Repository{
		client: client,
	}, nil
}

// StoreEndpoint persists a new endpoint and indexes it under its org
func (r *Repository) StoreEndpoint(ctx context.Context, e webhook.Endpoint) error {
	if err := r.writeEndpoint(ctx, e); err != nil {
		return err
	}

	err := r.client.SAdd(ctx, orgEndpointsKey(e.OrgID), e.ID).Err()
	if err != nil {
		return fmt.Errorf("indexing endpoint: %w", err)
	}

	return nil
}

// UpdateEndpoint overwrites an existing endpoint's configuration
func (r *Repository) UpdateEndpoint(ctx context.Context, e webhook.Endpoint) error {
	if _, err := r.GetEndpoint(ctx, e.OrgID, e.ID); err != nil {
		return err
	}
	return r.writeEndpoint(ctx, e)
}

func (r *Repository) writeEndpoint(ctx context.Context, e webhook.Endpoint) error {
	eventsJSON, err := json.Marshal(e.Events)
	if err != nil {
		return fmt.Errorf("marshaling events: %w", err)
	}

	err = r.client.HSet(ctx, endpointKey(e.ID), map[string]interface{}{
		"id":          e.ID,
		"org_id":      e.OrgID,
		"url":         e.URL,
		"description": e.Description,
		"secret":      e.Secret,
		"events":      string(eventsJSON),
		"enabled":     boolStr(e.Enabled),
		"created_by":  e.CreatedBy,
		"created_at":  e.CreatedAt.Unix(),
		"updated_at":  e.UpdatedAt.Unix(),
	}).Err()
	if err != nil {
		return fmt.Errorf("storing endpoint: %w", err)
	}

	return nil
}

// GetEndpoint retrieves an endpoint by id, scoped to the owning org.
// An endpoint owned by a different org reports not-found, never forbidden;
// existence is not leaked across tenants.
func (r *Repository) GetEndpoint(ctx context.Context, orgID, id string) (webhook.Endpoint, error) {
	data, err := r.client.HGetAll(ctx, endpointKey(id)).Result()
	if err != nil {
		return webhook.Endpoint{}, fmt.Errorf("getting endpoint: %w", err)
	}
	if len(data) == 0 || data["org_id"] != orgID {
		return webhook.Endpoint{}, fmt.Errorf("endpoint %s: %w", id, webhook.ErrNotFound)
	}

	return endpointFromHash(data)
}

// ListEndpoints returns all endpoints registered for an org
func (r *Repository) ListEndpoints(ctx context.Context, orgID string) ([]webhook.Endpoint, error) {
	ids, err := r.client.SMembers(ctx, orgEndpointsKey(orgID)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing endpoint ids: %w", err)
	}

	endpoints := make([]webhook.Endpoint, 0, len(ids))
	for _, id := range ids {
		e, err := r.GetEndpoint(ctx, orgID, id)
		if err != nil {
			// Index entry without a hash, skip
			continue
		}
		endpoints = append(endpoints, e)
	}

	return endpoints, nil
}

// CountEndpoints returns the number of endpoints an org has registered
func (r *Repository) CountEndpoints(ctx context.Context, orgID string) (int, error) {
	count, err := r.client.SCard(ctx, orgEndpointsKey(orgID)).Result()
	if err != nil {
		return 0, fmt.Errorf("counting endpoints: %w", err)
	}
	return int(count), nil
}

// FindSubscribed returns enabled endpoints subscribed to the event type
func (r *Repository) FindSubscribed(ctx context.Context, orgID, eventType string) ([]webhook.Endpoint, error) {
	endpoints, err := r.ListEndpoints(ctx, orgID)
	if err != nil {
		return nil, err
	}

	var subscribed []webhook.Endpoint
	for _, e := range endpoints {
		if e.Enabled && e.Subscribes(eventType) {
			subscribed = append(subscribed, e)
		}
	}

	return subscribed, nil
}

// DeleteEndpoint removes the endpoint configuration. Delivery history is
// kept for audit; the retry path stops at the missing endpoint.
func (r *Repository) DeleteEndpoint(ctx context.Context, orgID, id string) error {
	if _, err := r.GetEndpoint(ctx, orgID, id); err != nil {
		return err
	}

	if err := r.client.Del(ctx, endpointKey(id)).Err(); err != nil {
		return fmt.Errorf("deleting endpoint: %w", err)
	}

	if err := r.client.SRem(ctx, orgEndpointsKey(orgID), id).Err(); err != nil {
		return fmt.Errorf("unindexing endpoint: %w", err)
	}

	return nil
}

// StoreDelivery inserts a new delivery row and indexes it
func (r *Repository) StoreDelivery(ctx context.Context, d webhook.Delivery) error {
	if err := r.writeDelivery(ctx, d); err != nil {
		return err
	}

	score := float64(d.CreatedAt.Unix())
	member := redis.Z{Score: score, Member: d.ID}

	pipe := r.client.Pipeline()
	pipe.ZAdd(ctx, orgDeliveriesKey(d.OrgID), member)
	pipe.ZAdd(ctx, endpointDeliveriesKey(d.OrgID, d.EndpointID), member)
	pipe.ZAdd(ctx, statusDeliveriesKey(d.OrgID, d.Status()), member)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("indexing delivery: %w", err)
	}

	return nil
}

// GetDelivery retrieves a delivery by id, scoped to the owning org
func (r *Repository) GetDelivery(ctx context.Context, orgID, id string) (webhook.Delivery, error) {
	d, err := r.getDelivery(ctx, id)
	if err != nil {
		return webhook.Delivery{}, err
	}
	if d.OrgID != orgID {
		return webhook.Delivery{}, fmt.Errorf("delivery %s: %w", id, webhook.ErrNotFound)
	}
	return d, nil
}

func (r *Repository) getDelivery(ctx context.Context, id string) (webhook.Delivery, error) {
	data, err := r.client.HGetAll(ctx, deliveryKey(id)).Result()
	if err != nil {
		return webhook.Delivery{}, fmt.Errorf("getting delivery: %w", err)
	}
	if len(data) == 0 {
		return webhook.Delivery{}, fmt.Errorf("delivery %s: %w", id, webhook.ErrNotFound)
	}

	return deliveryFromHash(data)
}

// ListDeliveries answers a filtered, paginated query over the history.
// Each filter combination maps to one index; endpoint+status intersects in
// memory over the endpoint page.
func (r *Repository) ListDeliveries(ctx context.Context, orgID string, filter webhook.DeliveryFilter) ([]webhook.Delivery, error) {
	indexKey := orgDeliveriesKey(orgID)
	switch {
	case filter.EndpointID != "":
		indexKey = endpointDeliveriesKey(orgID, filter.EndpointID)
	case filter.Status != 0:
		indexKey = statusDeliveriesKey(orgID, filter.Status)
	}

	start := int64((filter.Page - 1) * filter.Limit)
	stop := start + int64(filter.Limit) - 1

	// Newest first
	ids, err := r.client.ZRevRange(ctx, indexKey, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("listing delivery ids: %w", err)
	}

	deliveries := make([]webhook.Delivery, 0, len(ids))
	for _, id := range ids {
		d, err := r.getDelivery(ctx, id)
		if err != nil {
			continue
		}
		if filter.EndpointID != "" && filter.Status != 0 && d.Status() != filter.Status {
			continue
		}
		deliveries = append(deliveries, d)
	}

	return deliveries, nil
}

// FindDueRetries returns pending deliveries whose next retry is in the
// past, capped at limit per scan to bound worker fan-out
func (r *Repository) FindDueRetries(ctx context.Context, limit int) ([]webhook.Delivery, error) {
	now := time.Now().Unix()

	ids, err := r.client.ZRangeByScore(ctx, retryIndexKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%d", now),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("scanning retry index: %w", err)
	}

	deliveries := make([]webhook.Delivery, 0, len(ids))
	for _, id := range ids {
		d, err := r.getDelivery(ctx, id)
		if err != nil {
			// Row gone, drop the index entry
			r.client.ZRem(ctx, retryIndexKey, id)
			continue
		}
		deliveries = append(deliveries, d)
	}

	return deliveries, nil
}

// UpdateDelivery applies an outcome to a delivery. Identity fields and the
// payload are not writable through this path.
func (r *Repository) UpdateDelivery(ctx context.Context, id string, outcome webhook.Outcome) (webhook.Delivery, error) {
	d, err := r.getDelivery(ctx, id)
	if err != nil {
		return webhook.Delivery{}, err
	}

	oldStatus := d.Status()
	if err := d.ApplyOutcome(outcome, time.Now().UTC()); err != nil {
		return webhook.Delivery{}, fmt.Errorf("applying outcome: %w", err)
	}

	if err := r.writeDelivery(ctx, d); err != nil {
		return webhook.Delivery{}, err
	}

	if err := r.reindexDelivery(ctx, d, oldStatus); err != nil {
		return webhook.Delivery{}, err
	}

	return d, nil
}

// ResetDelivery clears the outcome of a failed delivery and bumps the
// attempt counter for a manual retry
func (r *Repository) ResetDelivery(ctx context.Context, orgID, id string) (webhook.Delivery, error) {
	d, err := r.GetDelivery(ctx, orgID, id)
	if err != nil {
		return webhook.Delivery{}, err
	}

	oldStatus := d.Status()
	if err := d.ResetForRetry(time.Now().UTC()); err != nil {
		return webhook.Delivery{}, err
	}

	if err := r.writeDelivery(ctx, d); err != nil {
		return webhook.Delivery{}, err
	}

	if err := r.reindexDelivery(ctx, d, oldStatus); err != nil {
		return webhook.Delivery{}, err
	}

	return d, nil
}

// ClaimDueRetry bumps the attempt counter and clears NextRetryAt so the
// scheduled attempt is enqueued once per claim. Concurrent pollers may
// still race on the read; duplicate enqueue is tolerated by design.
func (r *Repository) ClaimDueRetry(ctx context.Context, id string) (webhook.Delivery, error) {
	d, err := r.getDelivery(ctx, id)
	if err != nil {
		return webhook.Delivery{}, err
	}

	if d.Status() != webhook.Pending || d.NextRetryAt == nil {
		return webhook.Delivery{}, fmt.Errorf("delivery %s is not due for retry", id)
	}

	d.NextRetryAt = nil
	d.AttemptNumber++
	d.UpdatedAt = time.Now().UTC()

	if err := r.writeDelivery(ctx, d); err != nil {
		return webhook.Delivery{}, err
	}

	if err := r.client.ZRem(ctx, retryIndexKey, d.ID).Err(); err != nil {
		return webhook.Delivery{}, fmt.Errorf("removing retry index entry: %w", err)
	}

	return d, nil
}

// reindexDelivery moves the delivery between status indexes and keeps the
// retry index in sync with NextRetryAt
func (r *Repository) reindexDelivery(ctx context.Context, d webhook.Delivery, oldStatus webhook.Status) error {
	pipe := r.client.Pipeline()

	if d.Status() != oldStatus {
		pipe.ZRem(ctx, statusDeliveriesKey(d.OrgID, oldStatus), d.ID)
		pipe.ZAdd(ctx, statusDeliveriesKey(d.OrgID, d.Status()), redis.Z{
			Score:  float64(d.CreatedAt.Unix()),
			Member: d.ID,
		})
	}

	if d.NextRetryAt != nil {
		pipe.ZAdd(ctx, retryIndexKey, redis.Z{
			Score:  float64(d.NextRetryAt.Unix()),
			Member: d.ID,
		})
	} else {
		pipe.ZRem(ctx, retryIndexKey, d.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("reindexing delivery: %w", err)
	}

	return nil
}

func (r *Repository) writeDelivery(ctx context.Context, d webhook.Delivery) error {
	headersJSON, err := json.Marshal(d.ResponseHeaders)
	if err != nil {
		return fmt.Errorf("marshaling response headers: %w", err)
	}

	err = r.client.HSet(ctx, deliveryKey(d.ID), map[string]interface{}{
		"id":               d.ID,
		"org_id":           d.OrgID,
		"endpoint_id":      d.EndpointID,
		"event_id":         d.EventID,
		"event_type":       d.EventType,
		"payload":          d.Payload,
		"attempt_number":   d.AttemptNumber,
		"response_status":  d.ResponseStatus,
		"response_body":    d.ResponseBody,
		"response_headers": string(headersJSON),
		"error":            d.Error,
		"delivered_at":     unixOrZero(d.DeliveredAt),
		"failed_at":        unixOrZero(d.FailedAt),
		"next_retry_at":    unixOrZero(d.NextRetryAt),
		"created_at":       d.CreatedAt.Unix(),
		"updated_at":       d.UpdatedAt.Unix(),
	}).Err()
	if err != nil {
		return fmt.Errorf("storing delivery: %w", err)
	}

	return nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

// GetClient returns the underlying Redis client for advanced operations
func (r *Repository) GetClient() *redis.Client {
	return r.client
}

// Helper functions

func endpointKey(id string) string {
	return fmt.Sprintf("%s:%s", endpointPrefix, id)
}

func orgEndpointsKey(orgID string) string {
	return fmt.Sprintf("%s:%s", orgEndpointsPrefix, orgID)
}

func deliveryKey(id string) string {
	return fmt.Sprintf("%s:%s", deliveryPrefix, id)
}

func orgDeliveriesKey(orgID string) string {
	return fmt.Sprintf("%s:%s", orgDeliveryPrefix, orgID)
}

func endpointDeliveriesKey(orgID, endpointID string) string {
	return fmt.Sprintf("%s:%s:endpoint:%s", orgDeliveryPrefix, orgID, endpointID)
}

func statusDeliveriesKey(orgID string, status webhook.Status) string {
	return fmt.Sprintf("%s:%s:status:%s", orgDeliveryPrefix, orgID, status.String())
}

func endpointFromHash(data map[string]string) (webhook.Endpoint, error) {
	var events []string
	if eventsStr, ok := data["events"]; ok && eventsStr != "" {
		if err := json.Unmarshal([]byte(eventsStr), &events); err != nil {
			return webhook.Endpoint{}, fmt.Errorf("unmarshaling events: %w", err)
		}
	}

	return webhook.Endpoint{
		ID:          data["id"],
		OrgID:       data["org_id"],
		URL:         data["url"],
		Description: data["description"],
		Secret:      data["secret"],
		Events:      events,
		Enabled:     data["enabled"] == "true",
		CreatedBy:   data["created_by"],
		CreatedAt:   time.Unix(parseInt64(data["created_at"]), 0),
		UpdatedAt:   time.Unix(parseInt64(data["updated_at"]), 0),
	}, nil
}

func deliveryFromHash(data map[string]string) (webhook.Delivery, error) {
	headers := make(map[string]string)
	if headersStr, ok := data["response_headers"]; ok && headersStr != "" && headersStr != "null" {
		if err := json.Unmarshal([]byte(headersStr), &headers); err != nil {
			return webhook.Delivery{}, fmt.Errorf("unmarshaling response headers: %w", err)
		}
	}

	return webhook.Delivery{
		ID:              data["id"],
		OrgID:           data["org_id"],
		EndpointID:      data["endpoint_id"],
		EventID:         data["event_id"],
		EventType:       data["event_type"],
		Payload:         []byte(data["payload"]),
		AttemptNumber:   int(parseInt64(data["attempt_number"])),
		ResponseStatus:  int(parseInt64(data["response_status"])),
		ResponseBody:    data["response_body"],
		ResponseHeaders: headers,
		Error:           data["error"],
		DeliveredAt:     timeOrNil(data["delivered_at"]),
		FailedAt:        timeOrNil(data["failed_at"]),
		NextRetryAt:     timeOrNil(data["next_retry_at"]),
		CreatedAt:       time.Unix(parseInt64(data["created_at"]), 0),
		UpdatedAt:       time.Unix(parseInt64(data["updated_at"]), 0),
	}, nil
}

func parseInt64(s string) int64 {
	var result int64
	fmt.Sscanf(s, "%d", &result)
	return result
}

func unixOrZero(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.Unix()
}

func timeOrNil(s string) *time.Time {
	unix := parseInt64(s)
	if unix == 0 {
		return nil
	}
	t := time.Unix(unix, 0)
	return &t
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

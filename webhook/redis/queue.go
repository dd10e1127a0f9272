package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcelsud/webhook-outbox/webhook"
	"github.com/redis/go-redis/v9"
)

/* Redis Streams implementation of webhook.Queue
 * A single stream with a consumer group distributes delivery jobs across
 * worker instances; the group guarantees at most one active consumer per
 * job until it is acknowledged
 */

const (
	jobStreamKey     = "deliveries:jobs"
	consumerGroup    = "delivery-workers"
	consumeBatchSize = 10
)

type Queue struct {
	client   *redis.Client
	consumer string
}

// NewQueue creates a job queue over the given Redis client. The consumer
// name must be unique per worker process.
func NewQueue(client *redis.Client, consumer string) *Queue {
	return &Queue{
		client:   client,
		consumer: consumer,
	}
}

// Enqueue adds a delivery job to the stream
func (q *Queue) Enqueue(ctx context.Context, job webhook.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshaling job: %w", err)
	}

	// Create consumer group if it doesn't exist
	q.client.XGroupCreateMkStream(ctx, jobStreamKey, consumerGroup, "0")
	// Ignore error if group already exists

	_, err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: jobStreamKey,
		Values: map[string]interface{}{"job": string(data)},
	}).Result()
	if err != nil {
		return fmt.Errorf("adding to stream: %w", err)
	}

	return nil
}

// Consume reads delivery jobs from the stream via the consumer group
func (q *Queue) Consume(ctx context.Context) ([]webhook.Job, error) {
	// Create consumer group if it doesn't exist
	q.client.XGroupCreateMkStream(ctx, jobStreamKey, consumerGroup, "0")
	// Ignore error if group already exists

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    consumerGroup,
		Consumer: q.consumer,
		Streams:  []string{jobStreamKey, ">"},
		Count:    consumeBatchSize,
		Block:    1 * time.Second,
	}).Result()
	if err == redis.Nil {
		// No messages available
		return []webhook.Job{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading from stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return []webhook.Job{}, nil
	}

	var jobs []webhook.Job
	for _, msg := range streams[0].Messages {
		raw, ok := msg.Values["job"].(string)
		if !ok {
			continue
		}

		var job webhook.Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			continue
		}

		job.MessageID = msg.ID
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// Acknowledge marks a consumed job as processed
func (q *Queue) Acknowledge(ctx context.Context, messageID string) error {
	err := q.client.XAck(ctx, jobStreamKey, consumerGroup, messageID).Err()
	if err != nil {
		return fmt.Errorf("acknowledging message: %w", err)
	}

	return nil
}

package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCollector implements the Collector interface for Redis-backed metrics
type RedisCollector struct {
	client *redis.Client
}

const (
	jobStreamKey  = "deliveries:jobs"
	retryIndexKey = "deliveries:retrying"
)

// NewRedisCollector creates a new Redis metrics collector
func NewRedisCollector(client *redis.Client) *RedisCollector {
	return &RedisCollector{
		client: client,
	}
}

// Collect gathers all metrics from Redis
func (c *RedisCollector) Collect(ctx context.Context) (Metrics, error) {
	queueDepth, err := c.GetQueueDepth(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting queue depth: %w", err)
	}

	retryBacklog, err := c.GetRetryBacklog(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting retry backlog: %w", err)
	}

	statusCounts, err := c.GetStatusCounts(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting status counts: %w", err)
	}

	throughput, err := c.GetThroughput(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting throughput: %w", err)
	}

	return Metrics{
		QueueDepth:   queueDepth,
		RetryBacklog: retryBacklog,
		StatusCounts: statusCounts,
		Throughput:   throughput,
		Timestamp:    time.Now(),
	}, nil
}

// GetQueueDepth returns the number of jobs in the delivery stream
func (c *RedisCollector) GetQueueDepth(ctx context.Context) (int64, error) {
	length, err := c.client.XLen(ctx, jobStreamKey).Result()
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("reading stream length: %w", err)
	}
	return length, nil
}

// GetRetryBacklog returns the number of deliveries in the retry index
func (c *RedisCollector) GetRetryBacklog(ctx context.Context) (int64, error) {
	count, err := c.client.ZCard(ctx, retryIndexKey).Result()
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("reading retry index size: %w", err)
	}
	return count, nil
}

// GetStatusCounts returns counts of deliveries grouped by status
func (c *RedisCollector) GetStatusCounts(ctx context.Context) (map[string]int64, error) {
	statusCounts := map[string]int64{
		"pending": 0,
		"success": 0,
		"failed":  0,
	}

	// Scan for all delivery:* keys
	var cursor uint64
	var keys []string

	for {
		var scanKeys []string
		var err error

		scanKeys, cursor, err = c.client.Scan(ctx, cursor, "delivery:*", 1000).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning delivery keys: %w", err)
		}

		keys = append(keys, scanKeys...)

		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return statusCounts, nil
	}

	// Use pipeline for efficient batch operations
	pipe := c.client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(keys))

	for i, key := range keys {
		cmds[i] = pipe.HMGet(ctx, key, "delivered_at", "failed_at")
	}

	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("executing pipeline: %w", err)
	}

	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil || len(data) < 2 {
			continue
		}

		deliveredAt, _ := data[0].(string)
		failedAt, _ := data[1].(string)

		switch {
		case deliveredAt != "" && deliveredAt != "0":
			statusCounts["success"]++
		case failedAt != "" && failedAt != "0":
			statusCounts["failed"]++
		default:
			statusCounts["pending"]++
		}
	}

	return statusCounts, nil
}

// GetThroughput calculates deliveries completed over different time windows
func (c *RedisCollector) GetThroughput(ctx context.Context) (ThroughputMetrics, error) {
	now := time.Now()
	oneMinuteAgo := now.Add(-1 * time.Minute).Unix()
	fiveMinutesAgo := now.Add(-5 * time.Minute).Unix()
	fifteenMinutesAgo := now.Add(-15 * time.Minute).Unix()

	var lastMinute, lastFiveMinutes, lastFifteenMinutes int64

	var cursor uint64

	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, "delivery:*", 1000).Result()
		if err != nil {
			return ThroughputMetrics{}, fmt.Errorf("scanning delivery keys: %w", err)
		}

		for _, key := range keys {
			data, err := c.client.HMGet(ctx, key, "delivered_at").Result()
			if err != nil || len(data) < 1 {
				continue
			}

			deliveredAtStr, ok := data[0].(string)
			if !ok || deliveredAtStr == "" || deliveredAtStr == "0" {
				continue
			}

			var deliveredAt int64
			fmt.Sscanf(deliveredAtStr, "%d", &deliveredAt)

			// Count in time windows
			if deliveredAt >= fifteenMinutesAgo {
				lastFifteenMinutes++
				if deliveredAt >= fiveMinutesAgo {
					lastFiveMinutes++
					if deliveredAt >= oneMinuteAgo {
						lastMinute++
					}
				}
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return ThroughputMetrics{
		LastMinute:         lastMinute,
		LastFiveMinutes:    lastFiveMinutes,
		LastFifteenMinutes: lastFifteenMinutes,
	}, nil
}

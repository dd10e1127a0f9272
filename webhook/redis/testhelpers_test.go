//go:build integration

package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-outbox/webhook"
	"github.com/marcelsud/webhook-outbox/webhook/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	testcontainersredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

/* Test Helpers for Redis Integration Tests
 * Following the pattern from: https://eltonminetto.dev/post/2024-02-15-using-test-helpers/
 */

// RedisContainer holds the Redis testcontainer and connection details
type RedisContainer struct {
	Container *testcontainersredis.RedisContainer
	Addr      string
}

// SetupRedisContainer creates and starts a Redis testcontainer
func SetupRedisContainer(t *testing.T, ctx context.Context) (*RedisContainer, func()) {
	t.Helper()

	redisContainer, err := testcontainersredis.Run(ctx,
		"redis:7-alpine",
		testcontainersredis.WithSnapshotting(10, 1),
	)
	require.NoError(t, err, "failed to start Redis container")

	addr, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err, "failed to get Redis connection string")

	// Remove redis:// prefix if present
	if len(addr) > 8 && addr[:8] == "redis://" {
		addr = addr[8:]
	}

	// Wait for Redis to be ready
	time.Sleep(1 * time.Second)

	rc := &RedisContainer{
		Container: redisContainer,
		Addr:      addr,
	}

	cleanup := func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	}

	return rc, cleanup
}

// CreateTestRepository creates a Redis repository connected to the test container
func CreateTestRepository(t *testing.T, addr string) *redis.Repository {
	t.Helper()

	repo, err := redis.NewRepository(addr, "", 0)
	require.NoError(t, err, "failed to create Redis repository")

	return repo
}

// CreateTestQueue creates a job queue on the repository's Redis connection
func CreateTestQueue(t *testing.T, repo *redis.Repository) *redis.Queue {
	t.Helper()
	return redis.NewQueue(repo.GetClient(), fmt.Sprintf("test-consumer-%s", uuid.New().String()))
}

// NewTestEndpoint builds an endpoint fixture owned by the given org
func NewTestEndpoint(t *testing.T, orgID string, events ...string) webhook.Endpoint {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	return webhook.Endpoint{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		URL:       "https://receiver.example.com/hooks",
		Secret:    "whsec_testsecret",
		Events:    events,
		Enabled:   true,
		CreatedBy: "user_1",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestDelivery builds a pending delivery fixture for the given endpoint
func NewTestDelivery(t *testing.T, e webhook.Endpoint) webhook.Delivery {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	return webhook.Delivery{
		ID:            uuid.New().String(),
		OrgID:         e.OrgID,
		EndpointID:    e.ID,
		EventID:       uuid.New().String(),
		EventType:     "project.created",
		Payload:       []byte(`{"id":"evt_1","type":"project.created"}`),
		AttemptNumber: 1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// KeyExists checks if a Redis key exists
func KeyExists(t *testing.T, addr string, key string) bool {
	t.Helper()

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	defer client.Close()

	exists, err := client.Exists(context.Background(), key).Result()
	require.NoError(t, err)

	return exists > 0
}

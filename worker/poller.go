package worker

import (
	"context"
	"time"

	"github.com/marcelsud/webhook-outbox/webhook"
	"github.com/rs/zerolog"
)

/* Poller periodically scans the ledger for deliveries whose retry is due
 * and re-enqueues them with a bumped attempt number
 * Multiple pollers may run concurrently across nodes; a duplicate pickup
 * results in a duplicate delivery, which receivers dedupe on the event id
 */
type Poller struct {
	Repo      webhook.Repository
	Queue     webhook.Queue
	Interval  time.Duration
	BatchSize int
	Log       zerolog.Logger
}

// NewPoller creates a retry poller with dependency injection
func NewPoller(repo webhook.Repository, queue webhook.Queue, interval time.Duration, batchSize int, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Poller{
		Repo:      repo,
		Queue:     queue,
		Interval:  interval,
		BatchSize: batchSize,
		Log:       log,
	}
}

// Run polls for due retries until the context is cancelled
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll runs one scan over the due-retry index
func (p *Poller) Poll(ctx context.Context) {
	due, err := p.Repo.FindDueRetries(ctx, p.BatchSize)
	if err != nil {
		p.Log.Error().Err(err).Msg("finding due retries")
		return
	}

	for _, delivery := range due {
		p.enqueueRetry(ctx, delivery)
	}
}

func (p *Poller) enqueueRetry(ctx context.Context, delivery webhook.Delivery) {
	endpoint, err := p.Repo.GetEndpoint(ctx, delivery.OrgID, delivery.EndpointID)
	if err != nil {
		// Endpoint deleted while a retry was pending: fail terminally so
		// the delivery leaves the retry index
		now := time.Now().UTC()
		errMsg := "endpoint deleted before retry"
		if _, err := p.Repo.UpdateDelivery(ctx, delivery.ID, webhook.Outcome{
			Error:    &errMsg,
			FailedAt: &now,
		}); err != nil {
			p.Log.Error().Err(err).
				Str("delivery_id", delivery.ID).
				Msg("failing orphaned delivery")
		}
		return
	}

	claimed, err := p.Repo.ClaimDueRetry(ctx, delivery.ID)
	if err != nil {
		// Another poller claimed it first
		p.Log.Debug().Err(err).
			Str("delivery_id", delivery.ID).
			Msg("claiming due retry")
		return
	}

	job := webhook.Job{
		DeliveryID:    claimed.ID,
		EndpointID:    claimed.EndpointID,
		OrgID:         claimed.OrgID,
		URL:           endpoint.URL,
		EventID:       claimed.EventID,
		EventType:     claimed.EventType,
		Payload:       claimed.Payload,
		AttemptNumber: claimed.AttemptNumber,
	}

	if err := p.Queue.Enqueue(ctx, job); err != nil {
		p.Log.Error().Err(err).
			Str("delivery_id", claimed.ID).
			Msg("enqueueing retry job")
		return
	}

	p.Log.Info().
		Str("delivery_id", claimed.ID).
		Int("attempt", claimed.AttemptNumber).
		Msg("retry enqueued")
}

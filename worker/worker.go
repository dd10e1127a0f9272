package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marcelsud/webhook-outbox/webhook"
	"github.com/marcelsud/webhook-outbox/webhook/signature"
	"github.com/rs/zerolog"
)

const (
	// SignatureHeader carries the t=...,v1=... signature on each delivery
	SignatureHeader = "Webhook-Signature"

	// EventIDHeader carries the idempotency key receivers should dedupe on
	EventIDHeader = "Webhook-Event-Id"

	// maxResponseBodyBytes caps the stored response body per attempt
	maxResponseBodyBytes = 4096
)

/* Worker dequeues delivery jobs, performs the signed HTTP call and reports
 * the outcome back into the ledger
 * Workers are stateless and independent: any number of them may run
 * concurrently, each job has at most one active consumer
 */
type Worker struct {
	Repo   webhook.Repository
	Queue  webhook.Queue
	Policy webhook.RetryPolicy
	Client *http.Client
	Log    zerolog.Logger
}

// NewWorker creates a delivery worker with dependency injection
func NewWorker(repo webhook.Repository, queue webhook.Queue, policy webhook.RetryPolicy, client *http.Client, log zerolog.Logger) *Worker {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Worker{
		Repo:   repo,
		Queue:  queue,
		Policy: policy,
		Client: client,
		Log:    log,
	}
}

// Run consumes and processes delivery jobs until the context is cancelled
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		jobs, err := w.Queue.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			w.Log.Error().Err(err).Msg("consuming jobs")
			continue
		}

		for _, job := range jobs {
			w.Process(ctx, job)

			if err := w.Queue.Acknowledge(ctx, job.MessageID); err != nil {
				w.Log.Error().Err(err).
					Str("delivery_id", job.DeliveryID).
					Msg("acknowledging job")
			}
		}
	}
}

/* Process performs one delivery attempt for a job
 * The endpoint is re-fetched at execution time so a secret rotation between
 * enqueue and execution is honored. Delivery failures are normal operation,
 * recorded on the delivery row, never returned to any caller.
 */
func (w *Worker) Process(ctx context.Context, job webhook.Job) {
	endpoint, err := w.Repo.GetEndpoint(ctx, job.OrgID, job.EndpointID)
	if err != nil {
		// Endpoint deleted after enqueue: nothing left to deliver to
		w.recordFailure(ctx, job, 0, "", nil, fmt.Sprintf("endpoint unavailable: %v", err), true)
		return
	}

	status, body, headers, err := w.send(ctx, endpoint, job)
	if err != nil {
		w.recordFailure(ctx, job, 0, "", nil, err.Error(), w.Policy.Exhausted(job.AttemptNumber))
		return
	}

	if status >= 200 && status < 300 {
		w.recordSuccess(ctx, job, status, body, headers)
		return
	}

	w.recordFailure(ctx, job, status, body, headers,
		fmt.Sprintf("unexpected response status %d", status),
		w.Policy.Exhausted(job.AttemptNumber))
}

// send signs the stored payload bytes and POSTs them to the endpoint
func (w *Worker) send(ctx context.Context, endpoint webhook.Endpoint, job webhook.Job) (int, string, map[string]string, error) {
	sig, err := signature.Sign(job.Payload, endpoint.Secret, time.Now())
	if err != nil {
		return 0, "", nil, fmt.Errorf("signing payload: %w", err)
	}

	// The body must be the exact bytes used at signing time;
	// re-serializing would break the signature
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(job.Payload))
	if err != nil {
		return 0, "", nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, sig)
	req.Header.Set(EventIDHeader, job.EventID)

	resp, err := w.Client.Do(req)
	if err != nil {
		return 0, "", nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		bodyBytes = nil
	}

	headers := make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	return resp.StatusCode, string(bodyBytes), headers, nil
}

// recordSuccess marks the delivery as terminally delivered
func (w *Worker) recordSuccess(ctx context.Context, job webhook.Job, status int, body string, headers map[string]string) {
	now := time.Now().UTC()
	_, err := w.Repo.UpdateDelivery(ctx, job.DeliveryID, webhook.Outcome{
		ResponseStatus:  &status,
		ResponseBody:    &body,
		ResponseHeaders: headers,
		DeliveredAt:     &now,
	})
	if err != nil {
		w.Log.Error().Err(err).
			Str("delivery_id", job.DeliveryID).
			Msg("recording delivery success")
		return
	}

	w.Log.Info().
		Str("delivery_id", job.DeliveryID).
		Str("event_id", job.EventID).
		Int("attempt", job.AttemptNumber).
		Msg("delivered")
}

// recordFailure records a failed attempt; terminal failures set FailedAt,
// non-terminal ones schedule the next retry
func (w *Worker) recordFailure(ctx context.Context, job webhook.Job, status int, body string, headers map[string]string, errMsg string, terminal bool) {
	now := time.Now().UTC()

	outcome := webhook.Outcome{
		Error: &errMsg,
	}
	if status != 0 {
		outcome.ResponseStatus = &status
		outcome.ResponseBody = &body
		outcome.ResponseHeaders = headers
	}

	if terminal {
		outcome.FailedAt = &now
	} else {
		nextRetry := w.Policy.NextRetryAt(job.AttemptNumber, now)
		outcome.NextRetryAt = &nextRetry
	}

	if _, err := w.Repo.UpdateDelivery(ctx, job.DeliveryID, outcome); err != nil {
		w.Log.Error().Err(err).
			Str("delivery_id", job.DeliveryID).
			Msg("recording delivery failure")
		return
	}

	w.Log.Warn().
		Str("delivery_id", job.DeliveryID).
		Str("event_id", job.EventID).
		Int("attempt", job.AttemptNumber).
		Bool("terminal", terminal).
		Str("error", errMsg).
		Msg("delivery attempt failed")
}

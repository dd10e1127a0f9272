package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-outbox/config"
	"github.com/marcelsud/webhook-outbox/webhook"
	webhookredis "github.com/marcelsud/webhook-outbox/webhook/redis"
	"github.com/marcelsud/webhook-outbox/worker"
	"github.com/rs/zerolog"
)

/* The worker binary runs two loops: the delivery worker consuming jobs
 * from the queue, and the retry poller re-enqueueing due retries
 * Any number of worker processes may run side by side
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "webhook-worker").Logger()

	repo, err := webhookredis.NewRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer repo.Close(ctx)

	// Unique consumer name per process
	consumer := fmt.Sprintf("worker-%s", uuid.New().String())
	queue := webhookredis.NewQueue(repo.GetClient(), consumer)

	policy := webhook.RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
	}
	if err := policy.Validate(); err != nil {
		fmt.Println(err)
		return
	}

	client := &http.Client{Timeout: cfg.DeliveryTimeout}

	w := worker.NewWorker(repo, queue, policy, client, log)
	p := worker.NewPoller(repo, queue, cfg.RetryPollInterval, cfg.RetryBatchSize, log)

	go func() {
		if err := p.Run(ctx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("poller stopped")
		}
	}()

	log.Info().Str("consumer", consumer).Msg("worker started")
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		fmt.Println(err)
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcelsud/webhook-outbox/config"
	"github.com/marcelsud/webhook-outbox/events"
	"github.com/marcelsud/webhook-outbox/internal/http/chi"
	"github.com/marcelsud/webhook-outbox/metrics"
	"github.com/marcelsud/webhook-outbox/webhook"
	webhookredis "github.com/marcelsud/webhook-outbox/webhook/redis"
	"github.com/rs/zerolog"
)

const TIMEOUT = 30 * time.Second

/* main wires the packages together: configuration, storage, the event
 * dispatcher, the management service and the HTTP layer
 * Imports only point downward: the application imports the business layer,
 * which imports the storage layer
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

	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "webhook-api").Logger()

	repo, err := webhookredis.NewRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer repo.Close(ctx)

	queue := webhookredis.NewQueue(repo.GetClient(), "api")

	catalog := events.NewCatalog()
	if cfg.EventCatalogPath != "" {
		if err := catalog.Load(cfg.EventCatalogPath); err != nil {
			fmt.Println(err)
			return
		}
	}

	dispatcher := webhook.NewDispatcher(repo, repo, queue, log)

	service := webhook.NewService(repo, queue, catalog, dispatcher)
	service.MaxEndpoints = cfg.MaxEndpointsPerOrg

	collector := metrics.NewRedisCollector(repo.GetClient())
	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer exporter.Shutdown(ctx)

	r := chi.Handlers(ctx, service, dispatcher, catalog, exporter.ServeHTTP())

	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	fmt.Printf("Listening on port %s\n", cfg.Port)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		fmt.Println(err)
		return
	}
	err = <-errShutdown
	if err != nil {
		fmt.Println(err)
		return
	}
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		fmt.Printf("\nShutting down server...\n")
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	}
}

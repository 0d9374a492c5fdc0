// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/infrastructure/slack"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/metrics"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/service"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/pkg/concurrent"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/pkg/utils"
)

const gracefulShutdownSeconds = 25

// repositories are the key-value backed stores of the notifier.
type repositories struct {
	Meeting *store.NatsMeetingRepository
	Channel *store.NatsChannelRepository
}

// app holds the wired components shared by the serve and dispatch commands.
type app struct {
	cfg             config
	natsConn        *nats.Conn
	otelShutdown    func(context.Context) error
	recorder        *metrics.Recorder
	meetingService  *service.MeetingsService
	channelService  *service.ChannelsService
	dispatchService *service.DispatchService
}

// now is the current time in the notification timezone.
func (a *app) now() time.Time {
	return time.Now().In(a.cfg.Location)
}

// close drains NATS and flushes telemetry.
func (a *app) close() {
	if a.natsConn != nil && !a.natsConn.IsClosed() {
		if err := a.natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			slog.With(logging.ErrKey, err).Warn("error shutting down OpenTelemetry")
		}
	}
}

// setupApp connects to NATS, binds the key-value buckets and builds the
// services.
func setupApp(ctx context.Context, cfg config, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*app, error) {
	otelShutdown, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		return nil, fmt.Errorf("setting up OpenTelemetry: %w", err)
	}

	natsConn, err := setupNATS(ctx, cfg, gracefulCloseWG, done)
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, err
	}

	a := &app{
		cfg:          cfg,
		natsConn:     natsConn,
		otelShutdown: otelShutdown,
	}

	repos, err := getKeyValueStores(ctx, cfg, natsConn)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("getting key-value stores: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.recorder = metrics.NewRecorder(registry)

	serviceConfig := cfg.serviceConfig()
	poster := slack.NewWebhookClient(slack.Config{Timeout: cfg.WebhookTimeout})
	messageBuilder := messaging.NewMessageBuilder(natsConn)

	a.meetingService = service.NewMeetingsService(repos.Meeting, serviceConfig)
	a.channelService = service.NewChannelsService(repos.Channel, serviceConfig)
	a.dispatchService = service.NewDispatchService(
		repos.Meeting,
		repos.Channel,
		poster,
		messageBuilder,
		a.recorder,
		serviceConfig,
	)

	return a, nil
}

// setupNATS creates a NATS connection.
func setupNATS(ctx context.Context, cfg config, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)
	natsConn, err := nats.Connect(
		cfg.NatsURL,
		nats.DrainTimeout(gracefulShutdownSeconds*time.Second),
		nats.Timeout(cfg.NatsTimeout),
		nats.MaxReconnects(cfg.NatsMaxReconnect),
		nats.ReconnectWait(cfg.NatsReconnectWait),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.With("nats_url", cfg.NatsURL).Info("NATS connection established")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
			} else {
				slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if ctx.Err() != nil {
				// If our parent background context has already been canceled, this is
				// a graceful shutdown. Decrement the wait group but do not exit, to
				// allow other graceful shutdown steps to complete.
				gracefulCloseWG.Done()
				return
			}
			// Otherwise, this handler means that max reconnect attempts have been
			// exhausted.
			slog.Error("NATS max-reconnects exhausted; connection closed")
			// Send a synthetic interrupt and give any graceful-shutdown tasks 5
			// seconds to clean up.
			done <- syscall.SIGINT
			time.Sleep(5 * time.Second)
			// Exit with an error instead of decrementing the wait group.
			os.Exit(1)
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, fmt.Errorf("creating NATS client: %w", err)
	}
	return natsConn, nil
}

// getKeyValueStores binds the meeting and channel buckets, creating the ones
// that do not exist yet.
func getKeyValueStores(ctx context.Context, cfg config, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, fmt.Errorf("creating JetStream client: %w", err)
	}

	var meetingsKV, channelsKV jetstream.KeyValue
	pool := concurrent.NewWorkerPool(2)
	err = pool.Run(ctx,
		func(ctx context.Context) error {
			kv, err := bindKeyValue(ctx, js, cfg.MeetingsBucket)
			meetingsKV = kv
			return err
		},
		func(ctx context.Context) error {
			kv, err := bindKeyValue(ctx, js, cfg.ChannelsBucket)
			channelsKV = kv
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	return &repositories{
		Meeting: store.NewNatsMeetingRepository(meetingsKV),
		Channel: store.NewNatsChannelRepository(channelsKV),
	}, nil
}

func bindKeyValue(ctx context.Context, js jetstream.JetStream, bucket string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, bucket)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		slog.With("bucket", bucket).Info("creating NATS key-value bucket")
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
	}
	if err != nil {
		return nil, fmt.Errorf("binding key-value bucket %q: %w", bucket, err)
	}
	return kv, nil
}

// createNatsSubscriptions subscribes the dispatch handler to its subject.
func createNatsSubscriptions(ctx context.Context, natsConn *nats.Conn, handler domain.MessageHandler) error {
	slog.With("subject", models.DispatchSubject, "queue", models.DispatchQueue).Info("subscribing to NATS subject")
	_, err := natsConn.QueueSubscribe(models.DispatchSubject, models.DispatchQueue, func(msg *nats.Msg) {
		handler.HandleMessage(ctx, messaging.NewNatsMessage(msg))
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", models.DispatchSubject, err)
	}
	return nil
}

// gracefulShutdown stops the HTTP server and the scheduler, then drains NATS.
func gracefulShutdown(httpServer *http.Server, a *app, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("graceful shutdown started")

	// Cancel the background context.
	cancel()

	go func() {
		// Run the HTTP shutdown in a goroutine so the NATS draining can also start.
		ctx, cancelShutdown := context.WithTimeout(context.Background(), gracefulShutdownSeconds*time.Second)
		defer cancelShutdown()

		slog.Info("shutting down http server")
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.With(logging.ErrKey, err).Error("http shutdown error")
		}
		// Decrement the wait group.
		gracefulCloseWG.Done()
	}()

	// Drain the NATS connection, which will drain all subscriptions, then close
	// the connection when complete.
	a.close()

	// Wait for the HTTP graceful shutdown, the scheduler and the NATS drain.
	gracefulCloseWG.Wait()
	slog.Info("graceful shutdown complete")
}

package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/contestsync/go/clients/contest_api_client"
	"github.com/mcdev12/contestsync/go/internal/contests"
	"github.com/mcdev12/contestsync/go/internal/countdown"
	"github.com/mcdev12/contestsync/go/internal/events"
	"github.com/mcdev12/contestsync/go/internal/joinsync"
	"github.com/mcdev12/contestsync/go/internal/kvstore"
)

type Services struct {
	Client     *contest_api_client.ContestApiClient
	JoinStore  *joinsync.Store
	Reconciler *contests.Reconciler
	Countdown  *countdown.Broadcaster
	Registry   *prometheus.Registry
	Clock      clockwork.Clock

	closers []func()
}

func setupServices(ctx context.Context, cfg *Config) (*Services, error) {
	// Wire up dependency injection chain
	// Storage → Countdown; Client + JoinStore (+ metrics, events) → Reconciler
	s := &Services{
		Clock:    clockwork.NewRealClock(),
		Registry: prometheus.NewRegistry(),
	}
	s.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	storage, err := s.setupStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.Countdown = countdown.NewBroadcaster(s.Clock, storage)
	s.closers = append(s.closers, s.Countdown.Stop)

	// Contest API
	s.Client = contest_api_client.NewContestApiClient(cfg.API.BaseURL)
	s.Client.SetTimeout(cfg.API.Timeout)
	s.Client.SetRetryPolicy(cfg.API.MaxRetries, cfg.API.RetryDelay)

	s.JoinStore = joinsync.NewStore()

	metrics, err := contests.NewPrometheusMetrics(s.Registry)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	opts := []contests.Option{contests.WithMetrics(metrics), contests.WithClock(s.Clock)}

	if cfg.Events.NATSURL != "" {
		natsCfg := events.DefaultNATSConfig()
		natsCfg.URL = cfg.Events.NATSURL
		natsCfg.SubjectPrefix = cfg.Events.SubjectPrefix

		nc, err := events.ConnectNATS(natsCfg)
		if err != nil {
			s.Close()
			return nil, err
		}
		publisher := events.NewNATSPublisher(nc, natsCfg.SubjectPrefix)
		s.closers = append(s.closers, publisher.Close)
		opts = append(opts, contests.WithEventPublisher(publisher))
		log.Info().Str("url", nc.ConnectedUrl()).Msg("publishing join events to NATS")
	}

	s.Reconciler = contests.NewReconciler(s.Client, s.JoinStore, cfg.API.UserID, opts...)
	return s, nil
}

func (s *Services) setupStorage(ctx context.Context, cfg *Config) (countdown.Storage, error) {
	switch cfg.Storage.Backend {
	case StorageBolt:
		store, err := kvstore.NewBoltStore(cfg.Storage.BoltPath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close bolt store")
			}
		})
		return store, nil
	case StorageRedis:
		client, err := kvstore.DialRedis(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisPassword)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close redis client")
			}
		})
		return kvstore.NewRedisStore(client, cfg.Storage.RedisPrefix), nil
	default:
		return kvstore.NewMemoryStore(), nil
	}
}

// Close releases everything setupServices opened, newest first.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

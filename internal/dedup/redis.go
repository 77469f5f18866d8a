// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/tracing"
)

const keyPrefix = "learning-service:webhook:"

type Store struct {
	client *redis.Client
	ttl    time.Duration

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Store) Seen(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "dedup.Store.Seen")
	defer span.End()

	err := s.client.Get(ctx, keyPrefix+id).Err()
	s.recordAvailability(err)

	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to look up delivery %s: %w", id, err)
	}

	return true, nil
}

func (s *Store) Remember(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "dedup.Store.Remember")
	defer span.End()

	err := s.client.Set(ctx, keyPrefix+id, time.Now().UTC().Format(time.RFC3339), s.ttl).Err()
	s.recordAvailability(err)

	if err != nil {
		return fmt.Errorf("failed to record delivery %s: %w", id, err)
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	err := s.client.Ping(ctx).Err()
	s.recordAvailability(err)

	return err
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) recordAvailability(err error) {
	up := 1.0
	if err != nil && !errors.Is(err, redis.Nil) {
		up = 0
	}

	if mErr := s.monitor.SetDependencyAvailability(map[string]string{"component": "redis"}, up); mErr != nil {
		s.logger.Debugf("failed to record redis availability: %s", mErr)
	}
}

// NewStore connects to the redis instance at url, e.g. redis://localhost:6379/0
func NewStore(url string, ttl time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	s := new(Store)
	s.client = redis.NewClient(opts)
	s.ttl = ttl
	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s, nil
}

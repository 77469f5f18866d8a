// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
)

var _ monitoring.MonitorInterface = (*Monitor)(nil)

type Monitor struct {
	service string

	responseTime  *prometheus.HistogramVec
	dependencies  *prometheus.GaugeVec
	webhookEvents *prometheus.CounterVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

func (m *Monitor) SetResponseTimeMetric(tags map[string]string, value float64) error {
	if m.responseTime == nil {
		return fmt.Errorf("metric not instantiated")
	}

	observer, err := m.responseTime.GetMetricWith(tags)
	if err != nil {
		return err
	}

	observer.Observe(value)

	return nil
}

func (m *Monitor) SetDependencyAvailability(tags map[string]string, value float64) error {
	if m.dependencies == nil {
		return fmt.Errorf("metric not instantiated")
	}

	gauge, err := m.dependencies.GetMetricWith(tags)
	if err != nil {
		return err
	}

	gauge.Set(value)

	return nil
}

func (m *Monitor) IncWebhookEvent(tags map[string]string) error {
	if m.webhookEvents == nil {
		return fmt.Errorf("metric not instantiated")
	}

	counter, err := m.webhookEvents.GetMetricWith(tags)
	if err != nil {
		return err
	}

	counter.Inc()

	return nil
}

func (m *Monitor) registerHistograms() {
	m.responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "http_response_time_seconds",
			Help:        "http_response_time_seconds",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"route", "status"},
	)

	m.responseTime = register(m.responseTime, m.logger)
}

func (m *Monitor) registerGauges() {
	m.dependencies = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "dependency_available",
			Help:        "dependency_available",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"component"},
	)

	m.dependencies = register(m.dependencies, m.logger)
}

func (m *Monitor) registerCounters() {
	m.webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "webhook_events_total",
			Help:        "webhook events processed, by event type and outcome",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"type", "outcome"},
	)

	m.webhookEvents = register(m.webhookEvents, m.logger)
}

// register adds the collector to the default registry, reusing the existing
// collector when one with the same descriptor was registered before
func register[T prometheus.Collector](c T, logger logging.LoggerInterface) T {
	err := prometheus.Register(c)
	if err == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing
		}
	}

	logger.Errorf("failed to register collector: %v", err)

	return c
}

func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger

	m.registerHistograms()
	m.registerGauges()
	m.registerCounters()

	return m
}

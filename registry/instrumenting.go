package registry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	rates "go-currency-rate-registry"
)

// Metrics holds the prometheus instruments for the registry.
type Metrics struct {
	RateUpdatesTotal *prometheus.CounterVec
	ConversionsTotal *prometheus.CounterVec
	ErrorsTotal      *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// NewMetrics registers the registry instruments with the default
// prometheus registerer.
func NewMetrics() *Metrics {
	return &Metrics{
		RateUpdatesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_updates_total",
				Help: "Number of applied rate updates",
			},
			[]string{"code"},
		),

		ConversionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversions_total",
				Help: "Number of currency conversions",
			},
			[]string{"from", "to"},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registry_errors_total",
				Help: "Number of failed registry operations",
			},
			[]string{"method"},
		),

		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "registry_request_duration_seconds",
				Help: "Time spent in registry operations",
			},
			[]string{"method"},
		),
	}
}

// instrumentingService decorates a registry.Service with prometheus metrics
type instrumentingService struct {
	metrics *Metrics
	next    Service
}

// NewInstrumentingService returns a new instance of an instrumenting Service
func NewInstrumentingService(m *Metrics, s Service) Service {
	return &instrumentingService{
		metrics: m,
		next:    s,
	}
}

func (s *instrumentingService) Add(c *rates.Currency) {
	defer func(begin time.Time) {
		s.metrics.RequestDuration.WithLabelValues("add").Observe(time.Since(begin).Seconds())
	}(time.Now())
	s.next.Add(c)
}

func (s *instrumentingService) Currency(code rates.Code) (*rates.Currency, error) {
	defer func(begin time.Time) {
		s.metrics.RequestDuration.WithLabelValues("currency").Observe(time.Since(begin).Seconds())
	}(time.Now())

	c, err := s.next.Currency(code)
	if err != nil {
		s.metrics.ErrorsTotal.WithLabelValues("currency").Inc()
	}
	return c, err
}

func (s *instrumentingService) UpdateRate(ctx context.Context, code rates.Code, rate rates.Rate) error {
	defer func(begin time.Time) {
		s.metrics.RequestDuration.WithLabelValues("update_rate").Observe(time.Since(begin).Seconds())
	}(time.Now())

	err := s.next.UpdateRate(ctx, code, rate)
	if err != nil {
		s.metrics.ErrorsTotal.WithLabelValues("update_rate").Inc()
		return err
	}
	s.metrics.RateUpdatesTotal.WithLabelValues(string(code)).Inc()
	return nil
}

func (s *instrumentingService) Convert(ctx context.Context, amount rates.Amount, from, to rates.Code) (rates.Amount, error) {
	defer func(begin time.Time) {
		s.metrics.RequestDuration.WithLabelValues("convert").Observe(time.Since(begin).Seconds())
	}(time.Now())

	converted, err := s.next.Convert(ctx, amount, from, to)
	if err != nil {
		s.metrics.ErrorsTotal.WithLabelValues("convert").Inc()
		return converted, err
	}
	s.metrics.ConversionsTotal.WithLabelValues(string(from), string(to)).Inc()
	return converted, nil
}

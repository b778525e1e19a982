package registry

import (
	"context"
	"time"

	"github.com/go-kit/log"

	rates "go-currency-rate-registry"
)

// loggingService decorates a registry.Service with logging
type loggingService struct {
	logger log.Logger
	next   Service
}

// NewLoggingService returns a new instance of a logging Service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) Add(c *rates.Currency) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "add",
			"code", c.Code(),
			"kind", c.Kind(),
			"rate", c.Rate(),
			"took", time.Since(begin),
		)
	}(time.Now())
	s.next.Add(c)
}

func (s *loggingService) Currency(code rates.Code) (c *rates.Currency, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "currency",
			"code", code,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Currency(code)
}

func (s *loggingService) UpdateRate(ctx context.Context, code rates.Code, rate rates.Rate) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "update_rate",
			"code", code,
			"rate", rate,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpdateRate(ctx, code, rate)
}

func (s *loggingService) Convert(ctx context.Context, amount rates.Amount, from, to rates.Code) (converted rates.Amount, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "convert",
			"amount", amount,
			"from", from,
			"to", to,
			"converted_amount", converted,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Convert(ctx, amount, from, to)
}

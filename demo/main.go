// Command demo runs a fixed scenario against the rate registry: register a
// few currencies, subscribe threshold watchers, apply rate updates and
// convert an amount.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-kit/log"

	rates "go-currency-rate-registry"
	"go-currency-rate-registry/alert"
	"go-currency-rate-registry/notify"
	"go-currency-rate-registry/registry"
)

func main() {
	w := log.NewSyncWriter(os.Stderr)
	logger := log.NewLogfmtLogger(w)

	broadcaster := notify.New(log.With(logger, "component", "notify"))
	service := registry.NewService(broadcaster)
	service = registry.NewLoggingService(log.With(logger, "component", "registry"), service)

	usd := mustCurrency(logger, "USD", 1.0, rates.Fiat)
	eur := mustCurrency(logger, "EUR", 0.9, rates.Fiat)
	btc := mustCurrency(logger, "BTC", 30000, rates.Crypto)

	service.Add(usd)
	service.Add(eur)
	service.Add(btc)

	// a derived currency is not registered by the factory, the caller does it
	myc, err := rates.Derive("MYC", usd, 0.85)
	if err != nil {
		logger.Log("msg", "deriving currency", "err", err)
		os.Exit(1)
	}
	service.Add(myc)

	broadcaster.Register(alert.NewWatcher("EUR", 1.0, os.Stdout, log.With(logger, "watcher", "EUR")))
	broadcaster.Register(alert.NewWatcher("BTC", 35000, os.Stdout, log.With(logger, "watcher", "BTC")))

	ctx := context.Background()

	updates := []rates.RateChange{
		{Code: "EUR", Rate: 1.05},
		{Code: "BTC", Rate: 30000},
		{Code: "BTC", Rate: 45000},
		{Code: "XYZ", Rate: 2.0},
	}
	for _, u := range updates {
		err := service.UpdateRate(ctx, u.Code, u.Rate)
		if errors.Is(err, rates.ErrNotFound) {
			logger.Log("msg", "skipping update for unknown currency", "code", u.Code)
			continue
		}
		if err != nil {
			logger.Log("msg", "rate update failed", "code", u.Code, "err", err)
			os.Exit(1)
		}
	}

	converted, err := service.Convert(ctx, 50, "USD", "EUR")
	if err != nil {
		logger.Log("msg", "conversion failed", "err", err)
		os.Exit(1)
	}
	fmt.Printf("50 USD = %v EUR\n", float64(converted))
}

func mustCurrency(logger log.Logger, code rates.Code, rate rates.Rate, kind rates.Kind) *rates.Currency {
	c, err := rates.New(code, rate, kind)
	if err != nil {
		logger.Log("msg", "bad currency", "code", code, "err", err)
		os.Exit(1)
	}
	return c
}

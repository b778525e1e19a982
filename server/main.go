package main

import (
	"os"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-currency-rate-registry/config"
	"go-currency-rate-registry/httpapi"
	"go-currency-rate-registry/notify"
	"go-currency-rate-registry/registry"

	nhttp "net/http"
)

func main() {
	w := log.NewSyncWriter(os.Stderr)
	logger := log.NewLogfmtLogger(w)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	cfg, err := config.Load()
	if err != nil {
		logger.Log("msg", "loading config", "err", err)
		os.Exit(1)
	}

	broadcaster := notify.New(log.With(logger, "component", "notify"))

	registryService := registry.NewService(broadcaster)
	registryService = registry.NewInstrumentingService(registry.NewMetrics(), registryService)
	registryService = registry.NewLoggingService(log.With(logger, "component", "registry"), registryService)

	server := httpapi.NewServer(registryService, broadcaster, os.Stdout, log.With(logger, "component", "http"))

	mux := nhttp.NewServeMux()
	mux.Handle(cfg.MetricsPath, promhttp.Handler())
	mux.Handle("/", server)

	logger.Log("msg", "listening", "addr", cfg.Addr)
	if err := nhttp.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.Log("msg", "server stopped", "err", err)
		os.Exit(1)
	}
}

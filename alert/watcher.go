// Package alert provides threshold subscribers for rate change events.
package alert

import (
	"fmt"
	"io"

	"github.com/go-kit/log"

	rates "go-currency-rate-registry"
)

// Watcher watches a single currency code and prints an alert line whenever
// that code's rate meets or exceeds the threshold. It is immutable after
// construction and fires on every qualifying update, with no de-duplication
// or hysteresis.
type Watcher struct {
	// code the watched currency code
	code rates.Code

	// threshold the rate at or above which alerts fire
	threshold rates.Rate

	// out where alert lines are written
	out io.Writer

	// logger for logging
	logger log.Logger
}

// NewWatcher constructs a valid Watcher writing alert lines to out.
func NewWatcher(code rates.Code, threshold rates.Rate, out io.Writer, logger log.Logger) *Watcher {
	return &Watcher{
		code:      code,
		threshold: threshold,
		out:       out,
		logger:    logger,
	}
}

// HandleRateChange implements notify.Handler. Events for other codes, or
// with rates below the threshold, have no observable effect.
func (w *Watcher) HandleRateChange(ev rates.RateChange) {
	if ev.Code != w.code || ev.Rate < w.threshold {
		return
	}

	w.logger.Log("msg", "threshold reached", "code", ev.Code, "rate", ev.Rate, "threshold", w.threshold)
	fmt.Fprintf(w.out, "ALERT: %v rate %v reached threshold %v\n", ev.Code, float64(ev.Rate), float64(w.threshold))
}

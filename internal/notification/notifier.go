// Package notification delivers scan signals to external channels
// (webhooks, chat bots) and to the process log.
package notification

import (
	"context"
	"fmt"
	"log"

	"backtest-systemv1/internal/model"
)

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Notify delivers a scan signal. Returns an error if delivery fails.
	Notify(ctx context.Context, sig model.ScanSignal) error
}

// LogNotifier logs signals to the process log (useful for development).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Notify(_ context.Context, sig model.ScanSignal) error {
	log.Printf("[notify] %s %s @ %.2f target=%.2f stop=%.2f (%s, confidence %d)",
		sig.Direction, sig.Symbol, sig.Price, sig.Target, sig.StopLoss, sig.Indicator, sig.Confidence)
	return nil
}

// Fanout delivers a signal to several notifiers, logging per-backend failures
// without failing the rest.
type Fanout struct {
	backends []Notifier
}

// NewFanout creates a fanout over the given backends.
func NewFanout(backends ...Notifier) *Fanout {
	return &Fanout{backends: backends}
}

func (f *Fanout) Notify(ctx context.Context, sig model.ScanSignal) error {
	var firstErr error
	for _, b := range f.backends {
		if err := b.Notify(ctx, sig); err != nil {
			log.Printf("[notify] backend %T failed: %v", b, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("notify %T: %w", b, err)
			}
		}
	}
	return firstErr
}

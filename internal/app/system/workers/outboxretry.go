// internal/app/system/workers/outboxretry.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/webhook"
	"go.uber.org/zap"
)

// OutboxRetry is a background worker that periodically redelivers
// notifications the relay rejected.
type OutboxRetry struct {
	relay    *webhook.Client
	log      *zap.Logger
	interval time.Duration
	batch    int64
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewOutboxRetry creates a new outbox retry worker.
//
// Parameters:
//   - relay: the webhook client whose outbox should be drained
//   - logger: zap logger for logging
//   - interval: how often to run a drain pass (e.g., 5 minutes)
//   - batch: max entries attempted per pass
func NewOutboxRetry(relay *webhook.Client, logger *zap.Logger, interval time.Duration, batch int64) *OutboxRetry {
	return &OutboxRetry{
		relay:    relay,
		log:      logger,
		interval: interval,
		batch:    batch,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background retry loop.
func (w *OutboxRetry) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("outbox retry worker started",
		zap.Duration("interval", w.interval),
		zap.Int64("batch", w.batch))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *OutboxRetry) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("outbox retry worker stopped")
}

func (w *OutboxRetry) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.drain()
		}
	}
}

func (w *OutboxRetry) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	delivered, err := w.relay.DrainOutbox(ctx, w.batch)
	if err != nil {
		w.log.Error("outbox drain failed", zap.Error(err))
		return
	}
	if delivered > 0 {
		w.log.Info("redelivered outboxed notifications", zap.Int64("count", delivered))
	}
}

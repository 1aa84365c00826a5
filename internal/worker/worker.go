package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/amankumarsingh77/frame-search/internal/config"
	"github.com/amankumarsingh77/frame-search/internal/metrics"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
)

func NewWorker(cfg *config.Config, logger logger.Logger, deps Deps) *Worker {
	return &Worker{
		cfg:     cfg,
		logger:  logger,
		Deps:    deps,
		stopCh:  make(chan struct{}),
		cpuGate: utils.CheckCPUUsage,
		now:     time.Now,
	}
}

// HealthCheck verifies the database, the queue and the bucket are reachable.
func (w *Worker) HealthCheck(ctx context.Context, db HealthChecker) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if err := w.Queue.Ping(ctx); err != nil {
		return fmt.Errorf("queue unreachable: %w", err)
	}
	if err := w.AWSRepo.HeadBucket(ctx, w.cfg.S3.Bucket); err != nil {
		return fmt.Errorf("bucket %s unreachable: %w", w.cfg.S3.Bucket, err)
	}
	return nil
}

// Shutdown asks Run to return after the message in flight. It does not block.
func (w *Worker) Shutdown() {
	w.stopOnce.Do(func() {
		w.stopping.Store(true)
		close(w.stopCh)
	})
}

// Run polls the queue until Shutdown is called or ctx is done. It returns
// ErrTooManyConsecutiveErrors when receiving or acknowledging keeps failing.
func (w *Worker) Run(ctx context.Context) error {
	wcfg := w.cfg.Worker
	wait := time.Duration(wcfg.WaitTimeSeconds) * time.Second
	visibility := time.Duration(wcfg.VisibilityTimeoutSeconds) * time.Second
	pollInterval := time.Duration(wcfg.PollIntervalSeconds) * time.Second

	// Polling and sleeping end on shutdown; message processing does not.
	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-pollCtx.Done():
		}
	}()
	processCtx := context.WithoutCancel(ctx)

	w.logger.Infof("Worker started: max messages %d, wait %s, visibility timeout %s",
		wcfg.MaxMessages, wait, visibility)

	// Receive failures are cleared by the next successful receive. An
	// acknowledgement failure is only cleared by a later acknowledgement, since
	// receiving keeps working while deletes fail.
	consecutiveErrors := 0
	ackFailing := false
	resetErrors := func() {
		if !ackFailing {
			resetErrors()
		}
	}
	loopError := func(format string, args ...interface{}) error {
		consecutiveErrors++
		metrics.WorkerLoopErrors.Set(float64(consecutiveErrors))
		w.logger.Errorf(format, args...)
		w.logger.Warnf("Consecutive errors: %d/%d", consecutiveErrors, wcfg.MaxConsecutiveErrors)
		if wcfg.MaxConsecutiveErrors > 0 && consecutiveErrors >= wcfg.MaxConsecutiveErrors {
			return ErrTooManyConsecutiveErrors
		}
		return nil
	}

	for !w.isStopping() && pollCtx.Err() == nil {
		if ok, usage := w.cpuGate(wcfg.MaxCPUUsage); !ok {
			w.logger.Infof("CPU usage is high: %.1f%%, not accepting work", usage)
			w.sleep(pollCtx, pollInterval)
			continue
		}

		msgs, err := w.Queue.Receive(pollCtx, wcfg.MaxMessages, wait, visibility)
		if err != nil {
			if pollCtx.Err() != nil {
				break
			}
			if fatal := loopError("Run - Receive error: %v", err); fatal != nil {
				return fatal
			}
			w.sleep(pollCtx, pollInterval)
			continue
		}
		if !ackFailing {
			resetErrors()
		}

		if len(msgs) == 0 {
			w.logger.Debugf("No messages, waiting %s", pollInterval)
			w.sleep(pollCtx, pollInterval)
			continue
		}

		w.logger.Infof("Received %d message(s) from queue", len(msgs))
		for _, msg := range msgs {
			if w.isStopping() {
				w.logger.Info("Shutdown requested, leaving remaining messages for redelivery")
				break
			}
			acked, err := w.handleMessage(processCtx, msg)
			switch {
			case err != nil:
				ackFailing = true
				if fatal := loopError("Run - message %s error: %v", msg.ID, err); fatal != nil {
					return fatal
				}
			case acked:
				ackFailing = false
				resetErrors()
			}
		}
	}

	w.logger.Info("Worker stopped")
	return nil
}

func (w *Worker) isStopping() bool {
	return w.stopping.Load()
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

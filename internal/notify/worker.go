package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// WorkerConfig contains delivery worker configuration.
type WorkerConfig struct {
	NumWorkers   int
	BatchSize    int
	PollInterval time.Duration
	MinBackoff   time.Duration
	MaxBackoff   time.Duration
}

// DefaultWorkerConfig returns default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		NumWorkers:   2,
		BatchSize:    50,
		PollInterval: 5 * time.Second,
		MinBackoff:   time.Second,
		MaxBackoff:   5 * time.Minute,
	}
}

// Worker polls the delivery queue and posts due items to their webhook
// endpoints.
type Worker struct {
	config   WorkerConfig
	repo     Repository
	renderer *Renderer
	sender   Sender

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewWorker creates a new delivery worker.
func NewWorker(config WorkerConfig, repo Repository, renderer *Renderer, sender Sender) *Worker {
	return &Worker{
		config:   config,
		repo:     repo,
		renderer: renderer,
		sender:   sender,
		stopCh:   make(chan struct{}),
	}
}

// Start launches worker goroutines.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("starting webhook delivery worker",
		"workers", w.config.NumWorkers,
		"batch_size", w.config.BatchSize,
		"poll_interval", w.config.PollInterval,
	)

	for i := 0; i < w.config.NumWorkers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i)
	}
}

// Stop gracefully stops all workers.
func (w *Worker) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	slog.Info("webhook delivery worker stopped")
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.processBatch(ctx, workerID)
		}
	}
}

func (w *Worker) processBatch(ctx context.Context, workerID int) {
	items, err := w.repo.FetchPending(ctx, w.config.BatchSize)
	if err != nil {
		slog.Error("failed to fetch pending deliveries", "worker", workerID, "error", err)
		return
	}
	if len(items) == 0 {
		return
	}

	slog.Debug("processing deliveries", "worker", workerID, "count", len(items))
	recordQueueFetched(len(items))

	for _, item := range items {
		w.processItem(ctx, item)
	}
}

func (w *Worker) processItem(ctx context.Context, item *QueueItem) {
	start := time.Now()

	channel, err := w.repo.GetChannelByID(ctx, item.ChannelID)
	if err != nil {
		w.fail(ctx, item, err)
		return
	}
	if !channel.IsEnabled {
		w.fail(ctx, item, fmt.Errorf("channel disabled"))
		return
	}

	body, err := w.renderer.Render(item.Payload)
	if err != nil {
		w.fail(ctx, item, err)
		return
	}

	err = w.sender.Send(ctx, channel.URL, body)
	duration := time.Since(start)

	if err != nil {
		w.handleSendError(ctx, item, err)
		return
	}

	if err := w.repo.MarkAsSent(ctx, item.ID); err != nil {
		slog.Error("failed to mark delivery as sent", "item_id", item.ID, "error", err)
	}
	recordDelivery("success")
	recordDeliveryDuration(duration)

	slog.Debug("webhook delivered",
		"item_id", item.ID,
		"channel_id", channel.ID,
		"duration", duration,
	)
}

func (w *Worker) fail(ctx context.Context, item *QueueItem, cause error) {
	slog.Error("delivery failed", "item_id", item.ID, "error", cause)
	if err := w.repo.MarkAsFailed(ctx, item.ID, cause); err != nil {
		slog.Error("failed to mark delivery as failed", "item_id", item.ID, "error", err)
	}
	recordDelivery("failed")
}

func (w *Worker) handleSendError(ctx context.Context, item *QueueItem, err error) {
	slog.Warn("send failed",
		"item_id", item.ID,
		"attempt", item.Attempts+1,
		"max_attempts", item.MaxAttempts,
		"error", err,
	)

	if !isRetryable(err) || item.Attempts+1 >= item.MaxAttempts {
		w.fail(ctx, item, err)
		return
	}

	nextAttempt := time.Now().Add(w.backoff(item.Attempts + 1))
	if markErr := w.repo.MarkForRetry(ctx, item.ID, err, nextAttempt); markErr != nil {
		slog.Error("failed to mark for retry", "item_id", item.ID, "error", markErr)
	}
	recordDelivery("retry")

	slog.Info("delivery scheduled for retry",
		"item_id", item.ID,
		"next_attempt", nextAttempt,
	)
}

// backoff doubles the delay per attempt, capped at MaxBackoff.
func (w *Worker) backoff(attempt int) time.Duration {
	delay := w.config.MinBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= w.config.MaxBackoff {
			return w.config.MaxBackoff
		}
	}
	return delay
}

func isRetryable(err error) bool {
	type retryable interface {
		IsRetryable() bool
	}
	if r, ok := err.(retryable); ok {
		return r.IsRetryable()
	}
	return true
}

// RetryableError wraps an error and marks it as retryable or not.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

// IsRetryable returns whether the error is retryable.
func (e *RetryableError) IsRetryable() bool {
	return e.Retryable
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a retryable error.
func NewRetryableError(err error) *RetryableError {
	return &RetryableError{Err: err, Retryable: true}
}

// NewNonRetryableError creates a non-retryable error.
func NewNonRetryableError(err error) *RetryableError {
	return &RetryableError{Err: err, Retryable: false}
}

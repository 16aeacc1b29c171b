package queue

import (
	"context"

	"docqa-backend/internal/shared/telemetry"
)

// LocalClient dispatches extraction jobs to an in-process processor,
// detached from the submitting request. It is used when no external queue
// is configured; jobs in flight at shutdown are abandoned.
type LocalClient struct {
	proc Processor
	jobs chan Message
}

// NewLocalClient starts workers goroutines draining the local job channel.
func NewLocalClient(proc Processor, workers int) *LocalClient {
	if workers <= 0 {
		workers = 2
	}
	c := &LocalClient{
		proc: proc,
		jobs: make(chan Message, 64),
	}
	for i := 0; i < workers; i++ {
		go c.run()
	}
	return c
}

// Send enqueues a job. The caller is not blocked on processing.
func (c *LocalClient) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.jobs <- msg
	return nil
}

func (c *LocalClient) run() {
	for msg := range c.jobs {
		// Deliberately not tied to the request context: extraction outlives
		// the upload request that triggered it.
		if err := c.proc.Process(context.Background(), msg.DocumentID); err != nil {
			telemetry.Error("queue.local.process_failed", map[string]any{
				"document_id": msg.DocumentID,
				"request_id":  msg.RequestID,
				"error":       err.Error(),
			})
		}
	}
}

var _ Client = (*LocalClient)(nil)

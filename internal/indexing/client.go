package indexing

import (
	"context"

	"github.com/hibiken/asynq"
)

// Client enqueues indexing tasks on the shared Redis queue.
type Client struct {
	client *asynq.Client
	queue  string
}

// Enqueuer schedules a listing for (re)indexing in the vector store.
type Enqueuer interface {
	EnqueueIndexListing(ctx context.Context, payload IndexListingPayload) error
}

func NewClient(opt asynq.RedisClientOpt, queue string) *Client {
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) EnqueueIndexListing(ctx context.Context, payload IndexListingPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewIndexListingTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(3))
	return err
}

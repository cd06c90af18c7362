package indexing

import (
	"context"

	"inmochat_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Worker runs the asynq server that processes indexing tasks.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	indexer *Indexer
	log     *logger.Logger
}

func NewWorker(opt asynq.RedisClientOpt, queue string, concurrency int, indexer *Indexer, log *logger.Logger) *Worker {
	if queue == "" {
		queue = "default"
	}
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		indexer: indexer,
		log:     log,
	}

	mux.HandleFunc(TaskIndexListing, w.handleIndexListing)

	return w
}

func (w *Worker) handleIndexListing(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseIndexListingPayload(task)
	if err != nil {
		return err
	}

	listingID, err := uuid.Parse(payload.ListingID)
	if err != nil {
		return err
	}

	return w.indexer.IndexListing(ctx, listingID)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("indexing worker stopped", "error", err)
	}
}

package worker

import (
	"context"
	"log"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"dlex-orders/internal/model"
)

// interface in consumer side
type Processor interface {
	Operation(ctx context.Context, a, b model.OperationOrder) (model.Envelope, error)
}

// Stats counts job outcomes across workers.
type Stats struct {
	succeeded atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64
}

// Summary is a point-in-time copy of Stats.
type Summary struct {
	Succeeded int64
	Rejected  int64
	Failed    int64
}

func (s Summary) Total() int64 {
	return s.Succeeded + s.Rejected + s.Failed
}

func (s *Stats) Summary() Summary {
	return Summary{
		Succeeded: s.succeeded.Load(),
		Rejected:  s.rejected.Load(),
		Failed:    s.failed.Load(),
	}
}

type OperationWorker struct {
	Queue     <-chan Job
	Processor Processor
	Stats     *Stats
	Logger    *log.Logger
}

func NewOperationWorker(queue <-chan Job, processor Processor, stats *Stats, logger *log.Logger) *OperationWorker {
	return &OperationWorker{Queue: queue, Processor: processor, Stats: stats, Logger: logger}
}

func (w *OperationWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Logger.Printf("msg=worker_stopped reason=context_canceled")
			return
		case job, ok := <-w.Queue:
			if !ok {
				w.Logger.Printf("msg=worker_stopped reason=queue_closed")
				return
			}
			w.process(ctx, job)
		}
	}
}

func (w *OperationWorker) process(ctx context.Context, job Job) {
	env, err := w.Processor.Operation(ctx, job.First, job.Second)
	switch {
	case err != nil:
		w.Stats.failed.Add(1)
		w.Logger.Printf("msg=worker_process_failed job_id=%s err=%q", job.ID, err)
	case !env.Succeeded():
		w.Stats.rejected.Add(1)
		w.Logger.Printf("msg=operation_rejected job_id=%s first=%s second=%s message=%q",
			job.ID, job.First.OrderName, job.Second.OrderName, env.Message)
	default:
		w.Stats.succeeded.Add(1)
	}
}

// RunPool runs n workers over queue until it is closed and drained or ctx
// is done.
func RunPool(ctx context.Context, n int, queue <-chan Job, processor Processor, stats *Stats, logger *log.Logger) {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		w := NewOperationWorker(queue, processor, stats, logger)
		g.Go(func() error {
			w.Run(ctx)
			return nil
		})
	}
	_ = g.Wait()
}

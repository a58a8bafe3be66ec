package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dlex-orders/internal/model"
)

// Job is one operation request: update First, then Second.
type Job struct {
	ID     string
	First  model.OperationOrder
	Second model.OperationOrder
}

type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

type ChannelEnqueuer struct {
	Ch chan<- Job
}

func (e ChannelEnqueuer) Enqueue(ctx context.Context, job Job) error {
	select {
	case e.Ch <- job:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("enqueue job id=%s: %w", job.ID, ctx.Err())
	}
}

// AlternatingJobs builds n jobs over the same pair, flipping the update order
// on every other job so concurrent runs lock the rows in opposite order.
func AlternatingJobs(n int, a, b model.OperationOrder) []Job {
	jobs := make([]Job, n)
	for i := range jobs {
		first, second := a, b
		if i%2 == 1 {
			first, second = b, a
		}
		jobs[i] = Job{ID: uuid.NewString(), First: first, Second: second}
	}
	return jobs
}

// EnqueueAll enqueues jobs in order, stopping at the first failure.
func EnqueueAll(ctx context.Context, q Enqueuer, jobs []Job) error {
	for _, job := range jobs {
		if err := q.Enqueue(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

package queue

import (
	"context"
	"sync"

	"github.com/smallbiznis/birracraft/internal/report/domain"
)

const BackendMemory = "memory"

// MemoryQueue keeps jobs in process. It only works when the API and the
// worker share a process.
type MemoryQueue struct {
	jobs      chan domain.Job
	closed    chan struct{}
	closeOnce sync.Once
}

func NewMemory(size int) *MemoryQueue {
	if size <= 0 {
		size = 64
	}
	return &MemoryQueue{
		jobs:   make(chan domain.Job, size),
		closed: make(chan struct{}),
	}
}

func (q *MemoryQueue) Backend() string { return BackendMemory }

func (q *MemoryQueue) Enqueue(ctx context.Context, job domain.Job) error {
	select {
	case <-q.closed:
		return domain.ErrQueueClosed
	default:
	}
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return domain.ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (*domain.Job, error) {
	select {
	case job := <-q.jobs:
		return &job, nil
	case <-q.closed:
		return nil, domain.ErrQueueClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() { close(q.closed) })
	return nil
}

package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CooldownJob is one fire-and-forget unit of work spawned by a
// TransactionCreated webhook delivery.
type CooldownJob struct {
	ID            string
	TransactionID string
	Attempts      int
	EnqueuedAt    time.Time
}

type Handler func(ctx context.Context, job *CooldownJob) error

const maxAttempts = 3

// Queue is a bounded in-memory queue with a fixed worker pool. Failed
// jobs are retried with linear backoff; once attempts are exhausted the
// job is dead-lettered to the log. Suitable for a single instance; a
// multi-instance deployment would move this to an external broker.
type Queue struct {
	jobChan   chan *CooldownJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	workers   int
	backoff   time.Duration
	logger    *zap.Logger
}

func NewQueue(size, workers int, logger *zap.Logger) *Queue {
	if size <= 0 {
		size = 64
	}
	if workers <= 0 {
		workers = 4
	}
	return &Queue{
		jobChan:   make(chan *CooldownJob, size),
		closeChan: make(chan struct{}),
		workers:   workers,
		backoff:   time.Second,
		logger:    logger,
	}
}

// Enqueue submits a transaction for background processing. It never
// blocks: on a full or closed queue it reports false and the caller
// decides what to log.
func (q *Queue) Enqueue(transactionID string) bool {
	job := &CooldownJob{
		ID:            uuid.New().String(),
		TransactionID: transactionID,
		EnqueuedAt:    time.Now(),
	}
	return q.enqueue(job)
}

func (q *Queue) enqueue(job *CooldownJob) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}
	select {
	case q.jobChan <- job:
		return true
	default:
		return false
	}
}

// Start launches the worker pool. Workers run until ctx is cancelled or
// the queue is stopped.
func (q *Queue) Start(ctx context.Context, handler Handler) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
}

func (q *Queue) worker(ctx context.Context, handler Handler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.process(ctx, job, handler)
		}
	}
}

func (q *Queue) process(ctx context.Context, job *CooldownJob, handler Handler) {
	job.Attempts++

	err := handler(ctx, job)
	if err == nil {
		return
	}

	if job.Attempts < maxAttempts {
		q.logger.Warn("cooldown job failed, scheduling retry",
			zap.String("job_id", job.ID),
			zap.String("transaction_id", job.TransactionID),
			zap.Int("attempt", job.Attempts),
			zap.Error(err),
		)
		backoff := time.Duration(job.Attempts) * q.backoff
		time.AfterFunc(backoff, func() {
			if !q.enqueue(job) {
				q.deadLetter(job, err)
			}
		})
		return
	}

	q.deadLetter(job, err)
}

// deadLetter is the terminal error channel for fire-and-forget work:
// the event source never sees these failures, so they must at least be
// observable here.
func (q *Queue) deadLetter(job *CooldownJob, err error) {
	q.logger.Error("cooldown job dead-lettered",
		zap.String("job_id", job.ID),
		zap.String("transaction_id", job.TransactionID),
		zap.Int("attempts", job.Attempts),
		zap.Time("enqueued_at", job.EnqueuedAt),
		zap.Error(err),
	)
}

// Stop closes the queue and waits for in-flight jobs to finish, up to
// ctx's deadline.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

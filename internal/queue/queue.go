package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Job is a single analysis request: the target listing plus the
// comparable pool collected for it. Tag carries the caller's
// correlation id through to the result.
type Job struct {
	Tag         string
	Target      models.TargetProperty
	Comparables []models.ComparableProperty
}

// AnalysisQueue buffers analysis jobs between collectors and the
// analysis workers.
type AnalysisQueue struct {
	items   chan Job
	done    chan struct{}
	maxSize int
	closed  bool
	mu      sync.RWMutex
	logger  *logrus.Logger
}

// NewAnalysisQueue creates a queue with the given buffer size.
func NewAnalysisQueue(maxSize int, logger *logrus.Logger) *AnalysisQueue {
	if maxSize <= 0 {
		maxSize = 1
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &AnalysisQueue{
		items:   make(chan Job, maxSize),
		done:    make(chan struct{}),
		maxSize: maxSize,
		logger:  logger,
	}
}

// Push adds a job to the queue. It never blocks: when the buffer is
// full the caller gets ErrQueueFull and decides whether to retry or
// shed load.
func (q *AnalysisQueue) Push(job Job) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	select {
	case q.items <- job:
		q.logger.WithFields(logrus.Fields{
			"tag":         job.Tag,
			"comparables": len(job.Comparables),
		}).Debug("Queued analysis job")
		return nil
	default:
		return ErrQueueFull
	}
}

// Jobs exposes the receive side of the queue. After Close the channel
// drains its remaining jobs and then reports closed.
func (q *AnalysisQueue) Jobs() <-chan Job {
	return q.items
}

// Done is closed when the queue shuts down.
func (q *AnalysisQueue) Done() <-chan struct{} {
	return q.done
}

// Close shuts the queue down. Pending jobs stay readable from Jobs
// until drained. Safe to call more than once.
func (q *AnalysisQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	close(q.items)
	q.logger.Info("Analysis queue closed")
	return nil
}

// Len returns the number of buffered jobs.
func (q *AnalysisQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed.
func (q *AnalysisQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

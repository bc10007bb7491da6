package analyzer

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/queue"
)

// Result pairs a finished report with the job that produced it. Err is
// set when the target was rejected and no report could be built.
type Result struct {
	Job    queue.Job
	Report *Report
	Err    error
}

// BulkRunner drains an analysis queue with a pool of workers and hands
// every result to a single callback.
type BulkRunner struct {
	engine    *Engine
	queue     *queue.AnalysisQueue
	workers   int
	handler   func(Result)
	logger    *logrus.Logger
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewBulkRunner creates a runner over the given queue. The handler is
// called from worker goroutines and must be safe for concurrent use.
func NewBulkRunner(engine *Engine, q *queue.AnalysisQueue, workers int, handler func(Result), logger *logrus.Logger) *BulkRunner {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BulkRunner{
		engine:  engine,
		queue:   q,
		workers: workers,
		handler: handler,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker pool.
func (r *BulkRunner) Start() {
	for i := 0; i < r.workers; i++ {
		r.waitGroup.Add(1)
		go r.workLoop()
	}
	r.logger.WithField("workers", r.workers).Info("Bulk analysis started")
}

// Stop cancels the workers and waits for them to finish. Jobs already
// picked up are completed; buffered jobs are left in the queue.
func (r *BulkRunner) Stop() {
	r.cancel()
	r.waitGroup.Wait()
}

// workLoop pulls jobs until the queue drains or the runner stops.
func (r *BulkRunner) workLoop() {
	defer r.waitGroup.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case job, ok := <-r.queue.Jobs():
			if !ok {
				return
			}
			r.run(job)
		}
	}
}

// run analyzes a single job and reports the outcome to the handler.
func (r *BulkRunner) run(job queue.Job) {
	report, err := r.engine.Analyze(job.Target, job.Comparables)
	if err != nil {
		r.logger.Errorf("Analysis failed for job %s: %v", job.Tag, err)
	} else {
		r.logger.Infof("Analyzed job %s with %d comparables", job.Tag, len(job.Comparables))
	}

	if r.handler != nil {
		r.handler(Result{Job: job, Report: report, Err: err})
	}
}

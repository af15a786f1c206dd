package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/pkg/logger"
	"github.com/okian/encore/pkg/metrics"
)

// Default pool configuration constants.
const (
	defaultWorkerCount = 2
)

// Loader reloads one table from its published artifact.
type Loader interface {
	Load(ctx context.Context, table model.TableName) (int, error)
}

// Pool runs a fixed set of workers that consume refresh jobs and drive
// the loader. A failed load is logged and counted; the previously
// published table stays in place.
type Pool struct {
	workers  int
	queue    *Queue
	loader   Loader
	inflight *Inflight
	logger   logger.Logger

	wg sync.WaitGroup
}

// NewPool creates a pool consuming from queue.
func NewPool(workers int, queue *Queue, loader Loader, opts ...PoolOption) *Pool {
	if workers < 1 {
		workers = defaultWorkerCount
	}
	p := &Pool{
		workers:  workers,
		queue:    queue,
		loader:   loader,
		inflight: NewInflight(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("refresh")
	}

	metrics.UpdateLoaderWorkerCount(workers)
	return p
}

// Start launches the workers. They stop when ctx is cancelled or the
// queue is closed.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
}

// Stop waits for all workers to drain. Close the queue first so the
// workers see the end of the job stream.
func (p *Pool) Stop() {
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.queue.Dequeue():
			if !ok {
				return
			}
			p.process(ctx, job)
		}
	}
}

func (p *Pool) process(ctx context.Context, job Job) {
	if !p.inflight.Begin(job.Table) {
		metrics.RecordRefreshSkipped(string(job.Table))
		p.logger.Debug(ctx, "refresh already running, skipping",
			logger.String("table", string(job.Table)),
			logger.String("trigger", job.Trigger),
		)
		return
	}
	defer p.inflight.End(job.Table)

	start := time.Now()
	rows, err := p.loader.Load(ctx, job.Table)
	durationMs := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordTableLoadError(string(job.Table))
		metrics.RecordErrorByComponent("refresh", "load_failed")
		p.logger.Error(ctx, "table refresh failed, keeping previous content",
			logger.String("table", string(job.Table)),
			logger.String("trigger", job.Trigger),
			logger.Error(err),
		)
		return
	}

	metrics.RecordTableLoadDuration(durationMs)
	p.logger.Info(ctx, "table refreshed",
		logger.String("table", string(job.Table)),
		logger.String("trigger", job.Trigger),
		logger.Int("rows", rows),
		logger.Float64("durationMs", durationMs),
	)
}

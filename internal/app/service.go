// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"

	"github.com/okian/encore/internal/adapters/artifact"
	"github.com/okian/encore/internal/adapters/objstore"
	"github.com/okian/encore/internal/adapters/refresh"
	"github.com/okian/encore/internal/adapters/repository"
	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/internal/domain/resolve"
	"github.com/okian/encore/pkg/logger"
	"github.com/okian/encore/pkg/metrics"
)

// Service wires the table store, the artifact refresh pipeline, and the
// resolution engine behind the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     *repository.TableStore
	fetcher   objstore.Fetcher
	loader    *artifact.Loader
	resolver  *resolve.Resolver
	queue     *refresh.Queue
	pool      *refresh.Pool
	scheduler *refresh.Scheduler

	// Configuration
	oversample      int
	loaderWorkers   int
	queueSize       int
	refreshSchedule string
	artifactPrefix  string
	s3Endpoint      string
	s3Region        string
	s3Bucket        string
	s3AccessKey     string
	s3SecretKey     string
	s3Secure        bool

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		oversample:     5,
		loaderWorkers:  2,
		queueSize:      64,
		artifactPrefix: artifact.DefaultPrefix,
		s3Endpoint:     objstore.DefaultEndpoint,
		s3Secure:       true,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components: it builds the
// store, loader, and resolver, performs an initial synchronous load of
// every table, then starts the refresh pool and scheduler. Per-table
// load failures are logged but do not abort startup; the engine serves
// whatever subset of tables loaded.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting recommendation service...")

	if s.store == nil {
		s.store = repository.NewTableStore(ctx)
	}
	if s.fetcher == nil {
		client, err := objstore.New(s.s3Bucket, s.s3AccessKey, s.s3SecretKey,
			objstore.WithEndpoint(s.s3Endpoint),
			objstore.WithRegion(s.s3Region),
			objstore.WithSecure(s.s3Secure),
		)
		if err != nil {
			return err
		}
		s.fetcher = client
	}

	s.loader = artifact.NewLoader(s.fetcher, s.store,
		artifact.WithKeys(artifact.NewKeys(s.artifactPrefix)),
		artifact.WithLogger(s.logger.Named("artifact")),
	)
	s.resolver = resolve.NewResolver(s.store,
		resolve.WithOversample(s.oversample),
		resolve.WithLogger(s.logger.Named("resolve")),
	)
	s.queue = refresh.NewQueue(refresh.WithCapacity(s.queueSize))
	s.pool = refresh.NewPool(s.loaderWorkers, s.queue, s.loader,
		refresh.WithPoolLogger(s.logger.Named("refresh")),
	)
	s.scheduler = refresh.NewScheduler(s.refreshSchedule, s.queue,
		refresh.WithSchedulerLogger(s.logger.Named("refresh-schedule")),
	)

	// Initial synchronous load; any subset of tables may succeed.
	loaded := 0
	for _, table := range model.AllTables() {
		if _, err := s.loader.Load(ctx, table); err != nil {
			metrics.RecordTableLoadError(string(table))
			s.logger.Warn(ctx, "initial table load failed",
				logger.String("table", string(table)),
				logger.Error(err),
			)
			continue
		}
		loaded++
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)
	if err := s.scheduler.Start(runCtx); err != nil {
		cancel()
		return err
	}

	s.started = true
	s.logger.Info(ctx, "recommendation service started",
		logger.Int("tablesLoaded", loaded),
		logger.Int("loaderWorkers", s.loaderWorkers),
		logger.Int("refreshQueueSize", s.queueSize),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping recommendation service...")

	s.scheduler.Stop()
	_ = s.queue.Close()
	s.pool.Stop()
	if s.cancel != nil {
		s.cancel()
	}

	s.started = false
	s.logger.Info(ctx, "recommendation service stopped")
}

// Recommend resolves one recommendation query.
func (s *Service) Recommend(ctx context.Context, q resolve.Query) (resolve.Result, error) {
	s.mu.RLock()
	resolver := s.resolver
	s.mu.RUnlock()

	if resolver == nil {
		return resolve.Result{}, ErrNotStarted
	}

	res, err := resolver.Resolve(ctx, q)
	if err != nil {
		return resolve.Result{}, err
	}
	metrics.RecordTracksServed(len(res.Tracks))
	return res, nil
}

// RequestRefresh enqueues a reload of one named table, or of every
// table when name is empty. Returns the tables enqueued, or
// ErrBackpressure when the refresh queue rejected a job.
func (s *Service) RequestRefresh(ctx context.Context, name string) ([]model.TableName, error) {
	s.mu.RLock()
	queue := s.queue
	s.mu.RUnlock()

	if queue == nil {
		return nil, ErrNotStarted
	}

	tables := model.AllTables()
	if name != "" {
		table, err := model.ParseTableName(name)
		if err != nil {
			return nil, err
		}
		tables = []model.TableName{table}
	}

	for i, table := range tables {
		if !queue.Enqueue(ctx, refresh.Job{Table: table, Trigger: refresh.TriggerManual}) {
			return tables[:i], refresh.ErrBackpressure
		}
	}
	return tables, nil
}

// GetStats returns service statistics for monitoring. The three usage
// counters keep the key names the stats surface has always exposed.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
	}

	if s.resolver != nil {
		for name, value := range s.resolver.Counters().Snapshot() {
			stats[name] = value
		}
	}
	if s.store != nil {
		stats["tables"] = s.store.Stats(context.Background())
	}
	if s.queue != nil {
		stats["refresh_queue_length"] = s.queue.Len()
		stats["loader_workers"] = s.loaderWorkers
	}

	return stats
}

package smoketest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/encore/pkg/logger"
)

// Runner configuration constants.
const (
	percentageMultiplier = 100
)

// Run executes the complete recommendation smoke test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting encore smoke test",
		logger.String("runID", stats.RunID),
		logger.String("baseURL", config.BaseURL),
		logger.Int64("user", config.UserID),
		logger.Int64("unknownUser", config.UnknownUser),
		logger.Int("k", config.K),
		logger.Int("workers", config.Workers),
		logger.Int("requests", config.Requests),
		logger.String("timeout", config.Timeout.String()))

	client := newHTTPClient(config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Capture usage counters before the run
	before, err := client.fetchStats(ctx, config.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}

	// Step 3: Unknown user falls through to the popularity tier
	unknown, err := client.recommend(ctx, config.BaseURL, recommendRequest{
		UserID: config.UnknownUser,
		K:      config.K,
	})
	if err != nil {
		return fmt.Errorf("unknown-user request failed: %w", err)
	}
	stats.RequestsSent++
	stats.RequestsSuccessful++
	stats.UnknownUserTracks = len(unknown.Tracks)
	logger.Get().Info(ctx, "unknown-user request served",
		logger.Int64("user", config.UnknownUser),
		logger.Int("tracks", len(unknown.Tracks)))

	// Step 4: Known user gets personal recommendations
	known, err := client.recommend(ctx, config.BaseURL, recommendRequest{
		UserID: config.UserID,
		K:      config.K,
	})
	if err != nil {
		return fmt.Errorf("known-user request failed: %w", err)
	}
	stats.RequestsSent++
	stats.RequestsSuccessful++
	stats.KnownUserTracks = len(known.Tracks)
	logger.Get().Info(ctx, "known-user request served",
		logger.Int64("user", config.UserID),
		logger.Int("tracks", len(known.Tracks)))

	// Step 5: Determinism probe, the same request must return the same list
	repeat, err := client.recommend(ctx, config.BaseURL, recommendRequest{
		UserID: config.UserID,
		K:      config.K,
	})
	if err != nil {
		return fmt.Errorf("determinism probe failed: %w", err)
	}
	stats.RequestsSent++
	stats.RequestsSuccessful++
	stats.Deterministic = equalTracks(known.Tracks, repeat.Tracks)
	if !stats.Deterministic {
		return fmt.Errorf("determinism probe failed: identical requests returned different track lists")
	}
	logger.Get().Info(ctx, "determinism probe passed")

	// Step 6: Blended request using the head of the known-user list as history
	recent := known.Tracks
	if len(recent) > config.RecentTracks {
		recent = recent[:config.RecentTracks]
	}
	if len(recent) > 0 {
		blended, err := client.recommend(ctx, config.BaseURL, recommendRequest{
			UserID:       config.UserID,
			K:            config.K,
			RecentTracks: recent,
		})
		if err != nil {
			return fmt.Errorf("blended request failed: %w", err)
		}
		stats.RequestsSent++
		stats.RequestsSuccessful++
		stats.BlendedTracks = len(blended.Tracks)
		logger.Get().Info(ctx, "blended request served",
			logger.Int("recentTracks", len(recent)),
			logger.Int("tracks", len(blended.Tracks)))
	} else {
		logger.Get().Warn(ctx, "skipping blended request, known user returned no tracks")
	}

	// Step 7: Concurrent burst
	if err := runBurst(ctx, client, config, stats); err != nil {
		return fmt.Errorf("concurrent burst failed: %w", err)
	}

	// Step 8: Verify usage counters moved
	after, err := client.fetchStats(ctx, config.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}
	if err := verifyCounters(ctx, before, after, stats); err != nil {
		return fmt.Errorf("counter verification failed: %w", err)
	}

	// Step 9: Save the run report
	if err := saveReport(ctx, config, stats); err != nil {
		logger.Get().Warn(ctx, "failed to save run report", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "smoke test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the endpoint serves Prometheus metrics)
	if resp.StatusCode != statusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// runBurst fires config.Requests recommendation requests across a worker pool,
// alternating between the known and unknown user.
func runBurst(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	if config.Requests <= 0 || config.Workers <= 0 {
		return nil
	}

	logger.Get().Info(ctx, "running concurrent burst",
		logger.Int("requests", config.Requests),
		logger.Int("workers", config.Workers))

	var (
		successful int64
		failed     int64
	)

	jobs := make(chan int64, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for userID := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
					_, err := client.recommend(ctx, config.BaseURL, recommendRequest{
						UserID: userID,
						K:      config.K,
					})
					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							logger.Get().Warn(ctx, "burst request failed", logger.Error(err))
						}
						continue
					}
					atomic.AddInt64(&successful, 1)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < config.Requests; i++ {
			userID := config.UserID
			if i%2 == 1 {
				userID = config.UnknownUser
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- userID:
			}
		}
	}()

	wg.Wait()

	succ := int(atomic.LoadInt64(&successful))
	fail := int(atomic.LoadInt64(&failed))
	stats.RequestsSent += succ + fail
	stats.RequestsSuccessful += succ
	stats.RequestsFailed += fail

	if fail > 0 {
		return fmt.Errorf("%d of %d burst requests failed", fail, succ+fail)
	}

	logger.Get().Info(ctx, "concurrent burst completed", logger.Int("successful", succ))
	return nil
}

// equalTracks reports whether two track lists are identical, order included.
func equalTracks(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.RequestsSent > 0 {
		successRate = float64(stats.RequestsSuccessful) / float64(stats.RequestsSent) * percentageMultiplier
	}

	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.RequestsSent) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.String("runID", stats.RunID),
		logger.Int("requestsSent", stats.RequestsSent),
		logger.Int("requestsSuccessful", stats.RequestsSuccessful),
		logger.Int("requestsFailed", stats.RequestsFailed),
		logger.Int("knownUserTracks", stats.KnownUserTracks),
		logger.Int("unknownUserTracks", stats.UnknownUserTracks),
		logger.Int("blendedTracks", stats.BlendedTracks),
		logger.Any("deterministic", stats.Deterministic),
		logger.Any("countersVerified", stats.CountersVerified),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}

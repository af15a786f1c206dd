package smoketest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/encore/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	reportPermission    = 0600
)

// Usage counter keys exposed by /stats.
const (
	counterPersonal = "request_personal_count"
	counterDefault  = "request_default_count"
	counterOnline   = "request_with_online_count"
)

// verifyCounters checks that the service-side usage counters moved during the
// run. At least one of the personal or default counters must have advanced,
// and the online counter must have advanced when a blended request was made.
func verifyCounters(ctx context.Context, before, after map[string]interface{}, stats *Stats) error {
	personalDelta := counterValue(after, counterPersonal) - counterValue(before, counterPersonal)
	defaultDelta := counterValue(after, counterDefault) - counterValue(before, counterDefault)
	onlineDelta := counterValue(after, counterOnline) - counterValue(before, counterOnline)

	logger.Get().Info(ctx, "usage counter deltas",
		logger.Int64("personal", personalDelta),
		logger.Int64("default", defaultDelta),
		logger.Int64("online", onlineDelta))

	if personalDelta < 0 || defaultDelta < 0 || onlineDelta < 0 {
		return fmt.Errorf("usage counters moved backwards")
	}

	if personalDelta+defaultDelta == 0 {
		return fmt.Errorf("no usage counter advanced during the run")
	}

	if stats.BlendedTracks > 0 && onlineDelta == 0 {
		return fmt.Errorf("blended request served but online counter did not advance")
	}

	stats.CountersVerified = true
	logger.Get().Info(ctx, "usage counters verified")
	return nil
}

// counterValue extracts a numeric stats value, tolerating the float64 shape
// JSON decoding produces.
func counterValue(stats map[string]interface{}, key string) int64 {
	switch v := stats[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

// report is the JSON document written at the end of a run.
type report struct {
	RunID              string    `json:"run_id"`
	BaseURL            string    `json:"base_url"`
	UserID             int64     `json:"user_id"`
	UnknownUser        int64     `json:"unknown_user"`
	K                  int       `json:"k"`
	RequestsSent       int       `json:"requests_sent"`
	RequestsSuccessful int       `json:"requests_successful"`
	RequestsFailed     int       `json:"requests_failed"`
	KnownUserTracks    int       `json:"known_user_tracks"`
	UnknownUserTracks  int       `json:"unknown_user_tracks"`
	BlendedTracks      int       `json:"blended_tracks"`
	Deterministic      bool      `json:"deterministic"`
	CountersVerified   bool      `json:"counters_verified"`
	StartedAt          time.Time `json:"started_at"`
}

// saveReport writes the run report to a JSON file.
func saveReport(ctx context.Context, config *Config, stats *Stats) error {
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "smoke_report_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	doc := report{
		RunID:              stats.RunID,
		BaseURL:            config.BaseURL,
		UserID:             config.UserID,
		UnknownUser:        config.UnknownUser,
		K:                  config.K,
		RequestsSent:       stats.RequestsSent,
		RequestsSuccessful: stats.RequestsSuccessful,
		RequestsFailed:     stats.RequestsFailed,
		KnownUserTracks:    stats.KnownUserTracks,
		UnknownUserTracks:  stats.UnknownUserTracks,
		BlendedTracks:      stats.BlendedTracks,
		Deterministic:      stats.Deterministic,
		CountersVerified:   stats.CountersVerified,
		StartedAt:          stats.StartTime,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(filename, data, reportPermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Get().Info(ctx, "run report saved", logger.String("filename", filename))
	return nil
}

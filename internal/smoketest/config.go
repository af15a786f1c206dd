package smoketest

import "time"

// Config holds configuration for the recommendation smoke test
type Config struct {
	BaseURL      string        // Base URL of the service
	UserID       int64         // User expected to have personal recommendations
	UnknownUser  int64         // User expected to fall through to the default tier
	K            int           // Number of tracks to request
	RecentTracks int           // Number of recent tracks to feed into blended requests
	Workers      int           // Number of concurrent workers for the burst step
	Requests     int           // Number of requests in the concurrent burst
	Timeout      time.Duration // HTTP request timeout
	OutputFile   string        // Output file for the run report
	LogFile      string        // Log file for test output
	Verbose      bool          // Enable verbose logging
}

// recommendRequest is the payload sent to POST /recommend.
type recommendRequest struct {
	UserID       int64   `json:"user_id"`
	K            int     `json:"k"`
	RecentTracks []int64 `json:"recent_tracks,omitempty"`
}

// recommendResponse is the payload returned by POST /recommend.
type recommendResponse struct {
	UserID int64   `json:"user_id"`
	Tracks []int64 `json:"tracks"`
}

// Stats holds smoke test statistics
type Stats struct {
	RunID              string
	RequestsSent       int
	RequestsSuccessful int
	RequestsFailed     int
	KnownUserTracks    int
	UnknownUserTracks  int
	BlendedTracks      int
	Deterministic      bool
	CountersVerified   bool
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/encore/internal/smoketest"
)

// Default configuration constants.
const (
	defaultUserID       = 42
	defaultUnknownShift = 99999999
	defaultK            = 20
	defaultRecentTracks = 3
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultRequests     = 200
	defaultTimeout      = 30 * time.Second
	defaultTestTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:8080", "Base URL of the service")
		userID       = flag.Int64("user", defaultUserID, "User id expected to have personal recommendations")
		unknownUser  = flag.Int64("unknown-user", 0, "User id expected to fall through to the popularity tier (default user + 99999999)")
		k            = flag.Int("k", defaultK, "Number of tracks to request")
		recentTracks = flag.Int("recent", defaultRecentTracks, "Number of recent tracks to feed into blended requests")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		requests     = flag.Int("requests", defaultRequests, "Number of requests in the concurrent burst")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile   = flag.String("output", "", "Output file for the run report (default: smoke_report_TIMESTAMP.json)")
		logFile      = flag.String("log", "", "Log file for test output (default: smoke_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoketest.ShowHelp()
		return
	}

	// Setup logging
	if err := smoketest.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	unknown := *unknownUser
	if unknown == 0 {
		unknown = *userID + defaultUnknownShift
	}

	// Create test configuration
	config := &smoketest.Config{
		BaseURL:      *baseURL,
		UserID:       *userID,
		UnknownUser:  unknown,
		K:            *k,
		RecentTracks: *recentTracks,
		Workers:      *workers,
		Requests:     *requests,
		Timeout:      *timeout,
		OutputFile:   *outputFile,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	// Run the test
	if err := smoketest.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Smoke test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

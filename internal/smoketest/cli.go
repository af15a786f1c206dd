package smoketest

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/encore/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "smoke_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the smoke test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Encore Recommendation Smoke Test
================================

A concurrent tool for exercising the Encore recommendation service end to end.

Usage:
  go run cmd/smoke-test/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -user int
        User id expected to have personal recommendations (default 42)
  -unknown-user int
        User id expected to fall through to the popularity tier
        (default user + 99999999)
  -k int
        Number of tracks to request (default 20)
  -recent int
        Number of recent tracks to feed into blended requests (default 3)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -requests int
        Number of requests in the concurrent burst (default 200)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for the run report (default: smoke_report_TIMESTAMP.json)
  -log string
        Log file for test output (default: smoke_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/smoke-test/main.go

  # Test a specific user against a remote instance
  go run cmd/smoke-test/main.go -url http://recs.internal:8080 -user 123456 -k 50

  # Heavier concurrent burst
  go run cmd/smoke-test/main.go -workers 16 -requests 2000
`)
}

package testevents

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/climadash/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "test_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	if err := logger.Init(logger.WithOutput(multiWriter)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the test events tool.
func ShowHelp() {
	os.Stdout.WriteString(`climadash UI event driver
=========================

Plays scripted UI interactions against every dashboard page and checks that
each page ends up showing the filter the script asked for.

Usage:
  go run cmd/test-events/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -pages string
        Comma separated pages to drive (default: all pages)
  -rounds int
        Interaction rounds per page (default 20)
  -workers int
        Pages driven concurrently (default 4)
  -duplicates float
        Share of events posted twice to exercise idempotency (default 0.1)
  -timeout duration
        HTTP request timeout (default 10s)
  -settle duration
        How long to wait for the final state of each page (default 30s)
  -output string
        Output file for the generated script (default: generated_script_TIMESTAMP.json)
  -log string
        Log file for test output (default: test_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Drive every page with default settings
  go run cmd/test-events/main.go

  # Hammer the emissions page only
  go run cmd/test-events/main.go -pages emissions -rounds 500 -duplicates 0.3
`)
}

package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/okian/climadash/internal/testevents"
)

// Default configuration constants.
const (
	defaultRounds        = 20
	defaultWorkers       = 4
	defaultDuplicateRate = 0.1
	defaultTimeout       = 10 * time.Second
	defaultSettle        = 30 * time.Second
	defaultTestTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		pages      = flag.String("pages", "", "Comma separated pages to drive (default: all)")
		rounds     = flag.Int("rounds", defaultRounds, "Interaction rounds per page")
		workers    = flag.Int("workers", defaultWorkers, "Pages driven concurrently")
		duplicates = flag.Float64("duplicates", defaultDuplicateRate, "Share of events posted twice")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", defaultSettle, "How long to wait for the final state of each page")
		outputFile = flag.String("output", "", "Output file for the generated script (default: generated_script_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testevents.ShowHelp()
		return
	}

	if err := testevents.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	var pageList []string
	if *pages != "" {
		pageList = strings.Split(*pages, ",")
	}

	config := &testevents.Config{
		BaseURL:       strings.TrimRight(*baseURL, "/"),
		Pages:         pageList,
		Rounds:        *rounds,
		Workers:       *workers,
		DuplicateRate: *duplicates,
		Timeout:       *timeout,
		Settle:        *settle,
		OutputFile:    *outputFile,
		LogFile:       *logFile,
		Verbose:       *verbose,
	}

	if err := testevents.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: cancel is called above
	}
}

package testevents

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/climadash/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes the complete scripted test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting climadash UI event test",
		logger.String("baseURL", config.BaseURL),
		logger.Strings("pages", config.Pages),
		logger.Int("rounds", config.Rounds),
		logger.Int("workers", config.Workers),
		logger.Float64("duplicateRate", config.DuplicateRate),
		logger.Duration("timeout", config.Timeout),
		logger.Duration("settle", config.Settle))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Discover pages and their controls
	pages, err := fetchPages(ctx, config)
	if err != nil {
		return fmt.Errorf("page discovery failed: %w", err)
	}

	// Step 3: Generate scripts
	scripts, err := generateScripts(ctx, config, pages, stats)
	if err != nil {
		return fmt.Errorf("script generation failed: %w", err)
	}

	// Step 4: Save the scripts so a failing run can be replayed by hand
	if err := saveScripts(ctx, config, scripts); err != nil {
		logger.Get().Warn(ctx, "failed to save scripts to file", logger.Error(err))
	}

	// Step 5: Submit events
	submitScripts(ctx, config, scripts, stats)

	// Step 6: Verify the pages settled on the scripted filters
	verifyErr := verifyResults(ctx, config, scripts, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if verifyErr != nil {
		return fmt.Errorf("result verification failed: %w", verifyErr)
	}
	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := newHTTPClient(config.Timeout).Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveScripts writes the generated scripts to a JSON file.
func saveScripts(ctx context.Context, config *Config, scripts []Script) error {
	if len(scripts) == 0 {
		return fmt.Errorf("no scripts to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_script_" + timestamp + ".json"
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(scripts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scripts: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "scripts saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, eventsPerSecond float64

	if stats.EventsSubmitted > 0 {
		successRate = float64(stats.EventsSuccessful+stats.EventsDuplicate) / float64(stats.EventsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("stepsGenerated", stats.StepsGenerated),
		logger.Int("eventsSubmitted", stats.EventsSubmitted),
		logger.Int("eventsSuccessful", stats.EventsSuccessful),
		logger.Int("eventsDuplicate", stats.EventsDuplicate),
		logger.Int("eventsFailed", stats.EventsFailed),
		logger.Int("pagesVerified", stats.PagesVerified),
		logger.Int("pagesMismatched", stats.PagesMismatched),
		logger.Int("pagesFailed", stats.PagesFailed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("eventsPerSecond", eventsPerSecond))
}

package testevents

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"
)

// verifyResults waits for every page to publish the filter its script ended
// with. A page that published an error fallback still counts as verified
// when the filter matches.
func verifyResults(ctx context.Context, config *Config, scripts []Script, stats *Stats) error {
	log.Println("Verifying results...")

	client := newHTTPClient(config.Timeout)
	var mismatches []string
	for _, s := range scripts {
		view, err := waitForExpectation(ctx, client, config, s.Expect)
		if err != nil {
			stats.PagesMismatched++
			mismatches = append(mismatches, fmt.Sprintf("%s: %v", s.Expect.Page, err))
			continue
		}
		stats.PagesVerified++
		if view.Error != nil {
			stats.PagesFailed++
			log.Printf("%s settled in error state: %s: %s", s.Expect.Page, view.Error.Kind, view.Error.Message)
			continue
		}
		log.Printf("%s verified at revision %d: %s", s.Expect.Page, view.Revision, view.Insight.Title)
	}

	if len(mismatches) > 0 {
		for _, m := range mismatches {
			log.Printf("mismatch: %s", m)
		}
		return fmt.Errorf("%d of %d pages did not settle on the expected filter", len(mismatches), len(scripts))
	}
	log.Println("Result verification completed")
	return nil
}

// waitForExpectation polls the view of a page until it matches or the
// settle time runs out.
func waitForExpectation(ctx context.Context, client *HTTPClient, config *Config, exp Expectation) (viewResponse, error) {
	deadline := time.Now().Add(config.Settle)
	var last viewResponse
	var lastErr error
	for {
		var v viewResponse
		code, err := client.getJSON(ctx, config.BaseURL+"/pages/"+exp.Page+"/view", &v)
		switch {
		case err != nil:
			lastErr = err
		case code != StatusOK:
			lastErr = fmt.Errorf("view returned status %d", code)
		default:
			last = v
			if lastErr = matches(exp, v.Filter); lastErr == nil {
				return v, nil
			}
		}
		if time.Now().After(deadline) {
			return last, lastErr
		}
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(PollInterval):
		}
	}
}

// matches reports how f differs from exp.
func matches(exp Expectation, f filterJSON) error {
	if f.Mode != exp.Mode {
		return fmt.Errorf("mode %s, want %s", f.Mode, exp.Mode)
	}
	if f.YearStart != exp.YearStart || f.YearEnd != exp.YearEnd {
		return fmt.Errorf("years %d-%d, want %d-%d", f.YearStart, f.YearEnd, exp.YearStart, exp.YearEnd)
	}
	if exp.CheckEntities && !slices.Equal(normalise(f.Entities), exp.Entities) {
		return fmt.Errorf("entities %v, want %v", f.Entities, exp.Entities)
	}
	return nil
}

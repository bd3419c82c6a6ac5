package testevents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/climadash/internal/domain/types"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// getJSON decodes a 200 response from url into v.
func (c *HTTPClient) getJSON(ctx context.Context, url string, v any) (int, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read body: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, json.Unmarshal(body, v)
}

// fetchPages lists the pages the service offers.
func fetchPages(ctx context.Context, config *Config) ([]types.PageInfo, error) {
	var pages []types.PageInfo
	code, err := newHTTPClient(config.Timeout).getJSON(ctx, config.BaseURL+"/pages", &pages)
	if err != nil {
		return nil, err
	}
	if code != StatusOK {
		return nil, fmt.Errorf("list pages failed with status: %d", code)
	}
	return pages, nil
}

// submitScripts plays every script, one goroutine per page and at most
// config.Workers pages at a time. Steps of a page are posted in order.
func submitScripts(ctx context.Context, config *Config, scripts []Script, stats *Stats) {
	log.Printf("Submitting %d scripts with %d workers...", len(scripts), config.Workers)

	client := newHTTPClient(config.Timeout)
	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)
	count := func(result string) {
		atomic.AddInt64(&submitted, 1)
		switch result {
		case "success":
			atomic.AddInt64(&successful, 1)
		case "duplicate":
			atomic.AddInt64(&duplicate, 1)
		default:
			atomic.AddInt64(&failed, 1)
		}
	}

	sem := make(chan struct{}, max(config.Workers, 1))
	var wg sync.WaitGroup
	for _, s := range scripts {
		wg.Add(1)
		go func(s Script) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			for _, step := range s.Steps {
				if ctx.Err() != nil {
					return
				}
				url := config.BaseURL + "/pages/" + step.Page + "/events"
				result := submitSingleEvent(ctx, client, url, step.Event)
				count(result)
				if result == "success" && getRandomFloat() < config.DuplicateRate {
					count(submitSingleEvent(ctx, client, url, step.Event))
				}
				if config.Verbose {
					log.Printf("%s %s -> %s", step.Page, step.Event.Kind, result)
				}
			}
		}(s)
	}
	wg.Wait()

	stats.EventsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.EventsSuccessful = int(atomic.LoadInt64(&successful))
	stats.EventsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.EventsFailed = int(atomic.LoadInt64(&failed))

	log.Printf("Event submission completed: successful %d, duplicate %d, failed %d",
		stats.EventsSuccessful, stats.EventsDuplicate, stats.EventsFailed)
}

// submitSingleEvent submits a single event and returns the result.
// A full mailbox is retried with a short backoff.
func submitSingleEvent(ctx context.Context, client *HTTPClient, url string, event Event) string {
	const retries = 5
	for attempt := range retries {
		resp, err := client.Post(ctx, url, event)
		if err != nil {
			return "failed"
		}
		var ack types.EventResponse
		_ = json.NewDecoder(resp.Body).Decode(&ack)
		resp.Body.Close()

		switch resp.StatusCode {
		case StatusAccepted:
			return "success"
		case StatusOK:
			return "duplicate"
		case http.StatusTooManyRequests:
			select {
			case <-ctx.Done():
				return "failed"
			case <-time.After(time.Duration(attempt+1) * 50 * time.Millisecond):
			}
		default:
			return "failed"
		}
	}
	return "failed"
}

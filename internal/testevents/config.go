package testevents

import (
	"time"

	"github.com/okian/climadash/internal/domain/types"
)

// Config holds configuration for the scripted UI test
type Config struct {
	BaseURL       string        // Base URL of the service
	Pages         []string      // Pages to drive, empty for all
	Rounds        int           // Interaction rounds per page
	Workers       int           // Pages driven concurrently
	DuplicateRate float64       // Share of events posted twice
	Timeout       time.Duration // HTTP request timeout
	Settle        time.Duration // How long to wait for the final state
	OutputFile    string        // Output file for the generated script
	LogFile       string        // Log file for test output
	Verbose       bool          // Enable verbose logging
}

// Event is the request body posted for one interaction.
type Event = types.EventRequest

// Step is one scripted interaction addressed to a page.
type Step struct {
	Page  string `json:"page"`
	Event Event  `json:"event"`
}

// Expectation is the filter a page must show once its script has run.
type Expectation struct {
	Page          string   `json:"page"`
	Mode          string   `json:"mode"`
	YearStart     int      `json:"year_start"`
	YearEnd       int      `json:"year_end"`
	Entities      []string `json:"entities,omitempty"`
	CheckEntities bool     `json:"check_entities"`
}

// Script is the generated interaction sequence of one page.
type Script struct {
	Steps  []Step      `json:"steps"`
	Expect Expectation `json:"expect"`
}

// filterJSON mirrors the filter of a publication.
type filterJSON struct {
	YearStart int      `json:"year_start"`
	YearEnd   int      `json:"year_end"`
	Entities  []string `json:"entities"`
	Mode      string   `json:"mode"`
}

// viewResponse is the subset of a publication the tool checks.
type viewResponse struct {
	Revision uint64     `json:"revision"`
	State    string     `json:"state"`
	Filter   filterJSON `json:"filter"`
	Insight  struct {
		Title string `json:"title"`
	} `json:"insight"`
	Error *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// Stats holds test statistics
type Stats struct {
	StepsGenerated   int
	EventsSubmitted  int
	EventsSuccessful int
	EventsDuplicate  int
	EventsFailed     int
	PagesVerified    int
	PagesMismatched  int
	PagesFailed      int // verified pages whose publication is an error fallback
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

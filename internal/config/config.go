// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Source files loaded at startup.
	TemperaturePath string `koanf:"temperature_path"`
	SeaLevelPath    string `koanf:"sea_level_path"`
	EmissionsPath   string `koanf:"emissions_path"`
	// StatesDir holds optional "<Country>.csv" state temperatures for the
	// regional detail. A missing directory disables it.
	StatesDir string `koanf:"states_dir"`

	// TopN is the size of the default emitter selection and the top10 preset.
	TopN int `koanf:"top_n"`
	// ProjectionYears is how far the sea level trend is extended.
	ProjectionYears int `koanf:"projection_years"`
	// RollingWindow is the sea level rolling mean window, in months.
	RollingWindow int `koanf:"rolling_window"`
	// CorrelationStart and CorrelationEnd bound the correlation page and the
	// initial emissions range.
	CorrelationStart int `koanf:"correlation_start"`
	CorrelationEnd   int `koanf:"correlation_end"`

	// CountryGroups and Regions replace the built-in presets when set.
	CountryGroups map[string][]string `koanf:"country_groups"`
	Regions       map[string][]string `koanf:"regions"`

	// AnimationInterval is the time between animation ticks.
	AnimationInterval time.Duration `koanf:"animation_interval"`

	// QueueSize bounds each page mailbox.
	QueueSize int `koanf:"queue_size"`
	// DedupeSize sets how many event ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`
	// HistorySize sets how many publications are kept per page.
	HistorySize int `koanf:"history_size"`

	// ChartWidth and ChartHeight size the PNG charts.
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		TemperaturePath:   "data/GlobalLandTemperaturesByCountry.csv",
		SeaLevelPath:      "data/Global_Sea_Level_Rise.csv",
		EmissionsPath:     "data/Historical_Emissions.csv",
		StatesDir:         "data/by_country_temp",
		TopN:              10,
		ProjectionYears:   50,
		RollingWindow:     12,
		CorrelationStart:  1990,
		CorrelationEnd:    2018,
		AnimationInterval: time.Second,
		QueueSize:         64,
		DedupeSize:        1024,
		HistorySize:       32,
		ChartWidth:        960,
		ChartHeight:       540,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TemperaturePath == "" || c.SeaLevelPath == "" || c.EmissionsPath == "":
		return fmt.Errorf("%w: every dataset path must be set", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	case c.TopN < 1:
		return fmt.Errorf("%w: top_n must be positive", ErrInvalidConfig)
	case c.ProjectionYears < 0:
		return fmt.Errorf("%w: projection_years must not be negative", ErrInvalidConfig)
	case c.RollingWindow < 1:
		return fmt.Errorf("%w: rolling_window must be positive", ErrInvalidConfig)
	case c.CorrelationEnd < c.CorrelationStart:
		return fmt.Errorf("%w: correlation_end before correlation_start", ErrInvalidConfig)
	case c.AnimationInterval <= 0:
		return fmt.Errorf("%w: animation_interval must be positive", ErrInvalidConfig)
	case c.QueueSize < 1 || c.DedupeSize < 1 || c.HistorySize < 1:
		return fmt.Errorf("%w: queue_size, dedupe_size and history_size must be positive", ErrInvalidConfig)
	case c.ChartWidth < 1 || c.ChartHeight < 1:
		return fmt.Errorf("%w: chart size must be positive", ErrInvalidConfig)
	}
	return nil
}

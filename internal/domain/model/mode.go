package model

import "fmt"

// Page is one dashboard page. Each page owns its own filter state.
type Page int

const (
	PageUnknown Page = iota
	PageTemperature
	PageSeaLevel
	PageEmissions
	PageCorrelation
	pageCount
)

var pageNames = [pageCount]string{"unknown", "temperature", "sea_level", "emissions", "correlation"}

// Pages lists every valid page in display order.
func Pages() []Page {
	return []Page{PageTemperature, PageSeaLevel, PageEmissions, PageCorrelation}
}

func (p Page) Valid() bool { return p > PageUnknown && p < pageCount }

func (p Page) String() string {
	if !p.Valid() {
		return pageNames[0]
	}
	return pageNames[p]
}

// ParsePage resolves a page name.
func ParsePage(s string) (Page, error) {
	for p := PageTemperature; p < pageCount; p++ {
		if pageNames[p] == s {
			return p, nil
		}
	}
	return PageUnknown, fmt.Errorf("unknown page %q", s)
}

// Live reports whether control changes recompute immediately. Other pages
// recompute only on an explicit update.
func (p Page) Live() bool { return p == PageTemperature || p == PageSeaLevel }

// Animated reports whether the page supports play/stop of its year.
func (p Page) Animated() bool { return p == PageTemperature }

// DefaultMode returns the mode a page opens with.
func (p Page) DefaultMode() Mode {
	switch p {
	case PageTemperature:
		return ModeTemperatureMap
	case PageSeaLevel:
		return ModeSeaLevelSeries
	case PageEmissions:
		return ModeEmissionsCountry
	case PageCorrelation:
		return ModeCorrelationTime
	default:
		return ModeUnknown
	}
}

// Modes returns the modes available on p.
func (p Page) Modes() []Mode {
	var out []Mode
	for m := Mode(1); m < ModeCount; m++ {
		if m.Page() == p {
			out = append(out, m)
		}
	}
	return out
}

// Mode selects the derived view, insight and chart family for a page.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeTemperatureMap
	ModeTemperatureComparison
	ModeTemperatureTrend
	ModeTemperatureRegional
	ModeSeaLevelSeries
	ModeSeaLevelProjection
	ModeSeaLevelRate
	ModeSeaLevelSeasonal
	ModeEmissionsCountry
	ModeEmissionsTrend
	ModeEmissionsRegion
	ModeCorrelationTime
	ModeCorrelationMatrix
	ModeCorrelationScatter
	ModeCorrelationDashboard
	// ModeCount is the number of modes including ModeUnknown. Per-mode tables
	// are sized by it.
	ModeCount
)

type modeInfo struct {
	name  string
	page  Page
	title string
}

var modes = [ModeCount]modeInfo{
	ModeUnknown:               {"unknown", PageUnknown, ""},
	ModeTemperatureMap:        {"temperature.map", PageTemperature, "Average temperature by country"},
	ModeTemperatureComparison: {"temperature.comparison", PageTemperature, "Temperature comparison"},
	ModeTemperatureTrend:      {"temperature.trend", PageTemperature, "Temperature trend"},
	ModeTemperatureRegional:   {"temperature.regional", PageTemperature, "Regional temperatures"},
	ModeSeaLevelSeries:        {"sea_level.series", PageSeaLevel, "Global mean sea level"},
	ModeSeaLevelProjection:    {"sea_level.projection", PageSeaLevel, "Sea level projection"},
	ModeSeaLevelRate:          {"sea_level.rate", PageSeaLevel, "Annual rate of sea level change"},
	ModeSeaLevelSeasonal:      {"sea_level.seasonal", PageSeaLevel, "Seasonal sea level pattern"},
	ModeEmissionsCountry:      {"emissions.country", PageEmissions, "CO2 emissions by country"},
	ModeEmissionsTrend:        {"emissions.trend", PageEmissions, "CO2 emissions trend"},
	ModeEmissionsRegion:       {"emissions.region", PageEmissions, "CO2 emissions by region"},
	ModeCorrelationTime:       {"correlation.time", PageCorrelation, "Climate indicators over time"},
	ModeCorrelationMatrix:     {"correlation.matrix", PageCorrelation, "Correlation matrix"},
	ModeCorrelationScatter:    {"correlation.scatter", PageCorrelation, "Indicator relationships"},
	ModeCorrelationDashboard:  {"correlation.dashboard", PageCorrelation, "Climate change dashboard"},
}

func (m Mode) Valid() bool { return m > ModeUnknown && m < ModeCount }

func (m Mode) String() string {
	if !m.Valid() {
		return modes[ModeUnknown].name
	}
	return modes[m].name
}

// Page returns the page m belongs to.
func (m Mode) Page() Page {
	if !m.Valid() {
		return PageUnknown
	}
	return modes[m].page
}

// Title returns the display title of m.
func (m Mode) Title() string {
	if !m.Valid() {
		return ""
	}
	return modes[m].title
}

// SingleYear reports whether m shows one year at a time. The temperature
// animation steps through these modes only.
func (m Mode) SingleYear() bool {
	switch m {
	case ModeTemperatureMap, ModeTemperatureComparison, ModeTemperatureRegional:
		return true
	default:
		return false
	}
}

// ParseMode resolves a mode name such as "emissions.trend".
func ParseMode(s string) (Mode, error) {
	for m := Mode(1); m < ModeCount; m++ {
		if modes[m].name == s {
			return m, nil
		}
	}
	return ModeUnknown, fmt.Errorf("%w: unknown mode %q", ErrInvalidFilter, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p Page) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Page) UnmarshalText(b []byte) error {
	v, err := ParsePage(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

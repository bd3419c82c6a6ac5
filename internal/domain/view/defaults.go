package view

// DefaultRegions groups countries into the regions of the emissions page.
func DefaultRegions() map[string][]string {
	return map[string][]string{
		"North America": {"United States", "Canada", "Mexico"},
		"Europe": {"Germany", "United Kingdom", "France", "Italy", "Spain", "Poland",
			"Netherlands", "Belgium", "Sweden", "Austria", "Switzerland"},
		"Asia": {"China", "Japan", "India", "South Korea", "Indonesia", "Saudi Arabia",
			"Iran", "Thailand", "Malaysia"},
		"South America": {"Brazil", "Argentina", "Colombia", "Venezuela", "Chile", "Peru"},
		"Africa":        {"South Africa", "Egypt", "Nigeria", "Algeria", "Morocco"},
		"Oceania":       {"Australia", "New Zealand"},
	}
}

// DefaultGroups are the preset country selections.
func DefaultGroups() map[string][]string {
	return map[string][]string{
		"G7":    {"United States", "United Kingdom", "Canada", "France", "Germany", "Italy", "Japan"},
		"BRICS": {"Brazil", "Russia", "India", "China", "South Africa"},
	}
}

// Preset names resolved without a configured member list.
const (
	GroupTop   = "top10"
	GroupClear = "clear"
)

const (
	defaultTopN            = 10
	defaultProjectionYears = 50
	defaultRollingWindow   = 12
	defaultCorrStart       = 1990
	defaultCorrEnd         = 2018
)

package testevents

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/climadash/internal/domain/types"
	"github.com/okian/climadash/pkg/logger"
)

const maxPickedEntities = 3

// randInt returns a uniform integer in [0, n) using crypto/rand.
func randInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	const divisor = 1000000
	return float64(randInt(divisor)) / divisor
}

// generateScripts builds one script per selected page.
func generateScripts(ctx context.Context, config *Config, pages []types.PageInfo, stats *Stats) ([]Script, error) {
	selected, err := selectPages(pages, config.Pages)
	if err != nil {
		return nil, err
	}
	scripts := make([]Script, 0, len(selected))
	for _, p := range selected {
		s := generateScript(p, config.Rounds)
		stats.StepsGenerated += len(s.Steps)
		scripts = append(scripts, s)
		logger.Get().Debug(ctx, "generated script",
			logger.String("page", p.Name),
			logger.Int("steps", len(s.Steps)),
			logger.String("mode", s.Expect.Mode))
	}
	logger.Get().Info(ctx, "generated scripts", logger.Int("pages", len(scripts)), logger.Int("steps", stats.StepsGenerated))
	return scripts, nil
}

func selectPages(pages []types.PageInfo, names []string) ([]types.PageInfo, error) {
	if len(names) == 0 {
		return pages, nil
	}
	out := make([]types.PageInfo, 0, len(names))
	for _, n := range names {
		i := slices.IndexFunc(pages, func(p types.PageInfo) bool { return p.Name == strings.TrimSpace(n) })
		if i < 0 {
			return nil, fmt.Errorf("unknown page %q", n)
		}
		out = append(out, pages[i])
	}
	return out, nil
}

// generateScript plays rounds of random interactions on page p. Every round
// sets a mode and a year selection within bounds, and sometimes changes the
// entity selection. Pages that wait for an explicit update get one at the end.
func generateScript(p types.PageInfo, rounds int) Script {
	rounds = max(rounds, 1)
	exp := Expectation{Page: p.Name, CheckEntities: true}
	var steps []Step
	add := func(e Event) {
		e.EventID = uuid.NewString()
		steps = append(steps, Step{Page: p.Name, Event: e})
	}

	for range rounds {
		if len(p.Modes) > 0 {
			m := p.Modes[randInt(len(p.Modes))].Name
			add(Event{Kind: "set_mode", Mode: m})
			exp.Mode = m
		}

		if p.Animated && !rangeMode(exp.Mode) {
			y := p.YearMin + randInt(p.YearMax-p.YearMin+1)
			add(Event{Kind: "set_year", Year: &y})
			exp.YearStart, exp.YearEnd = y, y
		} else {
			a := p.YearMin + randInt(p.YearMax-p.YearMin+1)
			b := p.YearMin + randInt(p.YearMax-p.YearMin+1)
			lo, hi := min(a, b), max(a, b)
			add(Event{Kind: "set_years", YearStart: &lo, YearEnd: &hi})
			exp.YearStart, exp.YearEnd = lo, hi
		}

		switch {
		case len(p.Groups) > 0 && getRandomFloat() < 0.3:
			g := p.Groups[randInt(len(p.Groups))]
			add(Event{Kind: "select_group", Group: g})
			if strings.EqualFold(g, "clear") {
				exp.Entities, exp.CheckEntities = nil, true
			} else {
				exp.Entities, exp.CheckEntities = nil, false
			}
		case len(entityPool(p, exp.Mode)) > 0 && getRandomFloat() < 0.5:
			picked := pickEntities(entityPool(p, exp.Mode))
			add(Event{Kind: "set_entities", Entities: picked})
			exp.Entities, exp.CheckEntities = normalise(picked), true
		}
	}

	if !p.Live {
		add(Event{Kind: "update"})
	}
	return Script{Steps: steps, Expect: exp}
}

// rangeMode reports whether a mode on the animated page takes a year range.
func rangeMode(mode string) bool { return strings.HasSuffix(mode, ".trend") }

// entityPool is the selection to draw from. The regional mode only has data
// for the countries listed in Regions.
func entityPool(p types.PageInfo, mode string) []string {
	if strings.HasSuffix(mode, ".regional") && len(p.Regions) > 0 {
		return p.Regions
	}
	return p.Entities
}

func pickEntities(all []string) []string {
	n := 1 + randInt(min(maxPickedEntities, len(all)))
	out := make([]string, 0, n)
	for range n {
		out = append(out, all[randInt(len(all))])
	}
	return out
}

// normalise matches the server side treatment of an entity selection.
func normalise(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// Package dataset loads the climate source tables from CSV files.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/pkg/logger"
	"github.com/okian/climadash/pkg/metrics"
)

// Source names, also used as metric labels.
const (
	SourceTemperature = "temperature"
	SourceSeaLevel    = "sea_level"
	SourceEmissions   = "emissions"
	SourceStates      = "states"
)

// Paths locates the source files. States is an optional directory holding
// one "<Country>.csv" of state temperatures per country.
type Paths struct {
	Temperature string
	SeaLevel    string
	Emissions   string
	States      string
}

type parser func(io.Reader) ([]model.Record, error)

var parsers = map[string]struct {
	metric model.Metric
	parse  parser
}{
	SourceTemperature: {model.MetricTemperature, ParseTemperature},
	SourceSeaLevel:    {model.MetricSeaLevel, ParseSeaLevel},
	SourceEmissions:   {model.MetricEmissions, ParseEmissions},
	SourceStates:      {model.MetricTemperature, ParseStates},
}

// Read parses one source from r into a table.
func Read(source string, r io.Reader) (*model.Table, error) {
	p, ok := parsers[source]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	recs, err := p.parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s: %w: no usable rows", source, model.ErrDataUnavailable)
	}
	return model.NewTable(source, p.metric, recs)
}

// Load reads one source file.
func Load(ctx context.Context, source, path string) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w: %s", source, ErrMissingFile, path)
		}
		return nil, fmt.Errorf("%s: open: %w", source, err)
	}
	defer f.Close()

	t, err := Read(source, f)
	if err != nil {
		metrics.RecordErrorByComponent("dataset", source)
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.UpdateDatasetRows(source, t.Len())
	metrics.RecordDatasetLoad(source, float64(elapsed.Milliseconds()))
	lo, hi := t.YearBounds()
	logger.Get().Named("dataset").Info(ctx, "dataset loaded",
		logger.String("source", source),
		logger.String("path", path),
		logger.Int("rows", t.Len()),
		logger.Int("entities", len(t.Entities())),
		logger.Int("year_min", lo),
		logger.Int("year_max", hi),
		logger.Duration("took", elapsed))
	return t, nil
}

// LoadStates reads every "<Country>.csv" in dir. An empty dir, or one that
// does not exist, yields no state data. A file that cannot be read is an
// error like any other source.
func LoadStates(ctx context.Context, dir string) (map[string]*model.Table, error) {
	log := logger.Get().Named("dataset")
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info(ctx, "no state-level temperature", logger.String("dir", dir))
			return nil, nil
		}
		return nil, fmt.Errorf("%s: read dir: %w", SourceStates, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	out := make(map[string]*model.Table, len(names))
	rows := 0
	for _, name := range names {
		country := strings.TrimSuffix(name, filepath.Ext(name))
		t, err := Load(ctx, SourceStates, filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", country, err)
		}
		out[country] = t
		rows += t.Len()
	}
	metrics.UpdateDatasetRows(SourceStates, rows)
	log.Info(ctx, "state-level temperature loaded",
		logger.String("dir", dir),
		logger.Int("countries", len(out)),
		logger.Int("rows", rows))
	return out, nil
}

// LoadAll loads the sources concurrently. The first failure cancels
// the others.
func LoadAll(ctx context.Context, paths Paths) (model.Sources, error) {
	var src model.Sources
	g, gctx := errgroup.WithContext(ctx)
	load := func(source, path string, dst **model.Table) {
		g.Go(func() error {
			t, err := Load(gctx, source, path)
			if err != nil {
				return err
			}
			*dst = t
			return nil
		})
	}
	load(SourceTemperature, paths.Temperature, &src.Temperature)
	load(SourceSeaLevel, paths.SeaLevel, &src.SeaLevel)
	load(SourceEmissions, paths.Emissions, &src.Emissions)
	g.Go(func() error {
		states, err := LoadStates(gctx, paths.States)
		src.States = states
		return err
	})

	if err := g.Wait(); err != nil {
		return model.Sources{}, err
	}
	return src, src.Validate()
}

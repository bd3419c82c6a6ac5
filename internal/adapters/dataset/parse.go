package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/okian/climadash/internal/domain/model"
)

// Column names of the source files.
const (
	colTemperatureDate  = "dt"
	colTemperatureValue = "AverageTemperature"
	colTemperatureKey   = "Country"
	colStateKey         = "State"
	colSeaLevelDate     = "date"
	colSeaLevelValue    = "mmfrom1993-2008average"
	colEmissionsKey     = "Country"

	seaLevelDateLayout = "1/2/2006"
	minYearColumn      = 1000
	maxYearColumn      = 3000
)

// header maps column names to their index.
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	names, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrSchemaMismatch)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := make(header, len(names))
	for i, n := range names {
		h[strings.TrimSpace(strings.TrimPrefix(n, "\ufeff"))] = i
	}
	return h, nil
}

func (h header) require(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		j, ok := h[n]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrSchemaMismatch, n)
		}
		idx[i] = j
	}
	return idx, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return cr
}

// eachRow calls fn for every well-formed row. Malformed rows are skipped.
func eachRow(r *csv.Reader, fn func(row []string)) error {
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		fn(row)
	}
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func number(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseTemperature reads monthly land temperatures per country. Rows
// without a temperature are skipped.
func ParseTemperature(r io.Reader) ([]model.Record, error) {
	return parseMonthlyTemperature(r, colTemperatureKey)
}

// ParseStates reads monthly land temperatures per state of one country.
func ParseStates(r io.Reader) ([]model.Record, error) {
	return parseMonthlyTemperature(r, colStateKey)
}

func parseMonthlyTemperature(r io.Reader, key string) ([]model.Record, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	idx, err := h.require(colTemperatureDate, colTemperatureValue, key)
	if err != nil {
		return nil, err
	}

	var out []model.Record
	err = eachRow(cr, func(row []string) {
		v, ok := number(cell(row, idx[1]))
		entity := cell(row, idx[2])
		if !ok || entity == "" {
			return
		}
		t, err := time.Parse(time.DateOnly, cell(row, idx[0]))
		if err != nil {
			return
		}
		out = append(out, model.Record{Entity: entity, Year: t.Year(), Month: int(t.Month()), Value: v})
	})
	return out, err
}

// ParseSeaLevel reads the monthly global sea level series. The year and
// month come from the m/d/Y date column.
func ParseSeaLevel(r io.Reader) ([]model.Record, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	idx, err := h.require(colSeaLevelDate, colSeaLevelValue)
	if err != nil {
		return nil, err
	}

	var out []model.Record
	err = eachRow(cr, func(row []string) {
		v, ok := number(cell(row, idx[1]))
		if !ok {
			return
		}
		t, err := time.Parse(seaLevelDateLayout, cell(row, idx[0]))
		if err != nil {
			return
		}
		out = append(out, model.Record{Entity: model.GlobalEntity, Year: t.Year(), Month: int(t.Month()), Value: v})
	})
	return out, err
}

// ParseEmissions reads the wide emissions table: a Country column and one
// column per year. Non-numeric cells are skipped.
func ParseEmissions(r io.Reader) ([]model.Record, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	idx, err := h.require(colEmissionsKey)
	if err != nil {
		return nil, err
	}

	type yearCol struct{ year, col int }
	var years []yearCol
	for name, col := range h {
		y, err := strconv.Atoi(name)
		if err == nil && y >= minYearColumn && y <= maxYearColumn {
			years = append(years, yearCol{y, col})
		}
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: no year columns", ErrSchemaMismatch)
	}

	var out []model.Record
	err = eachRow(cr, func(row []string) {
		country := cell(row, idx[0])
		if country == "" {
			return
		}
		for _, yc := range years {
			if v, ok := number(cell(row, yc.col)); ok {
				out = append(out, model.Record{Entity: country, Year: yc.year, Value: v})
			}
		}
	})
	return out, err
}

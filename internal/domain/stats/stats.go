// Package stats holds the numeric building blocks of derived views:
// least-squares fits, Pearson correlation and change measures.
package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Fit is an ordinary least squares fit y = Intercept + Slope*x.
type Fit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R         float64 `json:"r"`
	RSquared  float64 `json:"r_squared"`
	PValue    float64 `json:"p_value"`
	StdErr    float64 `json:"std_err"`
	N         int     `json:"n"`
}

// Predict evaluates the fitted line at x.
func (f Fit) Predict(x float64) float64 { return f.Intercept + f.Slope*x }

// LinearFit regresses y on x.
//
// A constant y yields a flat line with R and R² of zero and a p-value of one.
func LinearFit(x, y []float64) (Fit, error) {
	if len(x) != len(y) {
		return Fit{}, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(x), len(y))
	}
	n := len(x)
	if n < 2 {
		return Fit{}, fmt.Errorf("%w: have %d, need 2", ErrInsufficientData, n)
	}
	if constant(x) {
		return Fit{}, ErrDegenerate
	}
	if constant(y) {
		return Fit{Intercept: y[0], PValue: 1, N: n}, nil
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	r := clampUnit(stat.Correlation(x, y, nil))
	fit := Fit{Slope: beta, Intercept: alpha, R: r, RSquared: r * r, N: n}

	df := float64(n - 2)
	switch {
	case fit.RSquared >= 1:
		fit.PValue = 0
	case df <= 0:
		fit.PValue = 1
	default:
		t := r * math.Sqrt(df/((1-r)*(1+r)))
		fit.PValue = 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(math.Abs(t))
		fit.StdErr = math.Sqrt((1 - fit.RSquared) * stat.Variance(y, nil) / stat.Variance(x, nil) / df)
	}
	return fit, nil
}

// Pearson returns the correlation coefficient of x and y. It is zero when
// either series is constant.
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < 2 {
		return 0, fmt.Errorf("%w: have %d, need 2", ErrInsufficientData, len(x))
	}
	if constant(x) || constant(y) {
		return 0, nil
	}
	return clampUnit(stat.Correlation(x, y, nil)), nil
}

// Matrix is a labelled, symmetric correlation matrix.
type Matrix struct {
	Labels []string    `json:"labels"`
	Values [][]float64 `json:"values"`
}

// At returns the coefficient for labels i and j.
func (m Matrix) At(i, j int) float64 { return m.Values[i][j] }

// Pair returns the coefficient of two labels, if both exist.
func (m Matrix) Pair(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, l := range m.Labels {
		if l == a {
			i = k
		}
		if l == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// CorrelationMatrix computes pairwise Pearson coefficients of columns. The
// diagonal is exactly one and the result is symmetric.
func CorrelationMatrix(labels []string, columns [][]float64) (Matrix, error) {
	if len(labels) != len(columns) {
		return Matrix{}, fmt.Errorf("%w: %d labels for %d columns", ErrLengthMismatch, len(labels), len(columns))
	}
	m := Matrix{Labels: append([]string(nil), labels...), Values: make([][]float64, len(columns))}
	for i := range columns {
		m.Values[i] = make([]float64, len(columns))
		m.Values[i][i] = 1
	}
	for i := range columns {
		for j := i + 1; j < len(columns); j++ {
			r, err := Pearson(columns[i], columns[j])
			if err != nil {
				return Matrix{}, fmt.Errorf("correlate %s/%s: %w", labels[i], labels[j], err)
			}
			m.Values[i][j], m.Values[j][i] = r, r
		}
	}
	return m, nil
}

// PercentChange returns (last-first)/|first| in percent. ok is false when
// the baseline is zero or either input is not finite.
func PercentChange(first, last float64) (pct float64, ok bool) {
	if first == 0 || !finite(first) || !finite(last) {
		return 0, false
	}
	return (last - first) / math.Abs(first) * 100, true
}

// RollingMean returns the trailing mean over window points. Leading points
// use whatever history exists.
func RollingMean(xs []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(xs))
	var sum float64
	for i, v := range xs {
		sum += v
		if i >= window {
			sum -= xs[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Diff returns successive differences; the result has one fewer element.
func Diff(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = xs[i] - xs[i-1]
	}
	return out
}

// Sum adds xs.
func Sum(xs []float64) float64 { return floats.Sum(xs) }

// Mean returns the arithmetic mean, or zero for an empty sample.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// StdDev returns the sample standard deviation, or zero with fewer than two values.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// ArgMax returns the index of the largest value, or -1 for an empty slice.
func ArgMax(xs []float64) int {
	if len(xs) == 0 {
		return -1
	}
	return floats.MaxIdx(xs)
}

// ArgMin returns the index of the smallest value, or -1 for an empty slice.
func ArgMin(xs []float64) int {
	if len(xs) == 0 {
		return -1
	}
	return floats.MinIdx(xs)
}

func constant(xs []float64) bool {
	for _, v := range xs[1:] {
		if v != xs[0] {
			return false
		}
	}
	return true
}

func clampUnit(r float64) float64 { return math.Max(-1, math.Min(1, r)) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

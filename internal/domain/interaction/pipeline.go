package interaction

import (
	"context"

	"github.com/okian/climadash/internal/domain/chartspec"
	"github.com/okian/climadash/internal/domain/insight"
	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/view"
)

// Result is the output of one pipeline run.
type Result struct {
	Derived view.Derived
	Insight insight.Insight
	Chart   chartspec.Spec
}

// Pipeline computes the outputs for a filter state.
type Pipeline interface {
	Run(ctx context.Context, f model.FilterState) (Result, error)
}

// Catalog answers questions about the loaded data that the controller needs
// while reducing events.
type Catalog interface {
	Bounds(page model.Page) (int, int)
	ResolveGroup(name string) ([]string, error)
}

// ViewPipeline builds the derived view once and feeds the same value to the
// chart spec builder and the summarizer.
type ViewPipeline struct {
	builder *view.Builder
}

// NewPipeline returns a pipeline backed by builder.
func NewPipeline(builder *view.Builder) *ViewPipeline {
	return &ViewPipeline{builder: builder}
}

// Run implements Pipeline.
func (p *ViewPipeline) Run(ctx context.Context, f model.FilterState) (Result, error) {
	d, err := p.builder.Build(ctx, f)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Derived: d,
		Chart:   chartspec.Build(d),
		Insight: insight.Summarize(d),
	}, nil
}

package interaction

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/climadash/internal/domain/chartspec"
	"github.com/okian/climadash/internal/domain/insight"
	"github.com/okian/climadash/internal/domain/model"
)

// Failure describes why a publication carries a fallback.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Publication is what the render surface displays for a page.
type Publication struct {
	ID             uuid.UUID         `json:"id"`
	Page           model.Page        `json:"page"`
	Revision       uint64            `json:"revision"`
	State          State             `json:"state"`
	Filter         model.FilterState `json:"filter"`   // state the outputs were computed for
	Controls       model.FilterState `json:"controls"` // state shown by the widgets
	Insight        insight.Insight   `json:"insight"`
	Chart          chartspec.Spec    `json:"chart"`
	Error          *Failure          `json:"error,omitempty"`
	DefaultApplied bool              `json:"default_applied"`
	Missing        []string          `json:"missing,omitempty"`
	Playing        bool              `json:"playing"`
	ComputedAt     time.Time         `json:"computed_at"`
	Duration       time.Duration     `json:"duration_ns"`
}

// Failed reports whether the publication is a fallback.
func (p Publication) Failed() bool { return p.Error != nil }

// Publisher delivers publications to the render surface.
type Publisher interface {
	Publish(ctx context.Context, p Publication) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, p Publication) error

// Publish implements Publisher.
func (f PublisherFunc) Publish(ctx context.Context, p Publication) error { return f(ctx, p) }

package interaction

import (
	"time"

	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/pkg/logger"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithInitialFilter sets the state restored by reset and shown before the
// first event. It is clamped to the page bounds.
func WithInitialFilter(f model.FilterState) Option {
	return func(c *Controller) {
		c.initial = f
		c.hasInitial = true
	}
}

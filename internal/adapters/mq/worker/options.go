package worker

import (
	"github.com/okian/climadash/pkg/logger"
)

// Option applies a configuration option to a PageWorker.
type Option func(*PageWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *PageWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *PageWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMaxBatch caps how many queued events are folded into one computation.
func WithMaxBatch(n int) Option {
	return func(w *PageWorker) {
		if n > 0 {
			w.maxBatch = n
		}
	}
}

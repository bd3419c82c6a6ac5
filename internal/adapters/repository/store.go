// Package repository keeps the publications each page controller produced,
// so the render surface can fetch the latest chart and insight at any time.
package repository

import (
	"context"

	"github.com/okian/climadash/internal/domain/interaction"
	"github.com/okian/climadash/internal/domain/model"
)

// Store provides read/write access to published dashboard states.
type Store interface {
	// Publish records p as the latest publication of its page.
	// Returns ErrStaleRevision if a newer revision is already stored.
	Publish(ctx context.Context, p interaction.Publication) error

	// Latest returns the newest publication of page.
	// Returns ErrNotFound before the first publication.
	Latest(ctx context.Context, page model.Page) (interaction.Publication, error)

	// History returns up to limit publications of page, newest first.
	History(ctx context.Context, page model.Page, limit int) ([]interaction.Publication, error)

	// Count returns the number of stored publications across all pages.
	Count(ctx context.Context) int
}

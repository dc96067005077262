// Package developers persists the local copy of the remote developer
// collection in SQLite.
package developers

import (
	"context"

	"github.com/dmitrijs2005/devsync/internal/client/models"
)

// Repository stores developer records keyed by their server id.
type Repository interface {
	// Upsert inserts d or replaces the stored record with the same id.
	Upsert(ctx context.Context, d models.Developer) error

	// GetAll returns every stored record ordered by id.
	GetAll(ctx context.Context) ([]models.Developer, error)

	// Update replaces an existing record. It reports whether a row was changed.
	Update(ctx context.Context, d models.Developer) (bool, error)

	// Delete removes the record with the given id. It reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)

	Clear(ctx context.Context) error
}

// Package pending persists create requests that could not reach the server.
// Rows are kept in insertion order by an autoincrement sequence.
package pending

import (
	"context"

	"github.com/dmitrijs2005/devsync/internal/client/models"
)

type Repository interface {
	// Insert appends w and returns the assigned sequence number. w.Seq is ignored.
	Insert(ctx context.Context, w models.PendingWrite) (int64, error)

	// List returns all rows ordered by sequence.
	List(ctx context.Context) ([]models.PendingWrite, error)

	// DeleteUpTo removes every row with seq <= upTo.
	DeleteUpTo(ctx context.Context, upTo int64) error

	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

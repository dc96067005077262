package developers

import (
	"context"

	"github.com/dmitrijs2005/devsync/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, q models.ListQuery) ([]models.Developer, int, error)
	Get(ctx context.Context, id int64) (*models.Developer, error)
	Create(ctx context.Context, d *models.Developer) (*models.Developer, error)
	Update(ctx context.Context, d *models.Developer) (*models.Developer, error)
	Delete(ctx context.Context, id int64) error
	SetPhoto(ctx context.Context, id int64, key string) (*models.Developer, error)
}

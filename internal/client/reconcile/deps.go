package reconcile

import (
	"context"

	"github.com/dmitrijs2005/devsync/internal/client/models"
)

// Remote is the subset of client.Client used by the engine.
type Remote interface {
	FetchPage(ctx context.Context, q models.Query) (*models.Page, error)
	Create(ctx context.Context, in models.DeveloperInput) (*models.Developer, error)
	Update(ctx context.Context, id int64, d models.Developer) (*models.Developer, error)
	Delete(ctx context.Context, id int64) error
}

type Cache interface {
	Put(ctx context.Context, list []models.Developer) error
	Get(ctx context.Context) ([]models.Developer, error)
	PutTotal(ctx context.Context, n int) error
	Total(ctx context.Context) (int, error)
	UpdateOne(ctx context.Context, d models.Developer) error
	RemoveOne(ctx context.Context, id int64) error
}

type Queue interface {
	Enqueue(ctx context.Context, in models.DeveloperInput) (models.PendingWrite, error)
	Snapshot(ctx context.Context) ([]models.PendingWrite, error)
	Ack(ctx context.Context, upToSeq int64) error
	DrainAll(ctx context.Context) ([]models.PendingWrite, error)
}

// Signal is the peer notification channel; signal.ChangeSignal satisfies it.
type Signal interface {
	Connected() bool
	Connections() uint64
	LastToken() string
	Send(msg string)
	Updates() <-chan struct{}
}

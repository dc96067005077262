package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/devsync/internal/client/models"
	"github.com/dmitrijs2005/devsync/internal/client/repositories/pending"
	"github.com/dmitrijs2005/devsync/internal/dbx"
	"github.com/google/uuid"
)

// Queue is a durable FIFO of create requests made while offline.
type Queue struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

func NewQueue(db *sql.DB) *Queue {
	return &Queue{db: db, now: time.Now, newID: uuid.NewString}
}

// Enqueue appends in and returns the stored entry with its sequence number.
func (q *Queue) Enqueue(ctx context.Context, in models.DeveloperInput) (models.PendingWrite, error) {
	w := models.PendingWrite{
		LocalID:   q.newID(),
		Payload:   in,
		CreatedAt: q.now().UTC().Truncate(time.Millisecond),
	}
	seq, err := pending.NewSQLiteRepository(q.db).Insert(ctx, w)
	if err != nil {
		return models.PendingWrite{}, err
	}
	w.Seq = seq
	return w, nil
}

// Snapshot returns the queued entries in insertion order without removing them.
func (q *Queue) Snapshot(ctx context.Context) ([]models.PendingWrite, error) {
	return pending.NewSQLiteRepository(q.db).List(ctx)
}

// DrainAll removes and returns every entry atomically. Replay uses
// Snapshot and Ack instead so that a crash mid-pass loses nothing.
func (q *Queue) DrainAll(ctx context.Context) ([]models.PendingWrite, error) {
	var out []models.PendingWrite
	err := dbx.WithTx(ctx, q.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := pending.NewSQLiteRepository(tx)
		list, err := repo.List(ctx)
		if err != nil {
			return err
		}
		if err := repo.DeleteAll(ctx); err != nil {
			return err
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Ack removes the prefix of the queue up to and including upToSeq.
func (q *Queue) Ack(ctx context.Context, upToSeq int64) error {
	return pending.NewSQLiteRepository(q.db).DeleteUpTo(ctx, upToSeq)
}

func (q *Queue) IsEmpty(ctx context.Context) (bool, error) {
	n, err := pending.NewSQLiteRepository(q.db).Count(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

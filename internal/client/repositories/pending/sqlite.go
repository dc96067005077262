package pending

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/devsync/internal/client/models"
	"github.com/dmitrijs2005/devsync/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, w models.PendingWrite) (int64, error) {
	payload, err := json.Marshal(w.Payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal pending payload: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO pending_writes (local_id, payload, created_at) VALUES (?, ?, ?)`,
		w.LocalID, payload, w.CreatedAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to insert pending write: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get pending seq: %w", err)
	}
	return seq, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.PendingWrite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, local_id, payload, created_at FROM pending_writes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending writes: %w", err)
	}
	defer rows.Close()

	result := []models.PendingWrite{}
	for rows.Next() {
		var (
			w       models.PendingWrite
			payload []byte
			created int64
		)
		if err := rows.Scan(&w.Seq, &w.LocalID, &payload, &created); err != nil {
			return nil, fmt.Errorf("failed to scan pending write: %w", err)
		}
		if err := json.Unmarshal(payload, &w.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pending write %d: %w", w.Seq, err)
		}
		w.CreatedAt = time.UnixMilli(created).UTC()
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteUpTo(ctx context.Context, upTo int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_writes WHERE seq <= ?`, upTo); err != nil {
		return fmt.Errorf("failed to delete pending writes up to %d: %w", upTo, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_writes`); err != nil {
		return fmt.Errorf("failed to clear pending writes: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_writes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending writes: %w", err)
	}
	return n, nil
}

package developers

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/devsync/internal/client/models"
	"github.com/dmitrijs2005/devsync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const columns = `id, name, age, full_stack, end_date, lat, lng, photo_url`

func (r *SQLiteRepository) Upsert(ctx context.Context, d models.Developer) error {
	query := `INSERT INTO developers (` + columns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				age = excluded.age,
				full_stack = excluded.full_stack,
				end_date = excluded.end_date,
				lat = excluded.lat,
				lng = excluded.lng,
				photo_url = excluded.photo_url
	`
	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.Name, d.Age, d.FullStack, d.EndDate, d.Lat, d.Lng, d.PhotoURL)
	if err != nil {
		return fmt.Errorf("failed to upsert developer %d: %w", d.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Developer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM developers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select developers: %w", err)
	}
	defer rows.Close()

	result := []models.Developer{}
	for rows.Next() {
		var d models.Developer
		if err := rows.Scan(&d.ID, &d.Name, &d.Age, &d.FullStack, &d.EndDate, &d.Lat, &d.Lng, &d.PhotoURL); err != nil {
			return nil, fmt.Errorf("failed to scan developer row: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, d models.Developer) (bool, error) {
	query := `UPDATE developers SET name = ?, age = ?, full_stack = ?, end_date = ?, lat = ?, lng = ?, photo_url = ?
			WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		d.Name, d.Age, d.FullStack, d.EndDate, d.Lat, d.Lng, d.PhotoURL, d.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update developer %d: %w", d.ID, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM developers WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete developer %d: %w", id, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM developers`); err != nil {
		return fmt.Errorf("failed to clear developers: %w", err)
	}
	return nil
}

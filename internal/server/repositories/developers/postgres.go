package developers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/devsync/internal/common"
	"github.com/dmitrijs2005/devsync/internal/dbx"
	"github.com/dmitrijs2005/devsync/internal/server/models"
)

const columns = `id, name, age, full_stack, end_date, lat, lng, photo_key`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDeveloper(s scanner) (*models.Developer, error) {
	d := &models.Developer{}
	if err := s.Scan(&d.ID, &d.Name, &d.Age, &d.FullStack, &d.EndDate, &d.Lat, &d.Lng, &d.PhotoURL); err != nil {
		return nil, err
	}
	return d, nil
}

// where builds the filter clause of q; placeholders start at $1.
func where(q models.ListQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if name := strings.TrimSpace(q.Name); name != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(name))+"%")
		conds = append(conds, fmt.Sprintf("lower(name) LIKE $%d", len(args)))
	}
	if q.FullStack != nil {
		args = append(args, *q.FullStack)
		conds = append(conds, fmt.Sprintf("full_stack = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// List returns one page ordered by id together with the number of rows
// matching the filter.
func (r *PostgresRepository) List(ctx context.Context, q models.ListQuery) ([]models.Developer, int, error) {
	cond, args := where(q)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM developers`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT ` + columns + ` FROM developers` + cond + ` ORDER BY id`
	if q.Size > 0 {
		args = append(args, q.Size, q.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Developer, 0)
	for rows.Next() {
		d, err := scanDeveloper(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return out, total, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Developer, error) {
	d, err := scanDeveloper(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM developers WHERE id = $1`, id))
	return d, mapNotFound(err)
}

func (r *PostgresRepository) Create(ctx context.Context, d *models.Developer) (*models.Developer, error) {
	query :=
		`INSERT INTO developers (name, age, full_stack, end_date, lat, lng)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + columns

	out, err := scanDeveloper(r.db.QueryRowContext(ctx, query, d.Name, d.Age, d.FullStack, d.EndDate, d.Lat, d.Lng))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// Update replaces the editable fields. The avatar key is kept.
func (r *PostgresRepository) Update(ctx context.Context, d *models.Developer) (*models.Developer, error) {
	query :=
		`UPDATE developers
		 SET name = $1, age = $2, full_stack = $3, end_date = $4, lat = $5, lng = $6
		 WHERE id = $7
		 RETURNING ` + columns

	out, err := scanDeveloper(r.db.QueryRowContext(ctx, query, d.Name, d.Age, d.FullStack, d.EndDate, d.Lat, d.Lng, d.ID))
	return out, mapNotFound(err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM developers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SetPhoto(ctx context.Context, id int64, key string) (*models.Developer, error) {
	query := `UPDATE developers SET photo_key = $1 WHERE id = $2 RETURNING ` + columns
	d, err := scanDeveloper(r.db.QueryRowContext(ctx, query, key, id))
	return d, mapNotFound(err)
}

func mapNotFound(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/devsync/internal/client/models"
	"github.com/dmitrijs2005/devsync/internal/client/repositories/developers"
	"github.com/dmitrijs2005/devsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/devsync/internal/dbx"
)

// Cache is the local copy of every developer record seen from the server,
// plus the total reported by the last successful fetch.
type Cache struct {
	db *sql.DB
}

func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db}
}

// Put upserts the records in one transaction. Records without a server id
// are skipped.
func (c *Cache) Put(ctx context.Context, list []models.Developer) error {
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := developers.NewSQLiteRepository(tx)
		for _, d := range list {
			if d.ID <= 0 {
				continue
			}
			if err := repo.Upsert(ctx, d); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Cache) Get(ctx context.Context) ([]models.Developer, error) {
	return developers.NewSQLiteRepository(c.db).GetAll(ctx)
}

func (c *Cache) PutTotal(ctx context.Context, n int) error {
	return metadata.NewSQLiteRepository(c.db).Set(ctx, metadata.KeyRemoteTotal, []byte(strconv.Itoa(n)))
}

// Total returns the last stored remote total, or 0 if none was stored.
func (c *Cache) Total(ctx context.Context) (int, error) {
	v, err := metadata.NewSQLiteRepository(c.db).Get(ctx, metadata.KeyRemoteTotal)
	if err != nil || v == nil {
		return 0, err
	}
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return 0, fmt.Errorf("corrupt remote total %q: %w", v, err)
	}
	return n, nil
}

// UpdateOne replaces d if it is cached.
func (c *Cache) UpdateOne(ctx context.Context, d models.Developer) error {
	_, err := developers.NewSQLiteRepository(c.db).Update(ctx, d)
	return err
}

// RemoveOne deletes the record with id if it is cached.
func (c *Cache) RemoveOne(ctx context.Context, id int64) error {
	_, err := developers.NewSQLiteRepository(c.db).Delete(ctx, id)
	return err
}

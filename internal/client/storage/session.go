package storage

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/devsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/devsync/internal/dbx"
)

// Session keeps the bearer token and the name of the signed-in user between runs.
type Session struct {
	db *sql.DB
}

func NewSession(db *sql.DB) *Session {
	return &Session{db: db}
}

func (s *Session) Save(ctx context.Context, username, token string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyUsername, []byte(username)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyToken, []byte(token))
	})
}

// Token returns the saved token or "" if there is none.
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.get(ctx, metadata.KeyToken)
}

// Username returns the last signed-in user or "".
func (s *Session) Username(ctx context.Context) (string, error) {
	return s.get(ctx, metadata.KeyUsername)
}

// ClearToken forgets the token but keeps the username for offline sign-in.
func (s *Session) ClearToken(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, metadata.KeyToken)
}

func (s *Session) get(ctx context.Context, key string) (string, error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

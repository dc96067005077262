package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/devsync/internal/client/models"
)

// Client is the remote developer collection.
type Client interface {
	FetchPage(ctx context.Context, q models.Query) (*models.Page, error)
	Create(ctx context.Context, in models.DeveloperInput) (*models.Developer, error)
	Update(ctx context.Context, id int64, d models.Developer) (*models.Developer, error)
	Delete(ctx context.Context, id int64) error
	UploadAvatar(ctx context.Context, id int64, filename string, r io.Reader) (*models.Developer, error)
	PublicURL(photoURL string) string

	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) error
	Ping(ctx context.Context) error
}

// TokenStore supplies the bearer token and forgets it when the server rejects it.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
}

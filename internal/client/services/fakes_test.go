package services

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/dmitrijs2005/devsync/internal/client/models"
	"github.com/dmitrijs2005/devsync/internal/client/storage"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeClient implements client.Client with preset results and captured arguments.
type fakeClient struct {
	LoginToken  string
	LoginErr    error
	RegisterErr error
	PingErr     error
	UploadErr   error
	UploadRet   *models.Developer

	LastLoginUser     string
	LastLoginPassword string
	LastRegisterUser  string
	LastRegisterPass  string
	LastUploadID      int64
	LastUploadName    string
	LastUploadBody    []byte
	PingCalls         int
}

func (f *fakeClient) FetchPage(ctx context.Context, q models.Query) (*models.Page, error) {
	return &models.Page{Data: []models.Developer{}}, nil
}

func (f *fakeClient) Create(ctx context.Context, in models.DeveloperInput) (*models.Developer, error) {
	d := in.WithID(1)
	return &d, nil
}

func (f *fakeClient) Update(ctx context.Context, id int64, d models.Developer) (*models.Developer, error) {
	d.ID = id
	return &d, nil
}

func (f *fakeClient) Delete(ctx context.Context, id int64) error { return nil }

func (f *fakeClient) UploadAvatar(ctx context.Context, id int64, filename string, r io.Reader) (*models.Developer, error) {
	f.LastUploadID = id
	f.LastUploadName = filename
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.LastUploadBody = b
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	return f.UploadRet, nil
}

func (f *fakeClient) PublicURL(photoURL string) string {
	if photoURL == "" {
		return ""
	}
	return "http://files/" + photoURL
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (string, error) {
	f.LastLoginUser = username
	f.LastLoginPassword = password
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	return f.LoginToken, nil
}

func (f *fakeClient) Register(ctx context.Context, username, password string) error {
	f.LastRegisterUser = username
	f.LastRegisterPass = password
	return f.RegisterErr
}

func (f *fakeClient) Ping(ctx context.Context) error {
	f.PingCalls++
	return f.PingErr
}

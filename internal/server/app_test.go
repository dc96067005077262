package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/devsync/internal/dbx"
	"github.com/dmitrijs2005/devsync/internal/logging"
	"github.com/dmitrijs2005/devsync/internal/server/config"
	"github.com/dmitrijs2005/devsync/internal/server/repositories/developers"
	"github.com/dmitrijs2005/devsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/devsync/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepoMgr struct {
	migrateErr error
	migrated   bool
}

func (m *fakeRepoMgr) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return m.migrateErr
}

func (m *fakeRepoMgr) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *fakeRepoMgr) Developers(db dbx.DBTX) developers.Repository {
	return developers.NewPostgresRepository(db)
}

func stubDB(t *testing.T, rm *fakeRepoMgr, openErr error) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	origOpen, origRM := openDB, newRepositoryManager
	t.Cleanup(func() {
		openDB, newRepositoryManager = origOpen, origRM
		_ = db.Close()
	})

	openDB = func(string) (*sql.DB, error) {
		if openErr != nil {
			return nil, openErr
		}
		return db, nil
	}
	newRepositoryManager = func() repomanager.RepositoryManager { return rm }
	return mock
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	return c
}

func TestNewApp_OpenError(t *testing.T) {
	stubDB(t, &fakeRepoMgr{}, errors.New("bad dsn"))

	_, err := NewApp(context.Background(), testConfig(), logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestNewApp_MigrationError(t *testing.T) {
	rm := &fakeRepoMgr{migrateErr: errors.New("boom")}
	mock := stubDB(t, rm, nil)
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig(), logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	rm := &fakeRepoMgr{}
	mock := stubDB(t, rm, nil)
	mock.ExpectClose()

	app, err := NewApp(context.Background(), testConfig(), logging.Discard())
	require.NoError(t, err)
	assert.True(t, rm.migrated)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, app.Run(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

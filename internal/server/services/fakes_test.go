package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/devsync/internal/common"
	"github.com/dmitrijs2005/devsync/internal/dbx"
	"github.com/dmitrijs2005/devsync/internal/server/models"
	"github.com/dmitrijs2005/devsync/internal/server/repositories/developers"
	"github.com/dmitrijs2005/devsync/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fakeRepoMgr struct {
	users *fakeUsersRepo
	devs  *fakeDevelopersRepo
}

func newFakeRepoMgr() *fakeRepoMgr {
	return &fakeRepoMgr{
		users: &fakeUsersRepo{byName: map[string]*models.User{}},
		devs:  &fakeDevelopersRepo{byID: map[int64]models.Developer{}},
	}
}

func (m *fakeRepoMgr) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *fakeRepoMgr) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *fakeRepoMgr) Developers(dbx.DBTX) developers.Repository {
	return m.devs
}

type fakeUsersRepo struct {
	byName    map[string]*models.User
	createErr error
	getErr    error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byName[u.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = "u-" + u.UserName
	f.byName[u.UserName] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, name string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeDevelopersRepo struct {
	mu      sync.Mutex
	byID    map[int64]models.Developer
	nextID  int64
	lastQ   models.ListQuery
	failAll error
}

func (f *fakeDevelopersRepo) List(ctx context.Context, q models.ListQuery) ([]models.Developer, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQ = q
	if f.failAll != nil {
		return nil, 0, f.failAll
	}
	all := make([]models.Developer, 0, len(f.byID))
	for _, d := range f.byID {
		if q.Name != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(q.Name)) {
			continue
		}
		if q.FullStack != nil && d.FullStack != *q.FullStack {
			continue
		}
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	from := min(q.Offset(), total)
	to := min(from+q.Size, total)
	return all[from:to], total, nil
}

func (f *fakeDevelopersRepo) Get(ctx context.Context, id int64) (*models.Developer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	d, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &d, nil
}

func (f *fakeDevelopersRepo) Create(ctx context.Context, d *models.Developer) (*models.Developer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	f.nextID++
	out := *d
	out.ID = f.nextID
	out.PhotoURL = ""
	f.byID[out.ID] = out
	return &out, nil
}

func (f *fakeDevelopersRepo) Update(ctx context.Context, d *models.Developer) (*models.Developer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, ok := f.byID[d.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *d
	out.PhotoURL = prev.PhotoURL
	f.byID[d.ID] = out
	return &out, nil
}

func (f *fakeDevelopersRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeDevelopersRepo) SetPhoto(ctx context.Context, id int64, key string) (*models.Developer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	d.PhotoURL = key
	f.byID[id] = d
	return &d, nil
}

type fakeStore struct {
	objects   map[string]string
	deleted   []string
	putErr    error
	deleteErr error
	signErr   error
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string]string{}} }

func (s *fakeStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = string(b)
	return nil
}

func (s *fakeStore) PresignedGetURL(ctx context.Context, key string) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	return "http://minio/" + key + "?sig=1", nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

var errBoom = errors.New("boom")

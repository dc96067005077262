package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/devsync/internal/client/client"
	"github.com/dmitrijs2005/devsync/internal/client/models"
	"github.com/dmitrijs2005/devsync/internal/client/reconcile"
	"github.com/dmitrijs2005/devsync/internal/validation"
)

// Engine is the part of reconcile.Engine the developer service drives.
type Engine interface {
	State() reconcile.State
	Load(ctx context.Context) error
	Create(ctx context.Context, in models.DeveloperInput) (models.Developer, error)
	Update(ctx context.Context, d models.Developer) (models.Developer, error)
	Delete(ctx context.Context, id int64) error
	Drain(ctx context.Context) (reconcile.DrainReport, error)
	Discard(ctx context.Context) ([]models.PendingWrite, error)
	SetPage(ctx context.Context, page int) error
	SetNameFilter(ctx context.Context, name string) error
	SetEmploymentFilter(ctx context.Context, f models.EmploymentFilter) error
}

// DeveloperService is what the CLI uses to browse and edit developers.
// Inputs are validated before they reach the engine.
type DeveloperService interface {
	State() reconcile.State
	Refresh(ctx context.Context) error
	Find(id int64) (models.Developer, bool)

	Create(ctx context.Context, in models.DeveloperInput) (models.Developer, error)
	Update(ctx context.Context, d models.Developer) (models.Developer, error)
	Delete(ctx context.Context, id int64) error
	UploadAvatar(ctx context.Context, id int64, path string) (models.Developer, error)
	AvatarURL(d models.Developer) string
	Sync(ctx context.Context) (reconcile.DrainReport, error)
	// DiscardPending drops every create still waiting for the backend and
	// returns how many were dropped.
	DiscardPending(ctx context.Context) (int, error)

	NextPage(ctx context.Context) error
	PrevPage(ctx context.Context) error
	GoToPage(ctx context.Context, page int) error
	Search(ctx context.Context, name string) error
	Filter(ctx context.Context, f models.EmploymentFilter) error
}

type developerService struct {
	engine Engine
	client client.Client
}

func NewDeveloperService(engine Engine, client client.Client) DeveloperService {
	return &developerService{engine: engine, client: client}
}

func (s *developerService) State() reconcile.State {
	return s.engine.State()
}

func (s *developerService) Refresh(ctx context.Context) error {
	return s.engine.Load(ctx)
}

// Find looks id up on the current page.
func (s *developerService) Find(id int64) (models.Developer, bool) {
	for _, d := range s.engine.State().List {
		if d.ID == id {
			return d, true
		}
	}
	return models.Developer{}, false
}

func (s *developerService) Create(ctx context.Context, in models.DeveloperInput) (models.Developer, error) {
	if err := validation.Struct(in); err != nil {
		return models.Developer{}, err
	}
	return s.engine.Create(ctx, in)
}

func (s *developerService) Update(ctx context.Context, d models.Developer) (models.Developer, error) {
	if err := validation.Struct(d); err != nil {
		return models.Developer{}, err
	}
	return s.engine.Update(ctx, d)
}

func (s *developerService) Delete(ctx context.Context, id int64) error {
	return s.engine.Delete(ctx, id)
}

// UploadAvatar sends the file at path as the developer's photo and reloads
// the current page so the new photo URL shows up.
func (s *developerService) UploadAvatar(ctx context.Context, id int64, path string) (models.Developer, error) {
	if id < 0 {
		return models.Developer{}, reconcile.ErrPendingRecord
	}

	f, err := os.Open(path)
	if err != nil {
		return models.Developer{}, fmt.Errorf("open avatar: %w", err)
	}
	defer f.Close()

	d, err := s.client.UploadAvatar(ctx, id, filepath.Base(path), f)
	if err != nil {
		return models.Developer{}, err
	}
	if d == nil {
		d = &models.Developer{ID: id}
	}
	if err := s.engine.Load(ctx); err != nil && !client.IsUnavailable(err) {
		return *d, err
	}
	return *d, nil
}

func (s *developerService) AvatarURL(d models.Developer) string {
	return s.client.PublicURL(d.PhotoURL)
}

func (s *developerService) Sync(ctx context.Context) (reconcile.DrainReport, error) {
	report, err := s.engine.Drain(ctx)
	if err != nil {
		return report, err
	}
	if report.Submitted > 0 || report.Failed > 0 {
		if err := s.engine.Load(ctx); err != nil && !client.IsUnavailable(err) {
			return report, err
		}
	}
	return report, nil
}

func (s *developerService) DiscardPending(ctx context.Context) (int, error) {
	dropped, err := s.engine.Discard(ctx)
	if err != nil {
		return 0, err
	}
	return len(dropped), nil
}

func (s *developerService) NextPage(ctx context.Context) error {
	st := s.engine.State()
	if st.PageSize > 0 && (st.Page+1)*st.PageSize >= st.Total {
		return nil
	}
	return s.engine.SetPage(ctx, st.Page+1)
}

func (s *developerService) PrevPage(ctx context.Context) error {
	st := s.engine.State()
	if st.Page == 0 {
		return nil
	}
	return s.engine.SetPage(ctx, st.Page-1)
}

func (s *developerService) GoToPage(ctx context.Context, page int) error {
	return s.engine.SetPage(ctx, page)
}

func (s *developerService) Search(ctx context.Context, name string) error {
	return s.engine.SetNameFilter(ctx, name)
}

func (s *developerService) Filter(ctx context.Context, f models.EmploymentFilter) error {
	return s.engine.SetEmploymentFilter(ctx, f)
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/devsync/internal/common"
	"github.com/dmitrijs2005/devsync/internal/logging"
	"github.com/dmitrijs2005/devsync/internal/server/models"
	"github.com/dmitrijs2005/devsync/internal/server/objectstore"
	"github.com/dmitrijs2005/devsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/devsync/internal/validation"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	avatarPrefix = "avatars/"
)

// AvatarKey builds the object key for a new avatar of developer id.
// The extension of filename is kept so the stored object has a usable name.
var AvatarKey = func(id int64, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s%d/%s%s", avatarPrefix, id, uuid.NewString(), ext)
}

type DeveloperService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       objectstore.Store
	log         logging.Logger
}

func NewDeveloperService(db *sql.DB, m repomanager.RepositoryManager, store objectstore.Store, log logging.Logger) *DeveloperService {
	return &DeveloperService{db: db, repomanager: m, store: store, log: log}
}

func validate(d *models.Developer) error {
	if err := validation.Struct(d); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	return nil
}

// List returns one page of developers. Out of range sizes fall back to
// DefaultPageSize and a negative page is treated as the first one.
func (s *DeveloperService) List(ctx context.Context, q models.ListQuery) (*models.Page, error) {
	if q.Size <= 0 || q.Size > MaxPageSize {
		q.Size = DefaultPageSize
	}
	if q.Page < 0 {
		q.Page = 0
	}

	data, total, err := s.repomanager.Developers(s.db).List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("error listing developers: %w", err)
	}
	return &models.Page{Data: data, Total: total}, nil
}

func (s *DeveloperService) Create(ctx context.Context, d *models.Developer) (*models.Developer, error) {
	if err := validate(d); err != nil {
		return nil, err
	}
	out, err := s.repomanager.Developers(s.db).Create(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("error creating developer: %w", err)
	}
	return out, nil
}

func (s *DeveloperService) Update(ctx context.Context, d *models.Developer) (*models.Developer, error) {
	if err := validate(d); err != nil {
		return nil, err
	}
	out, err := s.repomanager.Developers(s.db).Update(ctx, d)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating developer: %w", err)
	}
	return out, nil
}

// Delete removes the developer and then its avatar object, if any. A failure
// to remove the object is only logged.
func (s *DeveloperService) Delete(ctx context.Context, id int64) error {
	repo := s.repomanager.Developers(s.db)

	d, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error loading developer: %w", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting developer: %w", err)
	}

	s.dropObject(ctx, d.PhotoURL)
	return nil
}

// UploadAvatar stores body as the new avatar of developer id and returns the
// updated record. The previous avatar object is removed afterwards.
func (s *DeveloperService) UploadAvatar(ctx context.Context, id int64, filename, contentType string, body io.Reader, size int64) (*models.Developer, error) {
	repo := s.repomanager.Developers(s.db)

	prev, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading developer: %w", err)
	}

	key := AvatarKey(id, filename)
	if err := s.store.Put(ctx, key, body, size, contentType); err != nil {
		return nil, fmt.Errorf("error storing avatar: %w", err)
	}

	out, err := repo.SetPhoto(ctx, id, key)
	if err != nil {
		s.dropObject(ctx, key)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error saving avatar key: %w", err)
	}

	if prev.PhotoURL != key {
		s.dropObject(ctx, prev.PhotoURL)
	}
	return out, nil
}

// AvatarURL returns a short-lived download URL for an avatar key.
func (s *DeveloperService) AvatarURL(ctx context.Context, key string) (string, error) {
	key = path.Clean("/" + key)[1:]
	if !strings.HasPrefix(key, avatarPrefix) {
		return "", common.ErrorNotFound
	}
	url, err := s.store.PresignedGetURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("error signing avatar url: %w", err)
	}
	return url, nil
}

func (s *DeveloperService) dropObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn(ctx, "avatar cleanup failed", "key", key, "error", err)
	}
}

// Package services contains server-side business logic. This file implements
// UserService, which handles registration and login and issues JWTs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/devsync/internal/common"
	"github.com/dmitrijs2005/devsync/internal/server/auth"
	"github.com/dmitrijs2005/devsync/internal/server/config"
	"github.com/dmitrijs2005/devsync/internal/server/models"
	"github.com/dmitrijs2005/devsync/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordLen is the longest input bcrypt accepts.
const maxPasswordLen = 72

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration

	dummyOnce sync.Once
	dummyHash []byte
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

func checkCredentials(username, password string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	case password == "":
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	case len(password) > maxPasswordLen:
		return fmt.Errorf("%w: password is longer than %d bytes", common.ErrorValidation, maxPasswordLen)
	}
	return nil
}

// Register creates a user with a bcrypt hash of password.
// A taken username yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := checkCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login checks the password and returns a signed access token. Unknown users
// and wrong passwords both yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// match the timing of a wrong password
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// dummy returns the hash of a random password nobody knows.
func (s *UserService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword(common.GenerateRandByteArray(32), bcrypt.DefaultCost)
	})
	return s.dummyHash
}

// UserID resolves a bearer token to the id of its user.
func (s *UserService) UserID(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

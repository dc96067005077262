// Package services contains application services for the devsync client.
// This file defines the authentication service: online/offline login,
// register, liveness check and logout housekeeping.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/devsync/internal/client/client"
	"github.com/dmitrijs2005/devsync/internal/client/repositories/developers"
	"github.com/dmitrijs2005/devsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/devsync/internal/client/repositories/pending"
	"github.com/dmitrijs2005/devsync/internal/dbx"
	"golang.org/x/crypto/bcrypt"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - OnlineLogin: authenticate against the server, store the token and an
//     offline verifier of the password.
//   - OfflineLogin: check the password against the stored verifier when the
//     server cannot be reached.
//   - Register: create a new user on the server.
//   - Ping: check server liveness.
//   - Logout: forget the session and every locally stored record.
type AuthService interface {
	OnlineLogin(ctx context.Context, username string, password []byte) error
	OfflineLogin(ctx context.Context, username string, password []byte) error
	Register(ctx context.Context, username string, password []byte) error
	Ping(ctx context.Context) error
	Logout(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
}

func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

// OfflineLogin succeeds only for the user who last signed in online on this
// machine, with the same password.
func (a *authService) OfflineLogin(ctx context.Context, username string, password []byte) error {
	metadataRepo := a.getMetadataRepo()

	savedUsername, err := metadataRepo.Get(ctx, metadata.KeyUsername)
	if err != nil {
		return err
	}
	savedVerifier, err := metadataRepo.Get(ctx, metadata.KeyVerifier)
	if err != nil {
		return err
	}
	if savedUsername == nil || savedVerifier == nil {
		return client.ErrLocalDataNotAvailable
	}
	if string(savedUsername) != username {
		return client.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(savedVerifier, password); err != nil {
		return client.ErrUnauthorized
	}
	return nil
}

// OnlineLogin authenticates against the server and saves the session. When a
// different user signs in, the previous user's cache and queue are dropped.
func (a *authService) OnlineLogin(ctx context.Context, username string, password []byte) error {
	token, err := a.client.Login(ctx, username, string(password))
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	verifier, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("verifier error: %w", err)
	}

	if err := a.saveSession(ctx, username, token, verifier); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

func (a *authService) saveSession(ctx context.Context, username, token string, verifier []byte) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		metadataRepo := metadata.NewSQLiteRepository(tx)

		previous, err := metadataRepo.Get(ctx, metadata.KeyUsername)
		if err != nil {
			return err
		}
		if previous != nil && string(previous) != username {
			if err := clearLocalData(ctx, tx); err != nil {
				return err
			}
		}

		if err := metadataRepo.Set(ctx, metadata.KeyUsername, []byte(username)); err != nil {
			return err
		}
		if err := metadataRepo.Set(ctx, metadata.KeyToken, []byte(token)); err != nil {
			return err
		}
		return metadataRepo.Set(ctx, metadata.KeyVerifier, verifier)
	})
}

func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	return a.client.Register(ctx, username, string(password))
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Logout wipes the session, the cached records and unsynced creates.
func (a *authService) Logout(ctx context.Context) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := metadata.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		return clearLocalData(ctx, tx)
	})
}

func clearLocalData(ctx context.Context, tx dbx.DBTX) error {
	if err := developers.NewSQLiteRepository(tx).Clear(ctx); err != nil {
		return err
	}
	if err := pending.NewSQLiteRepository(tx).DeleteAll(ctx); err != nil {
		return err
	}
	return metadata.NewSQLiteRepository(tx).Delete(ctx, metadata.KeyRemoteTotal)
}

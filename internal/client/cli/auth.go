package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/devsync/internal/client/client"
	"github.com/dmitrijs2005/devsync/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for a username and password and attempts to
// create a new account via the AuthService.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.writer())
	if err != nil {
		return err
	}

	password, err := getPassword(a.writer())
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		return err
	}

	printlnFn("Success!")
	return nil
}

// Login prompts the user for credentials and tries to authenticate.
//
// The method first attempts an online login. If the server is unavailable
// it falls back to offline login against the locally stored verifier. On
// success the background sync loops are (re)started and Mode becomes
// ModeOnline or ModeOffline. When both fail Mode becomes ModeDisabled.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.writer())
	if err != nil {
		return err
	}

	password, err := getPassword(a.writer())
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	mode := ModeOnline
	err = a.authService.OnlineLogin(ctx, userName, password)
	if errors.Is(err, client.ErrUnavailable) {
		a.logger().Warn(ctx, "server unavailable, trying offline login", "user", userName)
		mode = ModeOffline
		err = a.authService.OfflineLogin(ctx, userName, password)
	}
	if err != nil {
		a.logger().Warn(ctx, "login unsuccessful", "user", userName, "error", err)
		if mode == ModeOffline {
			a.setMode(ModeDisabled)
		}
		return err
	}

	a.setSession(userName, true)
	a.setMode(mode)
	printlnFn("Logged in as", userName, "("+string(mode)+")")
	a.startBackground(ctx)
	return nil
}

// Logout stops the sync loops and removes the session together with every
// locally cached developer and unsynced create.
func (a *App) Logout(ctx context.Context) error {
	a.stopBackground()
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.setSession("", false)
	a.setMode("")
	return nil
}

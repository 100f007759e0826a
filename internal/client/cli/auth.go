package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, name and password and creates an account.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Enter name (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.api.Register(ctx, email, password, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s. You can log in now.\n", user.Email)
	return nil
}

// Login prompts for credentials and opens a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.setSession(sess)
	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Logged in as %s until %s\n", sess.Email, sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

// Logout revokes the session on the server and forgets it locally.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.setSession(nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Whoami shows the current session as the server sees it.
func (a *App) Whoami(ctx context.Context) error {
	sess, err := a.api.Session(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (id %s), session expires %s\n", sess.Email, sess.UserID, sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

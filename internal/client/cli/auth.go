package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/logminer/internal/client/auth"
)

const loginTimeout = 5 * time.Minute

var errNoClientID = errors.New("client id is not configured, set --client-id or LOGMINER_CLIENT_ID")

// Login runs the authorization code flow with PKCE: it prints the sign-in
// URL, waits for the browser redirect on the loopback callback server and
// redeems the code.
func (a *App) Login(ctx context.Context) error {
	if a.oauth.ClientID == "" {
		return errNoClientID
	}

	verifier, err := auth.NewVerifier()
	if err != nil {
		return err
	}
	state := auth.NewState()

	cb, err := startCallbackServer(a.oauth.RedirectURL, state)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_ = cb.Close(shutdownCtx)
	}()

	cfg := a.oauth
	cfg.RedirectURL = cb.RedirectURL()
	signInURL, err := auth.AuthorizeURL(cfg, auth.Challenge(verifier), state)
	if err != nil {
		return err
	}

	printlnFn("Open this URL in your browser to sign in:")
	printlnFn(signInURL)

	waitCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()
	code, err := cb.Wait(waitCtx)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if err := a.tokens.Login(ctx, code, verifier); err != nil {
		a.log.Error(ctx, "login failed", "error", err)
		return err
	}

	a.log.Info(ctx, "login successful")
	printlnFn("Login successful", a.status())
	return nil
}

// Logout stops any stream and erases the session and its persisted tokens.
func (a *App) Logout(ctx context.Context) error {
	a.monitor.Stop()
	if err := a.tokens.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out")
	return nil
}

// WhoAmI prints the identity carried by the access token and, when the
// backend is reachable, the matching LogMiner profile.
func (a *App) WhoAmI(ctx context.Context) error {
	token := a.session.AccessToken()
	if token == "" {
		printlnFn("Not logged in")
		return nil
	}

	if email, err := auth.Email(token); err == nil {
		printlnFn("Signed in as", email)
	}

	u, err := a.api.CurrentUser(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("%s %s <%s> role %s", u.Name, u.LastName, u.Email, u.Role))
	return nil
}

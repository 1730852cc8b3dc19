package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/strumcli/strum/internal/auth"
	"github.com/strumcli/strum/internal/server"
	"github.com/strumcli/strum/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL = "https://accounts.spotify.com/authorize"

	// authTimeout bounds the wait for the browser round-trip so an
	// abandoned tab cannot block the process and hold the callback port.
	authTimeout = 2 * time.Minute
)

// oauthConfig builds the OAuth2 config from the stored client credentials
// and the fixed required scope set.
func (r *Runner) oauthConfig() (*oauth2.Config, error) {
	if err := r.config.ValidateCredentials(); err != nil {
		return nil, err
	}

	creds := r.config.Credentials.Spotify
	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = fmt.Sprintf("http://%s:%d/callback", r.config.Server.Host, r.config.Server.Port)
	}

	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       auth.RequiredScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: auth.DefaultTokenURL,
		},
	}, nil
}

// doOAuth executes one interactive authorization flow: local callback
// listener, browser handoff, bounded wait, code exchange, persist.
func (r *Runner) doOAuth(ctx context.Context) (*auth.Bundle, error) {
	config, err := r.oauthConfig()
	if err != nil {
		return nil, err
	}

	state := shared.GenerateState()
	handler := server.NewCallbackHandler(config, state)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	listener := server.NewCallbackListener(addr, config.RedirectURL, handler)

	if err := listener.Start(); err != nil {
		return nil, err
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := listener.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down callback listener", "error", err)
		}
	}()

	authURL := config.AuthCodeURL(state)

	r.writePlain("→ Opening browser for authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		r.writePlain("⚠ Could not open browser automatically.\nPlease open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%v timeout)...\n", authTimeout)

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-handler.Result():
	case err := <-listener.Err():
		return nil, fmt.Errorf("callback listener error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization not completed within %v", shared.ErrTimeout, authTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	bundle := auth.FromToken(result.Token, auth.ScopeString(), time.Now())
	if err := r.tokens.Store().Save(bundle); err != nil {
		return nil, fmt.Errorf("failed to persist tokens: %w", err)
	}

	return bundle, nil
}

// handleAuthError runs the interactive flow once when err demands
// reauthorization. Returns true when the caller should retry its
// operation; the flow is never re-run a second time within one command.
func (r *Runner) handleAuthError(ctx context.Context, err error) (bool, error) {
	if err == nil || !errors.Is(err, shared.ErrAuthRequired) {
		return false, err
	}

	r.writePlain("⚠ Authorization required. Starting browser authorization...\n")

	if _, authErr := r.doOAuth(ctx); authErr != nil {
		return false, fmt.Errorf("reauthorization failed: %w", authErr)
	}

	r.writePlain("✓ Authorization successful. Retrying...\n")

	return true, nil
}

// AuthLogin runs the interactive authorization flow and stores the tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	bundle, err := r.doOAuth(ctx)
	if err != nil {
		return err
	}

	r.writePlain("✓ Authorization successful\n")
	r.writePlain("✓ Tokens saved to %s\n", r.tokens.Store().Path())
	if bundle.RefreshToken == "" {
		r.writePlain("⚠ No refresh token issued; you will be asked to authorize again when the token expires.\n")
	}

	return nil
}

// AuthStatus reports the stored token's scope coverage and freshness
// without making any network call.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	bundle, err := r.tokens.Store().Load()
	if err != nil {
		return fmt.Errorf("failed to read token file: %w", err)
	}

	if bundle == nil || bundle.AccessToken == "" {
		r.writePlain("✗ Not authorized. Run 'strum auth login'.\n")
		return nil
	}

	r.writePlain("✓ Token stored at %s\n", r.tokens.Store().Path())

	if bundle.HasScopes(auth.RequiredScopes) {
		r.writePlain("  Scopes: sufficient\n")
	} else {
		r.writePlain("  Scopes: insufficient, reauthorization required\n")
	}

	if bundle.IsFresh(time.Now()) {
		remaining := bundle.ObtainedAt + bundle.ExpiresIn - time.Now().Unix()
		r.writePlain("  Access token: fresh (%ds remaining)\n", remaining)
	} else if bundle.RefreshToken != "" {
		r.writePlain("  Access token: stale, will refresh on next call\n")
	} else {
		r.writePlain("  Access token: stale with no refresh token, reauthorization required\n")
	}

	return nil
}

// AuthLogout removes the stored token bundle.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.tokens.Store().Clear(); err != nil {
		return err
	}
	r.writePlain("✓ Stored tokens removed\n")
	return nil
}

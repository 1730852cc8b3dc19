package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/strumcli/strum/internal/shared"
)

// DefaultTokenURL is the Spotify accounts service token endpoint.
const DefaultTokenURL = "https://accounts.spotify.com/api/token"

// Manager produces a currently valid bearer token for every outbound API
// call, transparently handling expiry via refresh.
//
// Every failure path resolves to [shared.ErrAuthRequired]: the caller's
// contract is "a token or a clear reauthorization trigger", never a raw
// transport or parse error.
type Manager struct {
	store        *Store
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	logger       *log.Logger
	now          func() time.Time
}

// ManagerOpts contains configuration options for creating a Manager.
type ManagerOpts struct {
	Store        *Store
	ClientID     string
	ClientSecret string
	TokenURL     string
	HTTPClient   *http.Client
	Logger       *log.Logger
	Now          func() time.Time
}

// NewManager creates a Manager with the provided options, filling defaults
// for the token endpoint, HTTP client, logger, and clock.
func NewManager(opts ManagerOpts) *Manager {
	if opts.TokenURL == "" {
		opts.TokenURL = DefaultTokenURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Manager{
		store:        opts.Store,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		tokenURL:     opts.TokenURL,
		httpClient:   opts.HTTPClient,
		logger:       opts.Logger,
		now:          opts.Now,
	}
}

// Store returns the underlying token store, so the interactive flow can
// persist a freshly exchanged bundle through the same path.
func (m *Manager) Store() *Store {
	return m.store
}

// AccessToken returns a currently valid bearer token.
//
// Missing bundle, insufficient scopes, stale token without a refresh
// token, and refresh failure all surface as [shared.ErrAuthRequired];
// the caller runs the interactive authorization flow and retries once.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	bundle, err := m.store.Load()
	if err != nil {
		// An unreadable token file is the same as no token.
		m.logger.Warn("token file unreadable, reauthorization required", "error", err)
		return "", shared.ErrAuthRequired
	}

	if bundle == nil || bundle.AccessToken == "" {
		return "", fmt.Errorf("%w: no stored token", shared.ErrAuthRequired)
	}

	if !bundle.HasScopes(RequiredScopes) {
		return "", fmt.Errorf("%w: stored token is missing required scopes", shared.ErrAuthRequired)
	}

	if bundle.IsFresh(m.now()) {
		return bundle.AccessToken, nil
	}

	if bundle.RefreshToken == "" {
		return "", fmt.Errorf("%w: token expired with no refresh token", shared.ErrAuthRequired)
	}

	refreshed, err := m.refresh(ctx, bundle)
	if err != nil {
		m.logger.Warn("token refresh failed, reauthorization required", "error", err)
		return "", fmt.Errorf("%w: %v", shared.ErrAuthRequired, err)
	}

	return refreshed.AccessToken, nil
}

// refreshResponse is the token endpoint's reply to a refresh grant.
type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// refresh exchanges the bundle's refresh token for a new access token and
// persists the mutated bundle. The stored bundle is only updated after a
// fully successful exchange; the refresh token is replaced only when the
// endpoint issues a new one.
func (m *Manager) refresh(ctx context.Context, bundle *Bundle) (*Bundle, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", bundle.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh request: %w", err)
	}

	req.SetBasicAuth(m.clientID, m.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: token endpoint returned status %d", shared.ErrRefreshFailed, resp.StatusCode)
	}

	var parsed refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed token response: %v", shared.ErrRefreshFailed, err)
	}

	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response missing access_token", shared.ErrRefreshFailed)
	}

	bundle.AccessToken = parsed.AccessToken
	bundle.ExpiresIn = parsed.ExpiresIn
	bundle.ObtainedAt = m.now().Unix()
	if parsed.TokenType != "" {
		bundle.TokenType = parsed.TokenType
	}
	if parsed.RefreshToken != "" {
		bundle.RefreshToken = parsed.RefreshToken
	}

	if err := m.store.Save(bundle); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	m.logger.Debug("access token refreshed", "expires_in", bundle.ExpiresIn)

	return bundle, nil
}

// package api is the single chokepoint for outbound Spotify Web API
// traffic: bearer auth, query building, body serialization, and a uniform
// failure taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/strumcli/strum/internal/shared"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Spotify Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// RateLimitDelay is the fixed wait after a 429 before reporting to the
	// user. The Retry-After header is not assumed reliable, so there is no
	// retry loop, just one bounded pause.
	RateLimitDelay = 5 * time.Second
)

// TokenSource yields a currently valid bearer token, or
// [shared.ErrAuthRequired] when interactive authorization is needed.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// ErrorKind classifies a failed API call for caller branching.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindAuth
	KindForbidden
	KindNotFound
	KindNoActiveDevice
	KindRateLimited
	KindServerFault
)

// StatusError is the structured failure the gateway returns for non-2xx
// responses. It unwraps to the matching sentinel in [shared] so call sites
// can branch with [errors.Is].
type StatusError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v (status %d): %s", e.Unwrap(), e.Status, e.Message)
	}
	return fmt.Sprintf("%v (status %d)", e.Unwrap(), e.Status)
}

func (e *StatusError) Unwrap() error {
	switch e.Kind {
	case KindAuth:
		return shared.ErrAuthRequired
	case KindForbidden:
		return shared.ErrForbidden
	case KindNotFound:
		return shared.ErrNotFound
	case KindNoActiveDevice:
		return shared.ErrNoActiveDevice
	case KindRateLimited:
		return shared.ErrRateLimited
	case KindServerFault:
		return shared.ErrServiceUnavailable
	default:
		return shared.ErrAPIRequest
	}
}

// Gateway issues authenticated HTTP calls against the Web API.
type Gateway struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// GatewayOpts contains configuration options for creating a Gateway.
type GatewayOpts struct {
	BaseURL    string
	Tokens     TokenSource
	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewGateway creates a Gateway with the provided options.
//
// Outbound calls are paced to 10 requests/second with a small burst so a
// rapid command sequence cannot trip the remote rate limit.
func NewGateway(opts GatewayOpts) *Gateway {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Gateway{
		baseURL:    opts.BaseURL,
		tokens:     opts.Tokens,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(10), 5),
		logger:     opts.Logger,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Invoke performs an authenticated request and returns the raw JSON
// payload. An empty 2xx body (202/204 player acknowledgements) yields a
// nil payload and no error.
//
// If no token is available the call fails with [shared.ErrAuthRequired]
// before any network traffic. Non-2xx responses come back as a
// [*StatusError]; the gateway itself never retries, except the single
// fixed pause after a rate-limit response.
func (g *Gateway) Invoke(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	token, err := g.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	target := g.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if len(data) == 0 {
			return nil, nil
		}
		return json.RawMessage(data), nil
	}

	statusErr := classify(resp.StatusCode, path, data)
	g.logger.Debug("API call failed", "method", method, "path", path, "status", resp.StatusCode)

	if statusErr.Kind == KindRateLimited {
		// One bounded pause so the very next user command has headroom.
		if err := g.sleep(ctx, RateLimitDelay); err != nil {
			return nil, err
		}
	}

	return nil, statusErr
}

// Get performs an authenticated GET request.
func (g *Gateway) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return g.Invoke(ctx, http.MethodGet, path, query, nil)
}

// Post performs an authenticated POST request.
func (g *Gateway) Post(ctx context.Context, path string, query url.Values, body any) (json.RawMessage, error) {
	return g.Invoke(ctx, http.MethodPost, path, query, body)
}

// Put performs an authenticated PUT request.
func (g *Gateway) Put(ctx context.Context, path string, query url.Values, body any) (json.RawMessage, error) {
	return g.Invoke(ctx, http.MethodPut, path, query, body)
}

// Delete performs an authenticated DELETE request.
func (g *Gateway) Delete(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return g.Invoke(ctx, http.MethodDelete, path, query, nil)
}

// apiError is the error envelope the Web API returns.
type apiError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// classify maps a non-2xx response onto the failure taxonomy. A 404 on a
// player path means no active device rather than missing content.
func classify(status int, path string, body []byte) *StatusError {
	message := ""
	var envelope apiError
	if err := json.Unmarshal(body, &envelope); err == nil {
		message = envelope.Error.Message
	}

	kind := KindUnexpected
	switch {
	case status == http.StatusUnauthorized:
		kind = KindAuth
	case status == http.StatusForbidden:
		kind = KindForbidden
	case status == http.StatusNotFound:
		if strings.HasPrefix(path, "/me/player") {
			kind = KindNoActiveDevice
		} else {
			kind = KindNotFound
		}
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status >= 500:
		kind = KindServerFault
	}

	return &StatusError{Kind: kind, Status: status, Message: message}
}

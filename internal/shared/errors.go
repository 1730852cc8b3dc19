package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthRequired  = fmt.Errorf("authorization required")
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrStateMismatch = fmt.Errorf("state parameter mismatch")
	ErrRefreshFailed = fmt.Errorf("token refresh failed")
	ErrTimeout       = fmt.Errorf("operation timed out")

	// API errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrForbidden          = fmt.Errorf("permission denied")
	ErrNotFound           = fmt.Errorf("content not found")
	ErrNoActiveDevice     = fmt.Errorf("no active playback device")
	ErrRateLimited        = fmt.Errorf("rate limited")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Session reference errors
	ErrOutOfRange = fmt.Errorf("reference out of range")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrUnknownCommand  = fmt.Errorf("unknown command")
)

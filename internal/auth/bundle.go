// package auth owns the access-token lifecycle: the persisted token bundle,
// its freshness and scope invariants, and the manager that refreshes or
// demands full reauthorization.
package auth

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// FreshnessMargin is subtracted from a bundle's lifetime when checking
// expiry, so a token is replaced before it can expire mid-request.
const FreshnessMargin = 60 * time.Second

// RequiredScopes is the fixed scope set every stored bundle must cover.
// A bundle missing any of these is treated identically to no token at all.
var RequiredScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-read-recently-played",
	"user-library-read",
	"playlist-read-private",
}

// ScopeString returns [RequiredScopes] as the space-delimited form used in
// authorization requests and stored bundles.
func ScopeString() string {
	return strings.Join(RequiredScopes, " ")
}

// Bundle is the persisted access/refresh token record.
type Bundle struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ObtainedAt   int64  `json:"obtained_at"`
	Scopes       string `json:"scopes"`
}

// IsFresh reports whether the bundle's access token is still usable at the
// given instant: now - obtained_at < expires_in - [FreshnessMargin].
func (b *Bundle) IsFresh(now time.Time) bool {
	age := now.Unix() - b.ObtainedAt
	return age < b.ExpiresIn-int64(FreshnessMargin.Seconds())
}

// HasScopes reports whether every scope in required appears in the
// bundle's space-delimited scope field.
func (b *Bundle) HasScopes(required []string) bool {
	granted := make(map[string]bool)
	for _, s := range strings.Fields(b.Scopes) {
		granted[s] = true
	}

	for _, s := range required {
		if !granted[s] {
			return false
		}
	}

	return true
}

// FromToken builds a Bundle from an [oauth2.Token] obtained through the
// authorization-code exchange. The scope string records what was requested;
// obtained_at is stamped with now.
func FromToken(token *oauth2.Token, scopes string, now time.Time) *Bundle {
	expiresIn := int64(3600)
	if !token.Expiry.IsZero() {
		expiresIn = int64(token.Expiry.Sub(now).Seconds())
	}

	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return &Bundle{
		AccessToken:  token.AccessToken,
		TokenType:    tokenType,
		ExpiresIn:    expiresIn,
		RefreshToken: token.RefreshToken,
		ObtainedAt:   now.Unix(),
		Scopes:       scopes,
	}
}

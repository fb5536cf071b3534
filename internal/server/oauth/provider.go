// Package oauth implements federated login: the Google OpenID Connect
// provider and the single-use store for state and PKCE verifiers.
package oauth

import "context"

// Identity is what a provider asserts about the signed-in user. Account
// decisions are left to the caller.
type Identity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
}

// Provider is an external identity provider using the authorization code
// flow with PKCE.
type Provider interface {
	Name() string
	// AuthCodeURL returns the provider URL to redirect the browser to.
	AuthCodeURL(state, verifier string) string
	// Exchange trades the callback code for a verified Identity.
	Exchange(ctx context.Context, code, verifier string) (*Identity, error)
}

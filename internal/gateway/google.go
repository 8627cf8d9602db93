package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"essay-auth/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// GoogleConfig holds the OAuth client registration for the Google sign-in
// flow.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// IssuerURL defaults to Google's; tests point it at a fake provider.
	IssuerURL string
}

// GoogleProvider drives the redirect handshake with Google and decodes the
// returned ID token into a federated assertion.
// Implements domain.FederatedProvider.
type GoogleProvider struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
	logger   *slog.Logger
}

// NewGoogleProvider discovers the provider's endpoints and builds the OAuth
// client. Discovery performs a network round trip, so this runs once at
// startup.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig, logger *slog.Logger) (*GoogleProvider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC endpoints: %w", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
	}

	logger.Info("federated provider initialized", "issuer", cfg.IssuerURL)

	return &GoogleProvider{
		oauth:    oauthCfg,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		logger:   logger.With("component", "google_provider"),
	}, nil
}

// AuthURL returns the provider URL to redirect the browser to.
func (g *GoogleProvider) AuthURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// ResolveCallback exchanges the authorization code and verifies the returned
// ID token. The assertion handed back is trusted by callers; nothing
// downstream re-checks it.
func (g *GoogleProvider) ResolveCallback(ctx context.Context, code string) (*domain.FederatedAssertion, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		g.logger.Error("code exchange failed", "error", err)
		return nil, fmt.Errorf("%w: code exchange failed", domain.ErrProviderUnavailable)
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("%w: no ID token in response", domain.ErrProviderUnavailable)
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		g.logger.Error("ID token verification failed", "error", err)
		return nil, fmt.Errorf("%w: ID token invalid", domain.ErrProviderUnavailable)
	}

	var claims struct {
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: cannot decode claims", domain.ErrProviderUnavailable)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: assertion carries no email", domain.ErrProviderUnavailable)
	}

	g.logger.Info("federated assertion resolved", "handle", claims.Email)

	return &domain.FederatedAssertion{
		Handle:     claims.Email,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
		AvatarURL:  claims.Picture,
	}, nil
}

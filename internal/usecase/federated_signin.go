package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"essay-auth/internal/domain"
	"essay-auth/internal/infrastructure/token"
)

// FederatedResult is the terminal outcome of a federated handshake. Exactly
// one of Credentials or Pending is set: a matched principal yields
// credentials, an unknown handle yields the pending identity for the
// registration completion step.
type FederatedResult struct {
	IsNewUser   bool
	Credentials *domain.Credentials
	Pending     *domain.PendingFederatedIdentity
}

// FederatedSignIn orchestrates the redirect handshake with the external
// identity provider. One handshake moves through three states: redirected
// (Start), callback received (assertion decoded), and resolved (Callback
// returns; terminal in both the matched and the pending-registration branch).
type FederatedSignIn struct {
	store    domain.CredentialStore
	issuer   domain.TokenIssuer
	provider domain.FederatedProvider
	logger   *slog.Logger
}

// NewFederatedSignIn creates a new FederatedSignIn usecase.
func NewFederatedSignIn(store domain.CredentialStore, issuer domain.TokenIssuer, provider domain.FederatedProvider, logger *slog.Logger) *FederatedSignIn {
	return &FederatedSignIn{store: store, issuer: issuer, provider: provider, logger: logger}
}

// Start begins the handshake: it generates the state parameter and returns
// the provider URL to redirect the browser to.
func (uc *FederatedSignIn) Start() (authURL, state string, err error) {
	state, err = token.NewStateToken()
	if err != nil {
		return "", "", err
	}
	return uc.provider.AuthURL(state), state, nil
}

// Callback consumes the provider's redirect. The assertion's validity is the
// provider gateway's responsibility; from here on it is trusted.
//
// A matched handle terminates with credentials. An unknown handle terminates
// with IsNewUser=true and a pending identity, deliberately without creating
// a principal, so registration stays a separate confirmation step.
func (uc *FederatedSignIn) Callback(ctx context.Context, code string) (*FederatedResult, error) {
	assertion, err := uc.provider.ResolveCallback(ctx, code)
	if err != nil {
		return nil, err
	}

	p, err := uc.store.FindByHandle(ctx, assertion.Handle)
	switch {
	case err == nil:
		if !p.Active {
			return nil, domain.ErrAccountDisabled
		}

		now := time.Now()
		if err := uc.store.RecordLogin(ctx, p.ID, now); err != nil {
			uc.logger.Warn("failed to record login time", "handle", p.Handle, "error", err)
		}
		p.RecordLogin(now)

		creds, err := mintCredentials(uc.issuer, p)
		if err != nil {
			return nil, err
		}

		uc.logger.Info("federated sign-in matched principal", "handle", p.Handle)
		return &FederatedResult{IsNewUser: false, Credentials: creds}, nil

	case errors.Is(err, domain.ErrPrincipalNotFound):
		pending := domain.NewPendingFederatedIdentity(*assertion)
		uc.logger.Info("federated sign-in pending registration", "handle", pending.Handle)
		return &FederatedResult{IsNewUser: true, Pending: &pending}, nil

	default:
		return nil, err
	}
}

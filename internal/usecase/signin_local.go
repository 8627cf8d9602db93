package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"essay-auth/internal/domain"
)

// SigninLocal authenticates a password-backed principal and mints the
// credential pair.
type SigninLocal struct {
	store  domain.CredentialStore
	hasher domain.PasswordHasher
	issuer domain.TokenIssuer
	logger *slog.Logger
}

// NewSigninLocal creates a new SigninLocal usecase.
func NewSigninLocal(store domain.CredentialStore, hasher domain.PasswordHasher, issuer domain.TokenIssuer, logger *slog.Logger) *SigninLocal {
	return &SigninLocal{store: store, hasher: hasher, issuer: issuer, logger: logger}
}

// Execute verifies the password and returns fresh credentials. An unknown
// handle and a wrong password are indistinguishable to the caller.
func (uc *SigninLocal) Execute(ctx context.Context, handle, password string) (*domain.Credentials, error) {
	p, err := uc.store.FindByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// A federated account has no password hash and can never sign in locally.
	if p.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if err := uc.hasher.Compare(p.PasswordHash, password); err != nil {
		return nil, err
	}

	if !p.Active {
		return nil, domain.ErrAccountDisabled
	}

	now := time.Now()
	if err := uc.store.RecordLogin(ctx, p.ID, now); err != nil {
		// Sign-in still succeeds; the stamp is best-effort.
		uc.logger.Warn("failed to record login time", "handle", handle, "error", err)
	}
	p.RecordLogin(now)

	uc.logger.Info("local sign-in succeeded", "handle", handle)
	return mintCredentials(uc.issuer, p)
}

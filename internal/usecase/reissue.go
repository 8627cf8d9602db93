package usecase

import (
	"context"
	"errors"
	"log/slog"

	"essay-auth/internal/domain"
)

// Reissue exchanges a valid refresh token for a fresh access token. It is the
// server half of session extension; the server never extends a session on its
// own, it only answers explicit reissue requests.
type Reissue struct {
	store  domain.CredentialStore
	issuer domain.TokenIssuer
	logger *slog.Logger
}

// NewReissue creates a new Reissue usecase.
func NewReissue(store domain.CredentialStore, issuer domain.TokenIssuer, logger *slog.Logger) *Reissue {
	return &Reissue{store: store, issuer: issuer, logger: logger}
}

// Execute verifies the refresh token and mints a new access token. The
// principal is re-read so a deactivated account stops getting fresh tokens
// even while its refresh token is still formally valid.
func (uc *Reissue) Execute(ctx context.Context, refreshToken string) (string, error) {
	claims, err := uc.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		uc.logger.Warn("refresh token rejected", "error", err)
		return "", err
	}

	p, err := uc.store.FindByHandle(ctx, claims.Handle)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	if !p.Active {
		return "", domain.ErrAccountDisabled
	}

	// Role comes from the store, not the old claim, so a role change takes
	// effect at the next reissue cycle.
	access, err := uc.issuer.Mint(p.Handle, p.Role)
	if err != nil {
		return "", err
	}

	uc.logger.Info("access token reissued", "handle", p.Handle)
	return access, nil
}

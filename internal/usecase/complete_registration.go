package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"essay-auth/internal/domain"

	"github.com/go-playground/validator/v10"
)

// CompleteRegistrationInput is the registration completion payload. Fields
// are pre-filled from the pending federated identity but remain editable by
// the caller.
type CompleteRegistrationInput struct {
	Handle    string `json:"handle" validate:"required,email"`
	Name      string `json:"name" validate:"required,max=100"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// CompleteRegistration converts a pending federated identity into a
// persisted principal and mints credentials for it.
type CompleteRegistration struct {
	store    domain.CredentialStore
	issuer   domain.TokenIssuer
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCompleteRegistration creates a new CompleteRegistration usecase.
func NewCompleteRegistration(store domain.CredentialStore, issuer domain.TokenIssuer, logger *slog.Logger) *CompleteRegistration {
	return &CompleteRegistration{
		store:    store,
		issuer:   issuer,
		validate: validator.New(),
		logger:   logger,
	}
}

// Execute validates the input and resolves it through the idempotent
// find-or-create operation. A re-submit, or a race with another tab that
// completed registration first, lands on the existing principal and still
// succeeds.
func (uc *CompleteRegistration) Execute(ctx context.Context, in CompleteRegistrationInput) (*domain.Credentials, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	p, err := uc.store.FindOrCreateFederated(ctx, domain.PendingFederatedIdentity{
		Handle:    in.Handle,
		GivenName: in.Name,
		AvatarURL: in.AvatarURL,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := uc.store.RecordLogin(ctx, p.ID, now); err != nil {
		uc.logger.Warn("failed to record login time", "handle", p.Handle, "error", err)
	}
	p.RecordLogin(now)

	uc.logger.Info("federated registration completed", "handle", p.Handle)
	return mintCredentials(uc.issuer, p)
}

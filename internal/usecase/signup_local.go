package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"essay-auth/internal/domain"

	"github.com/go-playground/validator/v10"
)

// SignupInput is the local signup request payload.
type SignupInput struct {
	Handle   string `json:"handle" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

// SignupLocal registers a password-backed principal.
type SignupLocal struct {
	store    domain.CredentialStore
	hasher   domain.PasswordHasher
	validate *validator.Validate
	logger   *slog.Logger
}

// NewSignupLocal creates a new SignupLocal usecase.
func NewSignupLocal(store domain.CredentialStore, hasher domain.PasswordHasher, logger *slog.Logger) *SignupLocal {
	return &SignupLocal{
		store:    store,
		hasher:   hasher,
		validate: validator.New(),
		logger:   logger,
	}
}

// Execute validates the input, hashes the password and persists the
// principal. A taken handle surfaces as domain.ErrConflict.
func (uc *SignupLocal) Execute(ctx context.Context, in SignupInput) (*domain.Principal, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	p, err := uc.store.CreateLocal(ctx, in.Handle, hash, in.Name)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("local signup completed", "handle", p.Handle)
	return p, nil
}

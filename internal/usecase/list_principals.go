package usecase

import (
	"context"

	"essay-auth/internal/domain"
)

// ListPrincipals returns every principal for the admin dashboard.
type ListPrincipals struct {
	store domain.CredentialStore
}

// NewListPrincipals creates a new ListPrincipals usecase.
func NewListPrincipals(store domain.CredentialStore) *ListPrincipals {
	return &ListPrincipals{store: store}
}

// Execute lists all principals. Password hashes never leave the domain
// struct's JSON boundary, so the slice is safe to serialize as-is.
func (uc *ListPrincipals) Execute(ctx context.Context) ([]domain.Principal, error) {
	return uc.store.List(ctx)
}

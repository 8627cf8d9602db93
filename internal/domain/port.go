package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CredentialStore provides access to persisted principals.
type CredentialStore interface {
	FindByHandle(ctx context.Context, handle string) (*Principal, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Principal, error)
	// CreateLocal persists a password-backed principal. Returns ErrConflict
	// when the handle is already taken.
	CreateLocal(ctx context.Context, handle, passwordHash, name string) (*Principal, error)
	// FindOrCreateFederated returns the existing principal for the pending
	// identity's handle, or creates one tagged with the federated provider.
	// Idempotent under concurrent invocation with the same handle.
	FindOrCreateFederated(ctx context.Context, pending PendingFederatedIdentity) (*Principal, error)
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context) ([]Principal, error)
}

// TokenIssuer mints and verifies the two credential artifacts.
type TokenIssuer interface {
	Mint(handle string, role Role) (string, error)
	MintRefresh(handle string, role Role) (string, error)
	// Verify returns exactly one of ErrTokenMalformed,
	// ErrTokenSignatureInvalid or ErrTokenExpired on failure.
	Verify(tokenString string) (*TokenClaims, error)
	VerifyRefresh(tokenString string) (*TokenClaims, error)
}

// PasswordHasher hashes and compares local passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns ErrInvalidCredentials when the password does not match.
	Compare(hash, password string) error
}

// FederatedProvider drives the redirect handshake with the external identity
// provider. Assertion decoding and verification happen inside the provider;
// callers trust the returned assertion.
type FederatedProvider interface {
	AuthURL(state string) string
	ResolveCallback(ctx context.Context, code string) (*FederatedAssertion, error)
}

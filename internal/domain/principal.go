package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider identifies how a principal authenticates.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

// Role represents the coarse authorization role of a principal.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole converts a claim string back into a Role, defaulting to RoleUser
// for anything unrecognized so a tampered claim can never grant admin.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Principal is a persisted authenticated account.
type Principal struct {
	ID            uuid.UUID  `json:"id"`
	Handle        string     `json:"handle"`
	PasswordHash  string     `json:"-"`
	Name          string     `json:"name,omitempty"`
	AvatarURL     string     `json:"avatar_url,omitempty"`
	Provider      Provider   `json:"provider"`
	Role          Role       `json:"role"`
	Active        bool       `json:"active"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

// NewLocalPrincipal creates a principal backed by a password hash.
// The hash must already be computed; this constructor never sees a plaintext
// password.
func NewLocalPrincipal(handle, passwordHash, name string) (*Principal, error) {
	if err := ValidateHandle(handle); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, ErrValidation
	}

	now := time.Now()
	return &Principal{
		ID:           uuid.New(),
		Handle:       handle,
		PasswordHash: passwordHash,
		Name:         name,
		Provider:     ProviderLocal,
		Role:         RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NewFederatedPrincipal creates a principal linked to an external identity
// provider. There is no password hash; the provider already verified the
// email, so EmailVerified starts true.
func NewFederatedPrincipal(pending PendingFederatedIdentity) (*Principal, error) {
	if err := ValidateHandle(pending.Handle); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Principal{
		ID:            uuid.New(),
		Handle:        pending.Handle,
		Name:          pending.DisplayName(),
		AvatarURL:     pending.AvatarURL,
		Provider:      ProviderGoogle,
		Role:          RoleUser,
		Active:        true,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// RecordLogin stamps the last successful sign-in time.
func (p *Principal) RecordLogin(at time.Time) {
	p.LastLoginAt = &at
	p.UpdatedAt = time.Now()
}

// IsAdmin returns true if the principal has the admin role.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// ValidateHandle checks that a login handle is a plausible email address.
func ValidateHandle(handle string) error {
	if handle == "" {
		return ErrValidation
	}
	if _, err := mail.ParseAddress(handle); err != nil {
		return ErrValidation
	}
	return nil
}

// FederatedAssertion is the identity the external provider asserted back to
// us on callback. Its validity is guaranteed by the gateway that decoded it.
type FederatedAssertion struct {
	Handle     string
	GivenName  string
	FamilyName string
	AvatarURL  string
}

// PendingFederatedIdentity is the transient value produced when a federated
// callback resolves to no existing principal. It lives for one redirect
// round-trip and is never persisted; the registration completion step
// consumes it or the caller abandons the flow.
type PendingFederatedIdentity struct {
	Handle     string
	GivenName  string
	FamilyName string
	AvatarURL  string
}

// NewPendingFederatedIdentity builds the pending value from a provider
// assertion.
func NewPendingFederatedIdentity(a FederatedAssertion) PendingFederatedIdentity {
	return PendingFederatedIdentity{
		Handle:     a.Handle,
		GivenName:  a.GivenName,
		FamilyName: a.FamilyName,
		AvatarURL:  a.AvatarURL,
	}
}

// DisplayName joins the provider-supplied name parts, trimming whichever is
// missing.
func (p PendingFederatedIdentity) DisplayName() string {
	return strings.TrimSpace(p.GivenName + " " + p.FamilyName)
}

package token

import (
	"testing"
	"time"

	"essay-auth/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "this-is-a-valid-signing-secret-32-chars-long"

func newTestIssuer(accessTTL time.Duration) *JWTIssuer {
	return NewJWTIssuer(JWTConfig{
		Secret:     testSecret,
		Issuer:     "essay-auth",
		AccessTTL:  accessTTL,
		RefreshTTL: 720 * time.Hour,
	})
}

func TestJWTIssuer_MintVerifyRoundtrip(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	tests := []struct {
		handle string
		role   domain.Role
	}{
		{"a@x.com", domain.RoleUser},
		{"admin@x.com", domain.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.handle, func(t *testing.T) {
			tokenStr, err := issuer.Mint(tt.handle, tt.role)
			require.NoError(t, err)
			require.NotEmpty(t, tokenStr)

			claims, err := issuer.Verify(tokenStr)
			require.NoError(t, err)
			assert.Equal(t, tt.handle, claims.Handle)
			assert.Equal(t, tt.role, claims.Role)
		})
	}
}

func TestJWTIssuer_ExpiredIsExactlyExpired(t *testing.T) {
	issuer := newTestIssuer(-1 * time.Minute)

	tokenStr, err := issuer.Mint("a@x.com", domain.RoleUser)
	require.NoError(t, err) // minting an already-expired token succeeds

	_, err = issuer.Verify(tokenStr)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.NotErrorIs(t, err, domain.ErrTokenSignatureInvalid)
	assert.NotErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestJWTIssuer_ForeignKeyIsSignatureInvalid(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	foreign := NewJWTIssuer(JWTConfig{
		Secret:    "a-completely-different-signing-secret-here",
		Issuer:    "essay-auth",
		AccessTTL: time.Hour,
	})

	tokenStr, err := foreign.Mint("a@x.com", domain.RoleUser)
	require.NoError(t, err)

	_, err = issuer.Verify(tokenStr)
	assert.ErrorIs(t, err, domain.ErrTokenSignatureInvalid)
}

func TestJWTIssuer_GarbageIsMalformed(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	for _, tokenStr := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := issuer.Verify(tokenStr)
		assert.ErrorIs(t, err, domain.ErrTokenMalformed, "input: %q", tokenStr)
	}
}

func TestJWTIssuer_RefreshTokenNotUsableAsAccess(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	refresh, err := issuer.MintRefresh("a@x.com", domain.RoleUser)
	require.NoError(t, err)

	_, err = issuer.Verify(refresh)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)

	claims, err := issuer.VerifyRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Handle)
}

func TestJWTIssuer_AccessTokenNotUsableAsRefresh(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	access, err := issuer.Mint("a@x.com", domain.RoleUser)
	require.NoError(t, err)

	_, err = issuer.VerifyRefresh(access)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestJWTIssuer_TamperedRoleClaimFallsBackToUser(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	tokenStr, err := issuer.Mint("a@x.com", domain.Role("superuser"))
	require.NoError(t, err)

	claims, err := issuer.Verify(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

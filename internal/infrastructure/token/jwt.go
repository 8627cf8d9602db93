package token

import (
	"errors"
	"time"

	"essay-auth/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const refreshTokenType = "refresh"

// JWTConfig holds token generation configuration. The secret is loaded once
// at startup and never mutated; rotating it invalidates every outstanding
// token at once, which is the only coarse revocation mechanism this design
// has.
type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// sessionClaims carries the identity claims for both token kinds. Typ is set
// only on refresh tokens so neither kind can be replayed as the other.
type sessionClaims struct {
	Role string `json:"role"`
	Typ  string `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

// JWTIssuer mints and verifies HS256-signed tokens.
// Implements domain.TokenIssuer.
type JWTIssuer struct {
	cfg JWTConfig
}

// NewJWTIssuer creates a new JWT issuer.
func NewJWTIssuer(cfg JWTConfig) *JWTIssuer {
	return &JWTIssuer{cfg: cfg}
}

// Mint generates a signed short-lived access token.
func (j *JWTIssuer) Mint(handle string, role domain.Role) (string, error) {
	return j.sign(handle, role, "", j.cfg.AccessTTL)
}

// MintRefresh generates a signed long-lived refresh token.
func (j *JWTIssuer) MintRefresh(handle string, role domain.Role) (string, error) {
	return j.sign(handle, role, refreshTokenType, j.cfg.RefreshTTL)
}

func (j *JWTIssuer) sign(handle string, role domain.Role, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Role: string(role),
		Typ:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.cfg.Issuer,
			Subject:   handle,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(j.cfg.Secret))
}

// Verify validates an access token and returns its claims. A refresh token
// presented here is rejected as malformed.
func (j *JWTIssuer) Verify(tokenString string) (*domain.TokenClaims, error) {
	return j.verify(tokenString, "")
}

// VerifyRefresh validates a refresh token and returns its claims. An access
// token presented here is rejected as malformed.
func (j *JWTIssuer) VerifyRefresh(tokenString string) (*domain.TokenClaims, error) {
	return j.verify(tokenString, refreshTokenType)
}

func (j *JWTIssuer) verify(tokenString, wantTyp string) (*domain.TokenClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return []byte(j.cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}

	if claims.Typ != wantTyp {
		return nil, domain.ErrTokenMalformed
	}

	return &domain.TokenClaims{
		Handle: claims.Subject,
		Role:   domain.ParseRole(claims.Role),
	}, nil
}

// mapJWTError collapses jwt/v5 failures into the three distinguishable kinds
// the session gate relies on. Expiry wins over everything else so callers can
// branch on it with errors.Is.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrTokenSignatureInvalid
	default:
		return domain.ErrTokenMalformed
	}
}

package domain

// TokenClaims is the identity a verified token asserts.
type TokenClaims struct {
	Handle string
	Role   Role
}

// Credentials is the pair minted on successful sign-in. The access token is
// returned in the response body; the refresh token travels only inside an
// HTTP-only cookie and is never serialized to JSON.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Principal    *Principal
}

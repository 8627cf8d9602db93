package usecase

import (
	"essay-auth/internal/domain"
)

// mintCredentials issues the access/refresh pair for a principal. Every
// successful sign-in path (local, federated match, registration completion)
// funnels through here so the pair is always minted the same way.
func mintCredentials(issuer domain.TokenIssuer, p *domain.Principal) (*domain.Credentials, error) {
	access, err := issuer.Mint(p.Handle, p.Role)
	if err != nil {
		return nil, err
	}

	refresh, err := issuer.MintRefresh(p.Handle, p.Role)
	if err != nil {
		return nil, err
	}

	return &domain.Credentials{
		AccessToken:  access,
		RefreshToken: refresh,
		Principal:    p,
	}, nil
}

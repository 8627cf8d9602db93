package usecase

import (
	"context"
	"sync"
	"time"

	"essay-auth/internal/domain"

	"github.com/google/uuid"
)

// memStore is an in-memory domain.CredentialStore for usecase tests.
type memStore struct {
	mu         sync.Mutex
	byHandle   map[string]*domain.Principal
	createSeen int
}

func newMemStore() *memStore {
	return &memStore{byHandle: make(map[string]*domain.Principal)}
}

func (s *memStore) FindByHandle(_ context.Context, handle string) (*domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byHandle[handle]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byHandle {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPrincipalNotFound
}

func (s *memStore) CreateLocal(_ context.Context, handle, passwordHash, name string) (*domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byHandle[handle]; exists {
		return nil, domain.ErrConflict
	}
	p, err := domain.NewLocalPrincipal(handle, passwordHash, name)
	if err != nil {
		return nil, err
	}
	s.byHandle[handle] = p
	cp := *p
	return &cp, nil
}

func (s *memStore) FindOrCreateFederated(_ context.Context, pending domain.PendingFederatedIdentity) (*domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createSeen++
	if p, exists := s.byHandle[pending.Handle]; exists {
		cp := *p
		return &cp, nil
	}
	p, err := domain.NewFederatedPrincipal(pending)
	if err != nil {
		return nil, err
	}
	s.byHandle[pending.Handle] = p
	cp := *p
	return &cp, nil
}

func (s *memStore) RecordLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byHandle {
		if p.ID == id {
			p.RecordLogin(at)
			return nil
		}
	}
	return domain.ErrPrincipalNotFound
}

func (s *memStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byHandle {
		if p.ID == id {
			p.Active = active
			return nil
		}
	}
	return domain.ErrPrincipalNotFound
}

func (s *memStore) List(_ context.Context) ([]domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Principal, 0, len(s.byHandle))
	for _, p := range s.byHandle {
		out = append(out, *p)
	}
	return out, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byHandle)
}

// fakeProvider is a canned domain.FederatedProvider.
type fakeProvider struct {
	assertion *domain.FederatedAssertion
	err       error
}

func (f *fakeProvider) AuthURL(state string) string {
	return "https://provider.example/auth?state=" + state
}

func (f *fakeProvider) ResolveCallback(context.Context, string) (*domain.FederatedAssertion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.assertion, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"essay-auth/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const uniqueViolation = "23505"

const principalColumns = `
	id, handle, password_hash, name, avatar_url, provider, role,
	is_active, email_verified, created_at, updated_at, last_login_at`

// PrincipalRepository implements domain.CredentialStore for PostgreSQL.
type PrincipalRepository struct {
	db     DatabaseIface
	logger *slog.Logger
}

// NewPrincipalRepository creates a new PostgreSQL credential store.
func NewPrincipalRepository(db DatabaseIface, logger *slog.Logger) *PrincipalRepository {
	return &PrincipalRepository{
		db:     db,
		logger: logger.With("component", "principal_repository"),
	}
}

// FindByHandle looks up a principal by its unique login handle.
func (r *PrincipalRepository) FindByHandle(ctx context.Context, handle string) (*domain.Principal, error) {
	query := `SELECT` + principalColumns + ` FROM principals WHERE handle = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, handle))
}

// FindByID looks up a principal by its identifier.
func (r *PrincipalRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Principal, error) {
	query := `SELECT` + principalColumns + ` FROM principals WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// CreateLocal persists a password-backed principal. The unique constraint on
// handle turns a duplicate signup into domain.ErrConflict, which surfaces to
// the caller because a taken handle is a genuine caller error.
func (r *PrincipalRepository) CreateLocal(ctx context.Context, handle, passwordHash, name string) (*domain.Principal, error) {
	p, err := domain.NewLocalPrincipal(handle, passwordHash, name)
	if err != nil {
		return nil, err
	}

	if err := r.insert(ctx, p); err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn("local signup hit existing handle", "handle", handle)
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("failed to create principal: %w", err)
	}

	r.logger.Info("local principal created", "id", p.ID, "handle", p.Handle)
	return p, nil
}

// FindOrCreateFederated resolves a federated identity to a principal,
// creating one on first sight. A unique violation during insert means a
// concurrent request just created the row, so we re-read instead of erroring.
func (r *PrincipalRepository) FindOrCreateFederated(ctx context.Context, pending domain.PendingFederatedIdentity) (*domain.Principal, error) {
	existing, err := r.FindByHandle(ctx, pending.Handle)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrPrincipalNotFound) {
		return nil, err
	}

	p, err := domain.NewFederatedPrincipal(pending)
	if err != nil {
		return nil, err
	}

	if err := r.insert(ctx, p); err != nil {
		if isUniqueViolation(err) {
			r.logger.Info("concurrent federated creation, re-reading", "handle", pending.Handle)
			return r.FindByHandle(ctx, pending.Handle)
		}
		return nil, fmt.Errorf("failed to create federated principal: %w", err)
	}

	r.logger.Info("federated principal created", "id", p.ID, "handle", p.Handle)
	return p, nil
}

// RecordLogin stamps last_login_at for a principal.
func (r *PrincipalRepository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE principals SET last_login_at = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPrincipalNotFound
	}
	return nil
}

// SetActive flips the activation flag. Principals are never hard-deleted.
func (r *PrincipalRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE principals SET is_active = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to update activation flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPrincipalNotFound
	}

	r.logger.Info("principal activation updated", "id", id, "active", active)
	return nil
}

// List returns all principals ordered by creation time, newest first.
func (r *PrincipalRepository) List(ctx context.Context) ([]domain.Principal, error) {
	query := `SELECT` + principalColumns + ` FROM principals ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list principals: %w", err)
	}
	defer rows.Close()

	var principals []domain.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		principals = append(principals, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate principals: %w", err)
	}
	return principals, nil
}

func (r *PrincipalRepository) insert(ctx context.Context, p *domain.Principal) error {
	query := `
		INSERT INTO principals (
			id, handle, password_hash, name, avatar_url, provider, role,
			is_active, email_verified, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`

	var passwordHash *string
	if p.PasswordHash != "" {
		passwordHash = &p.PasswordHash
	}

	_, err := r.db.Exec(ctx, query,
		p.ID, p.Handle, passwordHash, p.Name, p.AvatarURL,
		string(p.Provider), string(p.Role),
		p.Active, p.EmailVerified, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *PrincipalRepository) scanOne(row pgx.Row) (*domain.Principal, error) {
	p, err := scanPrincipal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to scan principal: %w", err)
	}
	return p, nil
}

func scanPrincipal(row pgx.Row) (*domain.Principal, error) {
	var (
		p            domain.Principal
		passwordHash *string
		provider     string
		role         string
	)

	err := row.Scan(
		&p.ID, &p.Handle, &passwordHash, &p.Name, &p.AvatarURL,
		&provider, &role,
		&p.Active, &p.EmailVerified, &p.CreatedAt, &p.UpdatedAt, &p.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}

	if passwordHash != nil {
		p.PasswordHash = *passwordHash
	}
	p.Provider = domain.Provider(provider)
	p.Role = domain.ParseRole(role)
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

package postgres

import (
	"context"
	"testing"
	"time"

	"essay-auth/internal/domain"
	"essay-auth/utils/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var principalColumnNames = []string{
	"id", "handle", "password_hash", "name", "avatar_url", "provider", "role",
	"is_active", "email_verified", "created_at", "updated_at", "last_login_at",
}

func createTestRepository(t *testing.T) (*PrincipalRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)

	testLogger, err := logger.New("debug")
	require.NoError(t, err)

	return NewPrincipalRepository(mockDB, testLogger), mockDB
}

func principalRow(id uuid.UUID, handle string, passwordHash *string, provider string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(principalColumnNames).
		AddRow(id, handle, passwordHash, "Test User", "", provider, "user",
			true, provider != "local", now, now, nil)
}

func TestPrincipalRepository_FindByHandle(t *testing.T) {
	repo, mockDB := createTestRepository(t)

	id := uuid.New()
	hash := "$2a$10$hash"
	mockDB.ExpectQuery("SELECT(.+)FROM principals WHERE handle").
		WithArgs("a@x.com").
		WillReturnRows(principalRow(id, "a@x.com", &hash, "local"))

	p, err := repo.FindByHandle(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "a@x.com", p.Handle)
	assert.Equal(t, "$2a$10$hash", p.PasswordHash)
	assert.Equal(t, domain.ProviderLocal, p.Provider)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestPrincipalRepository_FindByHandle_NotFound(t *testing.T) {
	repo, mockDB := createTestRepository(t)

	mockDB.ExpectQuery("SELECT(.+)FROM principals WHERE handle").
		WithArgs("missing@x.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByHandle(context.Background(), "missing@x.com")
	assert.ErrorIs(t, err, domain.ErrPrincipalNotFound)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestPrincipalRepository_CreateLocal(t *testing.T) {
	repo, mockDB := createTestRepository(t)

	mockDB.ExpectExec("INSERT INTO principals").
		WithArgs(pgxmock.AnyArg(), "a@x.com", pgxmock.AnyArg(), "Alice", "",
			"local", "user", true, false, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	p, err := repo.CreateLocal(context.Background(), "a@x.com", "$2a$10$hash", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", p.Handle)
	assert.Equal(t, domain.RoleUser, p.Role)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestPrincipalRepository_CreateLocal_Conflict(t *testing.T) {
	repo, mockDB := createTestRepository(t)

	mockDB.ExpectExec("INSERT INTO principals").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	_, err := repo.CreateLocal(context.Background(), "a@x.com", "$2a$10$hash", "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestPrincipalRepository_FindOrCreateFederated_Existing(t *testing.T) {
	repo, mockDB := createTestRepository(t)

	id := uuid.New()
	mockDB.ExpectQuery("SELECT(.+)FROM principals WHERE handle").
		WithArgs("jane@x.com").
		WillReturnRows(principalRow(id, "jane@x.com", nil, "google"))

	pending := domain.PendingFederatedIdentity{Handle: "jane@x.com", GivenName: "Jane"}
	p, err := repo.FindOrCreateFederated(context.Background(), pending)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID, "existing principal returned unchanged")

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestPrincipalRepository_FindOrCreateFederated_Creates(t *testing.T) {
	repo, mockDB := createTestRepository(t)

	mockDB.ExpectQuery("SELECT(.+)FROM principals WHERE handle").
		WithArgs("new@x.com").
		WillReturnError(pgx.ErrNoRows)
	mockDB.ExpectExec("INSERT INTO principals").
		WithArgs(pgxmock.AnyArg(), "new@x.com", nil, "Jane Doe", "",
			"google", "user", true, true, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	pending := domain.PendingFederatedIdentity{
		Handle: "new@x.com", GivenName: "Jane", FamilyName: "Doe",
	}
	p, err := repo.FindOrCreateFederated(context.Background(), pending)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderGoogle, p.Provider)
	assert.True(t, p.EmailVerified)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

// A unique violation during insert means another request created the row
// first; the repository must re-read and hand back that row.
func TestPrincipalRepository_FindOrCreateFederated_Race(t *testing.T) {
	repo, mockDB := createTestRepository(t)

	winnerID := uuid.New()
	mockDB.ExpectQuery("SELECT(.+)FROM principals WHERE handle").
		WithArgs("new@x.com").
		WillReturnError(pgx.ErrNoRows)
	mockDB.ExpectExec("INSERT INTO principals").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})
	mockDB.ExpectQuery("SELECT(.+)FROM principals WHERE handle").
		WithArgs("new@x.com").
		WillReturnRows(principalRow(winnerID, "new@x.com", nil, "google"))

	pending := domain.PendingFederatedIdentity{Handle: "new@x.com", GivenName: "Jane"}
	p, err := repo.FindOrCreateFederated(context.Background(), pending)
	require.NoError(t, err)
	assert.Equal(t, winnerID, p.ID, "loser observes the winner's row")

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestPrincipalRepository_RecordLogin_NotFound(t *testing.T) {
	repo, mockDB := createTestRepository(t)

	id := uuid.New()
	mockDB.ExpectExec("UPDATE principals SET last_login_at").
		WithArgs(id, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.RecordLogin(context.Background(), id, time.Now())
	assert.ErrorIs(t, err, domain.ErrPrincipalNotFound)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestPrincipalRepository_SetActive(t *testing.T) {
	repo, mockDB := createTestRepository(t)

	id := uuid.New()
	mockDB.ExpectExec("UPDATE principals SET is_active").
		WithArgs(id, false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.SetActive(context.Background(), id, false)
	assert.NoError(t, err)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestPrincipalRepository_List(t *testing.T) {
	repo, mockDB := createTestRepository(t)

	now := time.Now()
	rows := pgxmock.NewRows(principalColumnNames).
		AddRow(uuid.New(), "a@x.com", nil, "A", "", "google", "user",
			true, true, now, now, nil).
		AddRow(uuid.New(), "b@x.com", nil, "B", "", "google", "admin",
			true, true, now, now, nil)
	mockDB.ExpectQuery("SELECT(.+)FROM principals ORDER BY created_at").
		WillReturnRows(rows)

	principals, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, principals, 2)
	assert.Equal(t, domain.RoleAdmin, principals[1].Role)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

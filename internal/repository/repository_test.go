package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shiftboard/hours-import/internal/config"
	"github.com/shiftboard/hours-import/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5

	return NewRepository(cfg, db), mock
}

func TestFindActiveWorkers(t *testing.T) {
	repo, mock := newMockRepository(t)

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name"}).
		AddRow(int64(3), "Dana", "Katz").
		AddRow(int64(9), "יוסי", "לוי")
	mock.ExpectQuery(`SELECT id, first_name, last_name FROM users`).
		WithArgs(int64(12), domain.RoleWorker).
		WillReturnRows(rows)

	entries, err := repo.FindActiveWorkers(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, []domain.DirectoryEntry{
		{ID: 3, FirstName: "Dana", LastName: "Katz"},
		{ID: 9, FirstName: "יוסי", LastName: "לוי"},
	}, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveWorkers_Empty(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT id, first_name, last_name FROM users`).
		WithArgs(int64(12), domain.RoleWorker).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name"}))

	entries, err := repo.FindActiveWorkers(context.Background(), 12)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestCreateWorker(t *testing.T) {
	repo, mock := newMockRepository(t)
	creds := &domain.PlaceholderCredentials{
		Username:     "worker_123456",
		Email:        "worker_123456@placeholder.local",
		PasswordHash: "hash",
	}

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(int64(12), "worker_123456", "hash", "מיכל", "-", "worker_123456@placeholder.local", domain.RoleWorker, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "created_at", "version"}).
			AddRow(int64(41), true, time.Now(), int32(1)))

	id, err := repo.CreateWorker(context.Background(), 12, "מיכל", "-", creds)
	require.NoError(t, err)
	assert.Equal(t, int64(41), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveSupervisors(t *testing.T) {
	repo, mock := newMockRepository(t)

	rows := sqlmock.NewRows([]string{"id", "username", "first_name", "last_name", "email", "role"}).
		AddRow(int64(1), "boss", "Ruth", "Bar", "boss@example.com", string(domain.RoleSupervisor))
	mock.ExpectQuery(`SELECT id, username, first_name, last_name, email, role FROM users\s+WHERE organization_id = \$1 AND role = \$2 AND is_active = TRUE`).
		WithArgs(int64(12), domain.RoleSupervisor).
		WillReturnRows(rows)

	users, err := repo.FindActiveSupervisors(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "boss@example.com", users[0].Email)
	assert.Equal(t, domain.RoleSupervisor, users[0].Role)
	assert.Equal(t, "Ruth Bar", users[0].FullName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByUsername(t *testing.T) {
	repo, mock := newMockRepository(t)
	createdAt := time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "organization_id", "password_hash", "first_name", "last_name", "email", "role", "is_active", "profile_incomplete", "created_at", "version"}).
		AddRow(int64(1), int64(12), "hash", "Ruth", "Bar", "ruth@example.com", string(domain.RoleSupervisor), true, false, createdAt, int32(3))
	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("ruth").
		WillReturnRows(rows)

	user, err := repo.GetUserByUsername(context.Background(), "ruth")
	require.NoError(t, err)
	assert.Equal(t, &domain.User{
		ID:             1,
		OrganizationID: 12,
		Username:       "ruth",
		PasswordHash:   "hash",
		FirstName:      "Ruth",
		LastName:       "Bar",
		Email:          "ruth@example.com",
		Role:           domain.RoleSupervisor,
		IsActive:       true,
		CreatedAt:      createdAt,
		Version:        3,
	}, user)
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM users WHERE username`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRecordHours(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`INSERT INTO attendance_records`).
		WithArgs(int64(41), int64(12), 21.75, true).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.RecordHours(context.Background(), 41, 12, 21.75, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordHours_ManualEntry(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(int64(41), int64(12), 7.5, false).
		WillReturnResult(sqlmock.NewResult(2, 1))

	require.NoError(t, repo.RecordHours(context.Background(), 41, 12, 7.5, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordHours_Error(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`INSERT INTO attendance_records`).
		WillReturnError(assert.AnError)

	err := repo.RecordHours(context.Background(), 41, 12, 8, true)
	assert.ErrorIs(t, err, assert.AnError)
}

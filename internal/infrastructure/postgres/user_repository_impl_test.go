package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medli/medli-api/internal/domain/entity"
	"github.com/medli/medli-api/internal/domain/repository"
)

func setupMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var userCols = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

func TestUserRepository_Create(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("A", "a@x.com", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("u1", now, now))

	u := &entity.User{Name: "A", Email: "a@x.com", Password: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, now, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("A", "a@x.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &entity.User{Name: "A", Email: "a@x.com", Password: "hash"})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("u1", "A", "a@x.com", "hash", now, now))

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", u.Password)
	assert.Equal(t, "A", u.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(userCols))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_MalformedID(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
		WithArgs("not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: "22P02"})

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_EmailTakenByOther(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("b@x.com", "u1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.EmailTakenByOther(context.Background(), "b@x.com", "u1")
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`UPDATE users`).
		WithArgs("B", "b@x.com", "u1").
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))

	u := &entity.User{ID: "u1", Name: "B", Email: "b@x.com"}
	require.NoError(t, repo.Update(context.Background(), u))
	assert.Equal(t, now, u.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_EmailTaken(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`UPDATE users`).
		WithArgs("B", "b@x.com", "u1").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Update(context.Background(), &entity.User{ID: "u1", Name: "B", Email: "b@x.com"})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestUserRepository_UpdatePassword_NotFound(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs("hash", "u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdatePassword(context.Background(), "u1", "hash")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteCascade(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM health_records`).WithArgs("u1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM users`).WithArgs("u1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteCascade(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteCascade_RollsBack(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM health_records`).WithArgs("u1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM users`).WithArgs("u1").WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	err := repo.DeleteCascade(context.Background(), "u1")
	assert.ErrorContains(t, err, "connection lost")
	assert.NoError(t, mock.ExpectationsWereMet())
}

package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educasem/educasem-api/internal/models"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(sqlx.NewDb(db, "sqlmock")), mock
}

func userRows() *sqlmock.Rows {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "avatar", "email_verified", "active", "last_login", "created_at", "updated_at"}).
		AddRow("1", "admin@educasem.com", "hash", "Admin Usuario", "admin", "", true, true, nil, now, now)
}

func TestPostgresStoreFindByEmail(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, name, role, avatar, email_verified, active, last_login, created_at, updated_at FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("admin@educasem.com").
		WillReturnRows(userRows())

	user, err := store.FindByEmail(context.Background(), "admin@educasem.com")
	require.NoError(t, err)
	assert.Equal(t, "1", user.ID)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreFindByEmailNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE LOWER").
		WithArgs("nobody@educasem.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.FindByEmail(context.Background(), "nobody@educasem.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreCreateDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	err := store.Create(context.Background(), &models.User{Email: "admin@educasem.com", Name: "Admin"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreCreate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{Email: "new@educasem.com", Name: "Nuevo", Role: models.RoleStudent}
	require.NoError(t, store.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListWithFilters(t *testing.T) {
	store, mock := newMockStore(t)

	role := models.RoleAdmin
	active := true

	mock.ExpectQuery("SELECT id, .+ FROM users WHERE 1=1 AND role = .+ AND active = .+ ORDER BY email ASC LIMIT 20 OFFSET 0").
		WithArgs(role, active).
		WillReturnRows(userRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE 1=1 AND role = $1 AND active = $2")).
		WithArgs(role, active).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	users, total, err := store.List(context.Background(), models.UserFilter{Role: &role, Active: &active, SortBy: "email"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@educasem.com", users[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListRejectsUnknownSortColumn(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("ORDER BY created_at ASC").
		WillReturnRows(userRows())
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := store.List(context.Background(), models.UserFilter{SortBy: "password_hash; DROP TABLE users"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUpdateProfile(t *testing.T) {
	store, mock := newMockStore(t)

	ts := time.Now().UTC()
	mock.ExpectExec("UPDATE users SET name").
		WithArgs("1", "Admin Nuevo", "/images/avatars/new.jpg", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, store.UpdateProfile(context.Background(), "1", "Admin Nuevo", "/images/avatars/new.jpg", ts))

	mock.ExpectExec("UPDATE users SET name").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.UpdateProfile(context.Background(), "missing", "x", "", ts), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSetActiveNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE users SET active").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SetActive(context.Background(), "missing", false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUpdatePassword(t *testing.T) {
	store, mock := newMockStore(t)

	ts := time.Now().UTC()
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("1", "newhash", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, store.UpdatePassword(context.Background(), "1", "newhash", ts))
	assert.NoError(t, mock.ExpectationsWereMet())
}

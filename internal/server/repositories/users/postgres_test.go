package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	insertQuery  = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*name,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at$`
	byEmailQuery = `(?s)^SELECT\s+id,\s*email,\s*name,\s*password_hash,\s*created_at\s+FROM\s+users\s+WHERE\s+lower\(email\)\s*=\s*lower\(\$1\)$`
	byIDQuery    = `(?s)^SELECT\s+id,\s*email,\s*name,\s*password_hash,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
)

var userColumns = []string{"id", "email", "name", "password_hash", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(insertQuery).
		WithArgs("alice@example.com", "Alice", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("42", now))

	u := &models.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "hash"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "42" || got.Email != "alice@example.com" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_NoPasswordStoresNull(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WithArgs("sso@example.com", "", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("7", time.Now()))

	if _, err := repo.Create(context.Background(), &models.User{Email: "sso@example.com"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com", PasswordHash: "h"})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com", PasswordHash: "h"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetUserByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).AddRow("u-1", "alice@example.com", "Alice", "hash", time.Now())
	mock.ExpectQuery(byEmailQuery).WithArgs("alice@example.com").WillReturnRows(rows)

	got, err := repo.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail error: %v", err)
	}
	if got.ID != "u-1" || got.PasswordHash != "hash" || got.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetUserByEmail_NullHash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).AddRow("u-2", "sso@example.com", "", nil, time.Now())
	mock.ExpectQuery(byEmailQuery).WithArgs("sso@example.com").WillReturnRows(rows)

	got, err := repo.GetUserByEmail(context.Background(), "sso@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail error: %v", err)
	}
	if got.PasswordHash != "" {
		t.Fatalf("expected empty hash, got %q", got.PasswordHash)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQuery).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).AddRow("u-1", "alice@example.com", "", "hash", time.Now())
	mock.ExpectQuery(byIDQuery).WithArgs("u-1").WillReturnRows(rows)
	mock.ExpectQuery(byIDQuery).WithArgs("u-9").WillReturnError(errors.New("db err"))

	got, err := repo.GetUserByID(context.Background(), "u-1")
	if err != nil || got.Email != "alice@example.com" {
		t.Fatalf("unexpected result: %+v, %v", got, err)
	}

	_, err = repo.GetUserByID(context.Background(), "u-9")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

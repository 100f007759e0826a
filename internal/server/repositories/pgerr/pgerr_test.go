package pgerr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "no rows", in: sql.ErrNoRows, want: common.ErrorNotFound},
		{name: "wrapped no rows", in: fmt.Errorf("scan: %w", sql.ErrNoRows), want: common.ErrorNotFound},
		{name: "unique", in: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, want: common.ErrorAlreadyExists},
		{name: "foreign key", in: &pgconn.PgError{Code: "23503"}, want: common.ErrorNotFound},
		{name: "malformed uuid", in: &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}, want: common.ErrorNotFound},
		{name: "other pg error", in: &pgconn.PgError{Code: "40001"}, want: nil},
		{name: "plain", in: boom, want: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Map(tt.in)
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
			}
			if tt.name == "other pg error" || tt.name == "plain" {
				assert.Contains(t, got.Error(), "db error")
			}
		})
	}

	assert.NoError(t, Map(nil))
}

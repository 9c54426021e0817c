package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fsdevblog/bookstore/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: domain.ErrRecordNotFound},
		{name: "unique", err: &pgconn.PgError{Code: uniqueViolationCode}, want: domain.ErrDuplicateKey},
		{name: "foreign key", err: &pgconn.PgError{Code: foreignKeyViolationCode}, want: domain.ErrConflict},
		{name: "check", err: &pgconn.PgError{Code: checkViolationCode}, want: domain.ErrConflict},
		{name: "deadlock", err: &pgconn.PgError{Code: deadlockDetectedCode}, want: domain.ErrConflict},
		{name: "too many connections", err: &pgconn.PgError{Code: tooManyConnectionsCode}, want: domain.ErrStorageUnavailable},
		{name: "connection failure", err: &pgconn.PgError{Code: "08006"}, want: domain.ErrStorageUnavailable},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: domain.ErrStorageUnavailable},
		{name: "syntax", err: &pgconn.PgError{Code: "42601"}, want: domain.ErrUnknown},
		{name: "plain", err: errors.New("boom"), want: domain.ErrUnknown},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := convertErr(c.err, "doing %s", c.name)
			require.ErrorIs(t, err, c.want)
			assert.Contains(t, err.Error(), "[repository/doing "+c.name+"]")
		})
	}

	assert.NoError(t, convertErr(nil, "nothing"))
}

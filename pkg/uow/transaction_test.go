package uow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	db DBTX
}

func TestTransaction_GetAs(t *testing.T) {
	var built int
	repos := map[RepositoryName]RepositoryFactory{
		"stub": func(db DBTX) Repository {
			built++
			return &stubRepo{db: db}
		},
	}
	tx := NewTransaction(nil, repos)

	first, err := GetAs[*stubRepo](tx, "stub")
	require.NoError(t, err)
	second, err := GetAs[*stubRepo](tx, "stub")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, built)

	_, err = GetAs[*stubRepo](tx, "missing")
	require.ErrorIs(t, err, ErrRepositoryNotRegistered)

	_, err = GetAs[string](tx, "stub")
	require.ErrorIs(t, err, ErrInvalidRepositoryType)
}

func TestUnitOfWork_Register(t *testing.T) {
	u := NewUnitOfWork(nil)
	factory := func(db DBTX) Repository { return &stubRepo{db: db} }

	require.NoError(t, u.Register("stub", factory))
	require.ErrorIs(t, u.Register("stub", factory), ErrRepositoryAlreadyRegistered)

	repo, err := GetRepositoryAs[*stubRepo](u, "stub")
	require.NoError(t, err)
	assert.NotNil(t, repo)

	_, err = GetRepositoryAs[*stubRepo](u, "missing")
	require.ErrorIs(t, err, ErrRepositoryNotRegistered)
}

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lesechos/accounts/internal/testutil"
)

func TestPostgresRepository(t *testing.T) {
	connStr := testutil.StartPostgres(t)

	repo, err := NewPostgresRepository(context.Background(), connStr)
	require.NoError(t, err)
	defer repo.Close()

	testRepositoryContract(t, repo)
}

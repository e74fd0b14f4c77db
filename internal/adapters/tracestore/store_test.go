package tracestore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/reasonkernel/internal/adapters/tracestore"
)

// TestNewPostgresStore_RejectsMalformedDSN exercises the DSN-parsing path,
// which fails before any network connection is attempted, so it runs
// without a live Postgres server.
func TestNewPostgresStore_RejectsMalformedDSN(t *testing.T) {
	_, err := tracestore.NewPostgresStore(context.Background(), "://not-a-real-dsn", 5)
	require.Error(t, err)
}

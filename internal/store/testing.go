package store

import (
	"fmt"
	"os"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// MakeTestSQLStore creates a SQLStore on a throwaway database for testing.
// Set MORAG_CLOUD_DATABASE to a postgres DSN to test against postgres instead
// of the default on-disk sqlite database.
func MakeTestSQLStore(tb testing.TB, logger log.FieldLogger) *SQLStore {
	dsn := os.Getenv("MORAG_CLOUD_DATABASE")
	if dsn == "" {
		dir, err := os.MkdirTemp("", "morag-store-test-")
		require.NoError(tb, err)
		tb.Cleanup(func() { os.RemoveAll(dir) })
		dsn = fmt.Sprintf("sqlite://%s/test.db", dir)
	}

	sqlStore, err := New(dsn, logger)
	require.NoError(tb, err)

	err = sqlStore.Migrate()
	require.NoError(tb, err)

	return sqlStore
}

// CloseConnection closes the database connection and fails the test on error.
func CloseConnection(tb testing.TB, sqlStore *SQLStore) {
	require.NoError(tb, sqlStore.Close())
}

// Package testutil opens throwaway SQLite trip stores for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mr-jafner/TravelTogether-sub000/internal/adapters/database"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	dbclient "github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/clients/database"
	"github.com/mr-jafner/TravelTogether-sub000/pkg/config"
)

// NewSQLiteClient opens a migrated database in the test's temp dir
func NewSQLiteClient(t testing.TB) *dbclient.Client {
	t.Helper()
	client, err := dbclient.NewClient(context.Background(), &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "traveltogether.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// NewSQLiteStore returns a client and the repositories over it
func NewSQLiteStore(t testing.TB) (*dbclient.Client, repositories.Registry) {
	t.Helper()
	client := NewSQLiteClient(t)
	return client, database.NewRegistry(client)
}

// CountRows returns the number of rows in table
func CountRows(t testing.TB, client *dbclient.Client, table string) int {
	t.Helper()
	var n int
	require.NoError(t, client.DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

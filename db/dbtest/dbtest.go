// Package dbtest поднимает изолированное хранилище SQLite в памяти для тестов.
package dbtest

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"tenderbid/db"
	"tenderbid/db/migrations"
	"tenderbid/models"
)

// New возвращает пустое хранилище с применёнными миграциями.
func New(t *testing.T) *db.Storage {
	t.Helper()
	ctx := context.Background()

	// у каждого пула своё единственное соединение, а значит и своя база
	conn, err := db.Connect(ctx, db.DriverSQLite, ":memory:", db.PoolOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.Run(ctx, conn.DB, db.DriverSQLite, zerolog.Nop()))
	return db.NewStorage(conn)
}

func Employee(t *testing.T, s *db.Storage, username string) *models.Employee {
	t.Helper()
	e := &models.Employee{Username: username, FirstName: username, LastName: "Test"}
	require.NoError(t, s.CreateEmployee(context.Background(), e))
	return e
}

func Organization(t *testing.T, s *db.Storage, name string, responsible ...*models.Employee) *models.Organization {
	t.Helper()
	o := &models.Organization{Name: name, Description: name + " description", Type: models.OrganizationLLC}
	require.NoError(t, s.CreateOrganization(context.Background(), o))
	for _, e := range responsible {
		require.NoError(t, s.AddResponsible(context.Background(), o.ID, e.ID))
	}
	return o
}

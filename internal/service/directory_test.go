package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tenderbid/db/dbtest"
	"tenderbid/internal/service"
	"tenderbid/models"
)

func TestDirectory(t *testing.T) {
	store := dbtest.New(t)
	dir := service.NewDirectory(store)
	ctx := context.Background()

	e := &models.Employee{Username: " kudrmax ", FirstName: "Max"}
	require.NoError(t, dir.CreateEmployee(ctx, e))
	require.Equal(t, "kudrmax", e.Username)
	require.ErrorIs(t, dir.CreateEmployee(ctx, &models.Employee{Username: "kudrmax"}), models.ErrConflict)

	org := &models.Organization{Name: "HSE"}
	require.NoError(t, dir.CreateOrganization(ctx, org))
	require.Equal(t, models.OrganizationLLC, org.Type)
	require.ErrorIs(t, dir.CreateOrganization(ctx, &models.Organization{Name: "Bad", Type: "GmbH"}), models.ErrBadRequest)

	ok, err := dir.IsUserResponsibleFor(ctx, e.ID, org.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, dir.AddResponsible(ctx, org.ID, e.ID))
	require.NoError(t, dir.AddResponsible(ctx, org.ID, e.ID))
	ok, err = dir.IsUserResponsibleFor(ctx, e.ID, org.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.ErrorIs(t, dir.AddResponsible(ctx, uuid.New(), e.ID), models.ErrNotFound)
	require.ErrorIs(t, dir.AddResponsible(ctx, org.ID, uuid.New()), models.ErrNotFound)

	got, err := dir.GetEmployeeByUsername(ctx, "kudrmax")
	require.NoError(t, err)
	require.Equal(t, e.ID, got.ID)

	_, err = dir.GetEmployeeByUsername(ctx, "ghost")
	require.ErrorIs(t, err, service.ErrUnknownUser)
	_, err = dir.GetEmployeeByUsername(ctx, "  ")
	require.ErrorIs(t, err, models.ErrBadRequest)
	_, err = dir.GetOrganizationByID(ctx, uuid.New())
	require.ErrorIs(t, err, models.ErrNotFound)
}

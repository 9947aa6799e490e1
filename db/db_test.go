package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tenderbid/db"
	"tenderbid/db/dbtest"
	"tenderbid/internal/versioned"
	"tenderbid/models"
)

func TestAtomicRollsBackOnError(t *testing.T) {
	s := dbtest.New(t)
	ctx := context.Background()

	owner := dbtest.Employee(t, s, "owner")
	org := dbtest.Organization(t, s, "HSE", owner)

	boom := errors.New("boom")
	var id uuid.UUID
	err := s.Atomic(ctx, func(tx *db.Storage) error {
		tender := &models.Tender{Status: models.TenderCreated, OrganizationID: org.ID, CreatorID: owner.ID}
		if err := tx.CreateTender(ctx, tender); err != nil {
			return err
		}
		id = tender.ID
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.GetTender(ctx, id)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestDuplicateUsernameConflicts(t *testing.T) {
	s := dbtest.New(t)
	dbtest.Employee(t, s, "owner")

	err := s.CreateEmployee(context.Background(), &models.Employee{Username: "owner"})
	require.ErrorIs(t, err, models.ErrConflict)
}

func TestTenderWithoutVersionsIsInvisible(t *testing.T) {
	s := dbtest.New(t)
	ctx := context.Background()

	owner := dbtest.Employee(t, s, "owner")
	org := dbtest.Organization(t, s, "HSE", owner)
	tender := &models.Tender{Status: models.TenderPublished, OrganizationID: org.ID, CreatorID: owner.ID}
	require.NoError(t, s.CreateTender(ctx, tender))

	_, err := s.GetTenderView(ctx, tender.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	views, err := s.ListTenderViews(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, views)

	store := versioned.New(s.TenderVersions(), models.MergeTender)
	_, err = store.Update(ctx, tender.ID, models.TenderPatch{})
	require.ErrorIs(t, err, models.ErrInvariant)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestVersionNumbersAreUnique(t *testing.T) {
	s := dbtest.New(t)
	ctx := context.Background()

	owner := dbtest.Employee(t, s, "owner")
	org := dbtest.Organization(t, s, "HSE", owner)
	tender := &models.Tender{Status: models.TenderCreated, OrganizationID: org.ID, CreatorID: owner.ID}
	require.NoError(t, s.CreateTender(ctx, tender))

	backend := s.TenderVersions()
	v := versioned.Version[models.TenderContent]{
		ID:       uuid.New(),
		EntityID: tender.ID,
		Number:   1,
		Content:  models.TenderContent{Name: "A", Description: "B", ServiceType: models.ServiceDelivery},
	}
	require.NoError(t, backend.InsertVersion(ctx, v))

	v.ID = uuid.New()
	require.ErrorIs(t, backend.InsertVersion(ctx, v), models.ErrConflict)

	latest, err := backend.LatestVersion(ctx, tender.ID)
	require.NoError(t, err)
	require.Equal(t, "A", latest.Content.Name)
	require.Equal(t, models.ServiceDelivery, latest.Content.ServiceType)
}

func TestResponsibleCountIgnoresDuplicateLinks(t *testing.T) {
	s := dbtest.New(t)
	ctx := context.Background()

	owner := dbtest.Employee(t, s, "owner")
	deputy := dbtest.Employee(t, s, "deputy")
	org := dbtest.Organization(t, s, "HSE", owner, owner)

	count, err := s.GetResponsibleCount(ctx, org.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.NoError(t, s.AddResponsible(ctx, org.ID, deputy.ID))
	count, err = s.GetResponsibleCount(ctx, org.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	orgs, err := s.GetResponsibleOrganizations(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{org.ID}, orgs)
}

package service_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"tenderbid/db"
	"tenderbid/db/dbtest"
	"tenderbid/internal/service"
	"tenderbid/models"
)

type fixture struct {
	store   *db.Storage
	tenders *service.TenderService
	bids    *service.BidService
}

func newFixture(t *testing.T, opts service.Options) *fixture {
	t.Helper()
	store := dbtest.New(t)
	return &fixture{
		store:   store,
		tenders: service.NewTenderService(store, zerolog.Nop(), opts),
		bids:    service.NewBidService(store, zerolog.Nop(), opts),
	}
}

func (f *fixture) tender(t *testing.T, org *models.Organization, creator *models.Employee, name string) *models.TenderView {
	t.Helper()
	view, err := f.tenders.CreateTender(context.Background(), service.CreateTenderInput{
		Name:            name,
		Description:     name + " description",
		ServiceType:     models.ServiceConstruction,
		OrganizationID:  org.ID,
		CreatorUsername: creator.Username,
	})
	require.NoError(t, err)
	return view
}

func (f *fixture) userBid(t *testing.T, tender *models.TenderView, author *models.Employee, name string) *models.BidView {
	t.Helper()
	view, err := f.bids.CreateBid(context.Background(), service.CreateBidInput{
		Name:        name,
		Description: name + " description",
		TenderID:    tender.ID,
		AuthorType:  models.AuthorUser,
		AuthorID:    author.ID,
	})
	require.NoError(t, err)
	return view
}

func ptr[T any](v T) *T { return &v }

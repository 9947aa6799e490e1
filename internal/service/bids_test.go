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

func TestCreateBidValidation(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()

	owner := dbtest.Employee(t, f.store, "owner")
	bidder := dbtest.Employee(t, f.store, "bidder")
	org := dbtest.Organization(t, f.store, "HSE", owner)
	tender := f.tender(t, org, owner, "Office renovation")

	_, err := f.bids.CreateBid(ctx, service.CreateBidInput{
		Name: "Bid", Description: "Cheap", TenderID: tender.ID, AuthorType: "Robot", AuthorID: bidder.ID,
	})
	require.ErrorIs(t, err, models.ErrBadRequest)

	_, err = f.bids.CreateBid(ctx, service.CreateBidInput{
		Name: "Bid", Description: "Cheap", TenderID: uuid.New(), AuthorType: models.AuthorUser, AuthorID: bidder.ID,
	})
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.bids.CreateBid(ctx, service.CreateBidInput{
		Name: "Bid", Description: "Cheap", TenderID: tender.ID, AuthorType: models.AuthorOrganization, AuthorID: uuid.New(),
	})
	require.ErrorIs(t, err, models.ErrNotFound)

	bid := f.userBid(t, tender, bidder, "Bid")
	require.Equal(t, models.BidCreated, bid.Status)
	require.Equal(t, 1, bid.Version)
}

func TestAuthorCannotLeaveFeedback(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()

	owner := dbtest.Employee(t, f.store, "owner")
	bidder := dbtest.Employee(t, f.store, "bidder")
	org := dbtest.Organization(t, f.store, "HSE", owner)
	tender := f.tender(t, org, owner, "Office renovation")
	bid := f.userBid(t, tender, bidder, "Bid")

	_, err := f.bids.AddFeedback(ctx, bid.ID, "bidder", "I am great")
	require.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.bids.AddFeedback(ctx, bid.ID, "owner", "Too expensive")
	require.NoError(t, err)

	// автор при этом может редактировать своё предложение
	edited, err := f.bids.EditBid(ctx, bid.ID, "bidder", models.BidPatch{Name: ptr("Better bid")})
	require.NoError(t, err)
	require.Equal(t, 2, edited.Version)
	require.Equal(t, "Bid description", edited.Description)
}

func TestOrganizationBidAdministeredByAuthorSide(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()

	owner := dbtest.Employee(t, f.store, "owner")
	supplier := dbtest.Employee(t, f.store, "supplier")
	dbtest.Employee(t, f.store, "stranger")
	org := dbtest.Organization(t, f.store, "HSE", owner)
	supplierOrg := dbtest.Organization(t, f.store, "Builders", supplier)
	tender := f.tender(t, org, owner, "Office renovation")

	bid, err := f.bids.CreateBid(ctx, service.CreateBidInput{
		Name: "Org bid", Description: "Turnkey", TenderID: tender.ID,
		AuthorType: models.AuthorOrganization, AuthorID: supplierOrg.ID,
	})
	require.NoError(t, err)

	_, err = f.bids.ChangeBidStatus(ctx, bid.ID, "supplier", models.BidPublished)
	require.NoError(t, err)
	_, err = f.bids.ChangeBidStatus(ctx, bid.ID, "stranger", models.BidCanceled)
	require.ErrorIs(t, err, models.ErrForbidden)

	for _, username := range []string{"stranger", "ghost"} {
		status, err := f.bids.GetBidStatus(ctx, bid.ID, username)
		require.NoError(t, err)
		require.Equal(t, models.BidPublished, status)
	}
}

func TestGetBidStatusRequiresAccess(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()

	owner := dbtest.Employee(t, f.store, "owner")
	bidder := dbtest.Employee(t, f.store, "bidder")
	dbtest.Employee(t, f.store, "stranger")
	org := dbtest.Organization(t, f.store, "HSE", owner)
	tender := f.tender(t, org, owner, "Office renovation")
	bid := f.userBid(t, tender, bidder, "Bid")

	_, err := f.bids.GetBidStatus(ctx, bid.ID, "stranger")
	require.ErrorIs(t, err, models.ErrForbidden)

	for _, username := range []string{"owner", "bidder"} {
		status, err := f.bids.GetBidStatus(ctx, bid.ID, username)
		require.NoError(t, err)
		require.Equal(t, models.BidCreated, status)
	}
}

func TestRollbackBid(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()

	owner := dbtest.Employee(t, f.store, "owner")
	bidder := dbtest.Employee(t, f.store, "bidder")
	org := dbtest.Organization(t, f.store, "HSE", owner)
	tender := f.tender(t, org, owner, "Office renovation")
	bid := f.userBid(t, tender, bidder, "First")

	_, err := f.bids.EditBid(ctx, bid.ID, "bidder", models.BidPatch{Name: ptr("Second")})
	require.NoError(t, err)
	rolled, err := f.bids.RollbackBid(ctx, bid.ID, "owner", 1)
	require.NoError(t, err)
	require.Equal(t, 3, rolled.Version)
	require.Equal(t, "First", rolled.Name)
}

func TestListBidsVisibility(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()

	owner := dbtest.Employee(t, f.store, "owner")
	alice := dbtest.Employee(t, f.store, "alice")
	bob := dbtest.Employee(t, f.store, "bob")
	org := dbtest.Organization(t, f.store, "HSE", owner)
	tender := f.tender(t, org, owner, "Office renovation")

	aliceBid := f.userBid(t, tender, alice, "Alice bid")
	bobBid := f.userBid(t, tender, bob, "Bob bid")

	got, err := f.bids.ListBids(ctx, service.Filter{TenderID: &tender.ID, Username: "alice"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, aliceBid.ID, got[0].ID)

	_, err = f.bids.ChangeBidStatus(ctx, bobBid.ID, "bob", models.BidPublished)
	require.NoError(t, err)
	got, err = f.bids.ListBids(ctx, service.Filter{TenderID: &tender.ID, Username: "alice"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = f.bids.ListBids(ctx, service.Filter{Username: "owner", Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, aliceBid.ID, got[0].ID)

	missing := uuid.New()
	_, err = f.bids.ListBids(ctx, service.Filter{TenderID: &missing, Username: "alice"})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetReviews(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()

	owner := dbtest.Employee(t, f.store, "owner")
	bidder := dbtest.Employee(t, f.store, "bidder")
	dbtest.Employee(t, f.store, "idle")
	org := dbtest.Organization(t, f.store, "HSE", owner)
	tender := f.tender(t, org, owner, "Office renovation")
	other := f.tender(t, org, owner, "Parking lot")

	bid := f.userBid(t, tender, bidder, "Bid")
	otherBid := f.userBid(t, other, bidder, "Other bid")
	_, err := f.bids.AddFeedback(ctx, bid.ID, "owner", "Too expensive")
	require.NoError(t, err)
	_, err = f.bids.AddFeedback(ctx, otherBid.ID, "owner", "Wrong tender")
	require.NoError(t, err)

	reviews, err := f.bids.GetReviews(ctx, tender.ID, "bidder", "owner", service.Filter{})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.Equal(t, "Too expensive", reviews[0].Description)
	require.Equal(t, bid.ID, reviews[0].BidID)

	_, err = f.bids.GetReviews(ctx, tender.ID, "idle", "owner", service.Filter{})
	require.ErrorIs(t, err, models.ErrBadRequest)

	_, err = f.bids.GetReviews(ctx, tender.ID, "bidder", "bidder", service.Filter{})
	require.ErrorIs(t, err, models.ErrForbidden)
}

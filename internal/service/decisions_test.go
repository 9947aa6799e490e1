package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tenderbid/db/dbtest"
	"tenderbid/internal/service"
	"tenderbid/models"
)

func decisions(kinds ...models.Decision) []models.BidDecision {
	out := make([]models.BidDecision, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, models.BidDecision{ID: uuid.New(), EmployeeID: uuid.New(), Decision: k})
	}
	return out
}

func TestAggregateQuorum(t *testing.T) {
	approve, reject := models.DecisionApproved, models.DecisionRejected

	tests := []struct {
		name        string
		decisions   []models.BidDecision
		responsible int
		vetoed      bool
		closes      bool
	}{
		{"single responsible", decisions(approve), 1, false, true},
		{"two responsible one approval", decisions(approve), 2, false, false},
		{"two responsible two approvals", decisions(approve, approve), 2, false, true},
		{"ten responsible two approvals", decisions(approve, approve), 10, false, false},
		{"ten responsible three approvals", decisions(approve, approve, approve), 10, false, true},
		{"rejection after quorum", decisions(approve, approve, approve, reject), 3, true, false},
		{"rejection first", decisions(reject, approve, approve, approve), 3, true, false},
		{"no decisions", nil, 3, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := service.Aggregate(tt.decisions, tt.responsible)
			require.Equal(t, tt.vetoed, out.Vetoed)
			require.Equal(t, tt.closes, out.Closes())
		})
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	set := decisions(models.DecisionApproved, models.DecisionApproved, models.DecisionRejected, models.DecisionApproved)
	want := service.Aggregate(set, 5)

	for i := range set {
		rotated := append(append([]models.BidDecision{}, set[i:]...), set[:i]...)
		require.Equal(t, want, service.Aggregate(rotated, 5))
	}
	for i, j := 0, len(set)-1; i < j; i, j = i+1, j-1 {
		set[i], set[j] = set[j], set[i]
	}
	require.Equal(t, want, service.Aggregate(set, 5))
}

func TestAggregateCountsEachApproverOnce(t *testing.T) {
	employee := uuid.New()
	repeated := []models.BidDecision{
		{EmployeeID: employee, Decision: models.DecisionApproved},
		{EmployeeID: employee, Decision: models.DecisionApproved},
		{EmployeeID: employee, Decision: models.DecisionApproved},
	}
	out := service.Aggregate(repeated, 3)
	require.Equal(t, 1, out.Approvals)
	require.False(t, out.Closes())
}

func TestSingleApprovalClosesTender(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()

	owner := dbtest.Employee(t, f.store, "owner")
	bidder := dbtest.Employee(t, f.store, "bidder")
	org := dbtest.Organization(t, f.store, "HSE", owner)
	tender := f.tender(t, org, owner, "Office renovation")
	bid := f.userBid(t, tender, bidder, "Bid")

	view, err := f.bids.SubmitDecision(ctx, bid.ID, "owner", models.DecisionApproved)
	require.NoError(t, err)
	require.Equal(t, models.BidCreated, view.Status)

	got, err := f.store.GetTender(ctx, tender.ID)
	require.NoError(t, err)
	require.Equal(t, models.TenderClosed, got.Status)
}

func TestDuplicateResponsibleLinkDoesNotRaiseQuorum(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()

	owner := dbtest.Employee(t, f.store, "owner")
	bidder := dbtest.Employee(t, f.store, "bidder")
	org := dbtest.Organization(t, f.store, "HSE", owner, owner)
	tender := f.tender(t, org, owner, "Office renovation")
	bid := f.userBid(t, tender, bidder, "Bid")

	_, err := f.bids.SubmitDecision(ctx, bid.ID, "owner", models.DecisionApproved)
	require.NoError(t, err)

	got, err := f.store.GetTender(ctx, tender.ID)
	require.NoError(t, err)
	require.Equal(t, models.TenderClosed, got.Status)
}

func TestQuorumCapsAtThree(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()

	bidder := dbtest.Employee(t, f.store, "bidder")
	staff := make([]*models.Employee, 10)
	for i := range staff {
		staff[i] = dbtest.Employee(t, f.store, fmt.Sprintf("staff%d", i))
	}
	org := dbtest.Organization(t, f.store, "HSE", staff...)
	tender := f.tender(t, org, staff[0], "Office renovation")
	bid := f.userBid(t, tender, bidder, "Bid")

	for i := 0; i < 2; i++ {
		_, err := f.bids.SubmitDecision(ctx, bid.ID, staff[i].Username, models.DecisionApproved)
		require.NoError(t, err)
	}
	got, err := f.store.GetTender(ctx, tender.ID)
	require.NoError(t, err)
	require.Equal(t, models.TenderCreated, got.Status)

	// повторное одобрение тем же сотрудником кворум не набирает
	_, err = f.bids.SubmitDecision(ctx, bid.ID, staff[1].Username, models.DecisionApproved)
	require.NoError(t, err)
	got, err = f.store.GetTender(ctx, tender.ID)
	require.NoError(t, err)
	require.Equal(t, models.TenderCreated, got.Status)

	_, err = f.bids.SubmitDecision(ctx, bid.ID, staff[2].Username, models.DecisionApproved)
	require.NoError(t, err)
	got, err = f.store.GetTender(ctx, tender.ID)
	require.NoError(t, err)
	require.Equal(t, models.TenderClosed, got.Status)
}

func TestQuorumOfTwo(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()

	alice := dbtest.Employee(t, f.store, "alice")
	bob := dbtest.Employee(t, f.store, "bob")
	bidder := dbtest.Employee(t, f.store, "bidder")
	org := dbtest.Organization(t, f.store, "HSE", alice, bob)
	tender := f.tender(t, org, alice, "Office renovation")
	bid := f.userBid(t, tender, bidder, "Bid")

	_, err := f.bids.SubmitDecision(ctx, bid.ID, "alice", models.DecisionApproved)
	require.NoError(t, err)
	got, err := f.store.GetTender(ctx, tender.ID)
	require.NoError(t, err)
	require.Equal(t, models.TenderCreated, got.Status)

	_, err = f.bids.SubmitDecision(ctx, bid.ID, "bob", models.DecisionApproved)
	require.NoError(t, err)
	got, err = f.store.GetTender(ctx, tender.ID)
	require.NoError(t, err)
	require.Equal(t, models.TenderClosed, got.Status)
}

func TestRejectionVetoesBid(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()

	alice := dbtest.Employee(t, f.store, "alice")
	bob := dbtest.Employee(t, f.store, "bob")
	carol := dbtest.Employee(t, f.store, "carol")
	bidder := dbtest.Employee(t, f.store, "bidder")
	org := dbtest.Organization(t, f.store, "HSE", alice, bob, carol)
	tender := f.tender(t, org, alice, "Office renovation")
	bid := f.userBid(t, tender, bidder, "Bid")

	_, err := f.bids.SubmitDecision(ctx, bid.ID, "alice", models.DecisionApproved)
	require.NoError(t, err)
	view, err := f.bids.SubmitDecision(ctx, bid.ID, "bob", models.DecisionRejected)
	require.NoError(t, err)
	require.Equal(t, models.BidCanceled, view.Status)

	// одобрения после отказа ничего не меняют
	view, err = f.bids.SubmitDecision(ctx, bid.ID, "carol", models.DecisionApproved)
	require.NoError(t, err)
	require.Equal(t, models.BidCanceled, view.Status)
	_, err = f.bids.SubmitDecision(ctx, bid.ID, "alice", models.DecisionApproved)
	require.NoError(t, err)

	got, err := f.store.GetTender(ctx, tender.ID)
	require.NoError(t, err)
	require.Equal(t, models.TenderCreated, got.Status)
}

func TestSubmitDecisionRequiresResponsibility(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()

	owner := dbtest.Employee(t, f.store, "owner")
	bidder := dbtest.Employee(t, f.store, "bidder")
	org := dbtest.Organization(t, f.store, "HSE", owner)
	tender := f.tender(t, org, owner, "Office renovation")
	bid := f.userBid(t, tender, bidder, "Bid")

	_, err := f.bids.SubmitDecision(ctx, bid.ID, "bidder", models.DecisionApproved)
	require.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.bids.SubmitDecision(ctx, bid.ID, "owner", models.Decision("Maybe"))
	require.ErrorIs(t, err, models.ErrBadRequest)

	decided, err := f.store.GetBidDecisions(ctx, bid.ID)
	require.NoError(t, err)
	require.Empty(t, decided)
}

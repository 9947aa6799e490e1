package handlers

import (
	"context"

	"github.com/google/uuid"

	"tenderbid/internal/service"
	"tenderbid/models"
)

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

type TenderService interface {
	CreateTender(ctx context.Context, in service.CreateTenderInput) (*models.TenderView, error)
	EditTender(ctx context.Context, id uuid.UUID, username string, patch models.TenderPatch) (*models.TenderView, error)
	RollbackTender(ctx context.Context, id uuid.UUID, username string, version int) (*models.TenderView, error)
	ChangeTenderStatus(ctx context.Context, id uuid.UUID, username string, status models.TenderStatus) (*models.TenderView, error)
	GetTenderStatus(ctx context.Context, id uuid.UUID, username string) (models.TenderStatus, error)
	ListTenders(ctx context.Context, f service.Filter) ([]models.TenderView, error)
	ListUserTenders(ctx context.Context, f service.Filter) ([]models.TenderView, error)
}

type BidService interface {
	CreateBid(ctx context.Context, in service.CreateBidInput) (*models.BidView, error)
	EditBid(ctx context.Context, id uuid.UUID, username string, patch models.BidPatch) (*models.BidView, error)
	RollbackBid(ctx context.Context, id uuid.UUID, username string, version int) (*models.BidView, error)
	ChangeBidStatus(ctx context.Context, id uuid.UUID, username string, status models.BidStatus) (*models.BidView, error)
	GetBidStatus(ctx context.Context, id uuid.UUID, username string) (models.BidStatus, error)
	ListBids(ctx context.Context, f service.Filter) ([]models.BidView, error)
	AddFeedback(ctx context.Context, id uuid.UUID, username, text string) (*models.BidView, error)
	SubmitDecision(ctx context.Context, id uuid.UUID, username string, decision models.Decision) (*models.BidView, error)
	GetReviews(ctx context.Context, tenderID uuid.UUID, authorUsername, requesterUsername string, f service.Filter) ([]models.BidFeedback, error)
}

var (
	_ TenderService = (*service.TenderService)(nil)
	_ BidService    = (*service.BidService)(nil)
)

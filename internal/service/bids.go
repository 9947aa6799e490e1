package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tenderbid/db"
	"tenderbid/internal/versioned"
	"tenderbid/models"
)

type BidService struct {
	store *db.Storage
	log   zerolog.Logger
	opts  Options
}

func NewBidService(store *db.Storage, log zerolog.Logger, opts Options) *BidService {
	return &BidService{
		store: store,
		log:   log.With().Str("service", "bids").Logger(),
		opts:  opts,
	}
}

type CreateBidInput struct {
	Name        string
	Description string
	TenderID    uuid.UUID
	AuthorType  models.AuthorType
	AuthorID    uuid.UUID
}

func (in CreateBidInput) validate() error {
	if in.Name == "" || len(in.Name) > 100 {
		return fmt.Errorf("%w: name is required and max length 100", models.ErrBadRequest)
	}
	if in.Description == "" || len(in.Description) > 500 {
		return fmt.Errorf("%w: description is required and max length 500", models.ErrBadRequest)
	}
	if !in.AuthorType.Valid() {
		return fmt.Errorf("%w: unknown authorType %q", models.ErrBadRequest, in.AuthorType)
	}
	return nil
}

func bidVersions(tx *db.Storage) *versioned.Store[models.BidContent, models.BidPatch] {
	return versioned.New(tx.BidVersions(), models.MergeBid)
}

// CreateBid создаёт предложение в статусе Created вместе с версией 1.
func (s *BidService) CreateBid(ctx context.Context, in CreateBidInput) (*models.BidView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var view *models.BidView
	err := s.store.Atomic(ctx, func(tx *db.Storage) error {
		if _, err := tx.GetTender(ctx, in.TenderID); err != nil {
			return err
		}
		dir := NewDirectory(tx)
		switch in.AuthorType {
		case models.AuthorUser:
			if _, err := dir.GetEmployeeByID(ctx, in.AuthorID); err != nil {
				return err
			}
		case models.AuthorOrganization:
			if _, err := dir.GetOrganizationByID(ctx, in.AuthorID); err != nil {
				return err
			}
		}

		bid := &models.Bid{
			Status:     models.BidCreated,
			TenderID:   in.TenderID,
			AuthorType: in.AuthorType,
			AuthorID:   in.AuthorID,
		}
		if err := tx.CreateBid(ctx, bid); err != nil {
			return err
		}
		content := models.BidContent{Name: in.Name, Description: in.Description}
		if _, err := bidVersions(tx).Init(ctx, bid.ID, content); err != nil {
			return err
		}
		var err error
		view, err = tx.GetBidView(ctx, bid.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("bid_id", view.ID.String()).Str("tender_id", in.TenderID.String()).Msg("bid created")
	return view, nil
}

// mutate блокирует предложение, проверяет права через allow и выполняет fn
// в одной транзакции.
func (s *BidService) mutate(
	ctx context.Context,
	id uuid.UUID,
	username string,
	allow func(Access) bool,
	fn func(tx *db.Storage, user *models.Employee, bid *models.Bid) error,
) (*models.BidView, error) {
	var view *models.BidView
	err := s.store.Atomic(ctx, func(tx *db.Storage) error {
		user, err := NewDirectory(tx).GetEmployeeByUsername(ctx, username)
		if err != nil {
			return err
		}
		bid, err := tx.LockBid(ctx, id)
		if err != nil {
			return err
		}
		access, err := NewAuthorizer(tx).BidAccess(ctx, user, bid)
		if err != nil {
			return err
		}
		if !allow(access) {
			return fmt.Errorf("%w: %s may not modify bid %s", models.ErrForbidden, user.Username, id)
		}
		if err := fn(tx, user, bid); err != nil {
			return err
		}
		view, err = tx.GetBidView(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func authorized(a Access) bool  { return a.Authorized() }
func responsible(a Access) bool { return a.Responsible }

func (s *BidService) EditBid(ctx context.Context, id uuid.UUID, username string, patch models.BidPatch) (*models.BidView, error) {
	return s.mutate(ctx, id, username, authorized, func(tx *db.Storage, _ *models.Employee, _ *models.Bid) error {
		_, err := bidVersions(tx).Update(ctx, id, patch)
		return err
	})
}

func (s *BidService) RollbackBid(ctx context.Context, id uuid.UUID, username string, target int) (*models.BidView, error) {
	if target < 1 {
		return nil, fmt.Errorf("%w: version must be positive", models.ErrBadRequest)
	}
	view, err := s.mutate(ctx, id, username, authorized, func(tx *db.Storage, _ *models.Employee, _ *models.Bid) error {
		_, err := bidVersions(tx).Rollback(ctx, id, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("bid_id", id.String()).Int("from_version", target).Int("version", view.Version).Msg("bid rolled back")
	return view, nil
}

func (s *BidService) ChangeBidStatus(ctx context.Context, id uuid.UUID, username string, status models.BidStatus) (*models.BidView, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid bid status %q", models.ErrBadRequest, status)
	}
	return s.mutate(ctx, id, username, authorized, func(tx *db.Storage, _ *models.Employee, bid *models.Bid) error {
		if err := checkTransition(s.opts.StrictStatusTransitions, bidTransitions, bid.Status, status); err != nil {
			return err
		}
		return tx.SetBidStatus(ctx, id, status)
	})
}

// GetBidStatus: опубликованное предложение видно всем, остальные только
// при наличии прав.
func (s *BidService) GetBidStatus(ctx context.Context, id uuid.UUID, username string) (models.BidStatus, error) {
	bid, err := s.store.GetBid(ctx, id)
	if err != nil {
		return "", err
	}
	if bid.Status == models.BidPublished {
		return bid.Status, nil
	}
	user, err := NewDirectory(s.store).GetEmployeeByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	access, err := NewAuthorizer(s.store).BidAccess(ctx, user, bid)
	if err != nil {
		return "", err
	}
	if !access.Authorized() {
		return "", fmt.Errorf("%w: bid %s is not published", models.ErrForbidden, id)
	}
	return bid.Status, nil
}

// ListBids отдаёт видимые пользователю предложения, по тендеру если он задан.
// Недоступные предложения молча пропускаются.
func (s *BidService) ListBids(ctx context.Context, f Filter) ([]models.BidView, error) {
	if err := f.normalize(); err != nil {
		return nil, err
	}
	user, err := NewDirectory(s.store).GetEmployeeByUsername(ctx, f.Username)
	if err != nil {
		return nil, err
	}
	if f.TenderID != nil {
		if _, err := s.store.GetTender(ctx, *f.TenderID); err != nil {
			return nil, err
		}
	}
	orgs, err := NewAuthorizer(s.store).responsibleSet(ctx, user)
	if err != nil {
		return nil, err
	}

	all, err := s.store.ListBidViews(ctx, f.TenderID)
	if err != nil {
		return nil, err
	}
	tenderOrgs := map[uuid.UUID]uuid.UUID{}
	visible := make([]models.BidView, 0, len(all))
	for _, b := range all {
		org, ok := tenderOrgs[b.TenderID]
		if !ok {
			tender, err := s.store.GetTender(ctx, b.TenderID)
			if err != nil {
				return nil, err
			}
			org = tender.OrganizationID
			tenderOrgs[b.TenderID] = org
		}

		switch {
		case b.Status == models.BidPublished:
		case b.AuthorType == models.AuthorUser && b.AuthorID == user.ID:
		case orgs.has(org):
		case b.AuthorType == models.AuthorOrganization && orgs.has(b.AuthorID):
		default:
			continue
		}
		visible = append(visible, b)
	}
	return page(visible, f), nil
}

// AddFeedback доступен только ответственным: автор сам себе отзыв не оставляет.
func (s *BidService) AddFeedback(ctx context.Context, id uuid.UUID, username, text string) (*models.BidView, error) {
	if text == "" || len(text) > 1000 {
		return nil, fmt.Errorf("%w: feedback is required and max length 1000", models.ErrBadRequest)
	}
	return s.mutate(ctx, id, username, responsible, func(tx *db.Storage, _ *models.Employee, _ *models.Bid) error {
		return tx.CreateBidFeedback(ctx, &models.BidFeedback{BidID: id, Description: text})
	})
}

// SubmitDecision записывает решение и пересчитывает итог в той же
// транзакции: отказ отменяет предложение, кворум одобрений закрывает тендер.
func (s *BidService) SubmitDecision(ctx context.Context, id uuid.UUID, username string, decision models.Decision) (*models.BidView, error) {
	if !decision.Valid() {
		return nil, fmt.Errorf("%w: invalid decision %q", models.ErrBadRequest, decision)
	}

	var outcome Outcome
	var tenderID uuid.UUID
	view, err := s.mutate(ctx, id, username, responsible, func(tx *db.Storage, user *models.Employee, bid *models.Bid) error {
		tender, err := tx.LockTender(ctx, bid.TenderID)
		if err != nil {
			return err
		}
		tenderID = tender.ID

		err = tx.AddBidDecision(ctx, &models.BidDecision{BidID: id, EmployeeID: user.ID, Decision: decision})
		if err != nil {
			return err
		}
		decisions, err := tx.GetBidDecisions(ctx, id)
		if err != nil {
			return err
		}
		count, err := tx.GetResponsibleCount(ctx, tender.OrganizationID)
		if err != nil {
			return err
		}

		outcome = Aggregate(decisions, count)
		switch {
		case outcome.Vetoed:
			if bid.Status != models.BidCanceled {
				return tx.SetBidStatus(ctx, id, models.BidCanceled)
			}
		case outcome.Closes():
			if tender.Status != models.TenderClosed {
				return tx.SetTenderStatus(ctx, tender.ID, models.TenderClosed)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := s.log.Info().
		Str("bid_id", id.String()).
		Str("tender_id", tenderID.String()).
		Int("approvals", outcome.Approvals).
		Int("quorum", outcome.Quorum)
	switch {
	case outcome.Vetoed:
		event.Msg("bid canceled by rejection")
	case outcome.Closes():
		event.Msg("tender closed by quorum")
	default:
		event.Msg("decision recorded")
	}
	return view, nil
}

// GetReviews отдаёт отзывы на предложения автора по указанному тендеру.
// Запрашивающий должен отвечать за организацию тендера.
func (s *BidService) GetReviews(ctx context.Context, tenderID uuid.UUID, authorUsername, requesterUsername string, f Filter) ([]models.BidFeedback, error) {
	if err := f.normalize(); err != nil {
		return nil, err
	}
	dir := NewDirectory(s.store)
	requester, err := dir.GetEmployeeByUsername(ctx, requesterUsername)
	if err != nil {
		return nil, err
	}
	tender, err := s.store.GetTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	ok, err := dir.IsUserResponsibleFor(ctx, requester.ID, tender.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is not responsible for tender %s", models.ErrForbidden, requester.Username, tenderID)
	}

	author, err := s.store.GetEmployeeByUsername(ctx, authorUsername)
	if err != nil {
		return nil, err
	}
	n, err := s.store.CountUserBidsForTender(ctx, author.ID, tenderID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s has no bids for tender %s", models.ErrBadRequest, author.Username, tenderID)
	}
	return s.store.GetFeedbackByAuthorForTender(ctx, author.ID, tenderID, f.Limit, f.Offset)
}

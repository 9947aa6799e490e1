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

type Options struct {
	// StrictStatusTransitions включает таблицы допустимых переходов статусов.
	StrictStatusTransitions bool
}

type TenderService struct {
	store *db.Storage
	log   zerolog.Logger
	opts  Options
}

func NewTenderService(store *db.Storage, log zerolog.Logger, opts Options) *TenderService {
	return &TenderService{
		store: store,
		log:   log.With().Str("service", "tenders").Logger(),
		opts:  opts,
	}
}

type CreateTenderInput struct {
	Name            string
	Description     string
	ServiceType     models.ServiceType
	OrganizationID  uuid.UUID
	CreatorUsername string
}

func (in CreateTenderInput) validate() error {
	if in.Name == "" || len(in.Name) > 100 {
		return fmt.Errorf("%w: name is required and max length 100", models.ErrBadRequest)
	}
	if in.Description == "" || len(in.Description) > 500 {
		return fmt.Errorf("%w: description is required and max length 500", models.ErrBadRequest)
	}
	if !in.ServiceType.Valid() {
		return fmt.Errorf("%w: invalid serviceType %q", models.ErrBadRequest, in.ServiceType)
	}
	return nil
}

func tenderVersions(tx *db.Storage) *versioned.Store[models.TenderContent, models.TenderPatch] {
	return versioned.New(tx.TenderVersions(), models.MergeTender)
}

// CreateTender создаёт тендер в статусе Created вместе с версией 1.
// Все проверки выполняются до первой записи.
func (s *TenderService) CreateTender(ctx context.Context, in CreateTenderInput) (*models.TenderView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var view *models.TenderView
	err := s.store.Atomic(ctx, func(tx *db.Storage) error {
		dir := NewDirectory(tx)
		if _, err := dir.GetOrganizationByID(ctx, in.OrganizationID); err != nil {
			return err
		}
		creator, err := dir.GetEmployeeByUsername(ctx, in.CreatorUsername)
		if err != nil {
			return err
		}
		responsible, err := dir.IsUserResponsibleFor(ctx, creator.ID, in.OrganizationID)
		if err != nil {
			return err
		}
		if !responsible {
			return fmt.Errorf("%w: %s is not responsible for organization %s", models.ErrForbidden, creator.Username, in.OrganizationID)
		}

		tender := &models.Tender{
			Status:         models.TenderCreated,
			OrganizationID: in.OrganizationID,
			CreatorID:      creator.ID,
		}
		if err := tx.CreateTender(ctx, tender); err != nil {
			return err
		}
		content := models.TenderContent{Name: in.Name, Description: in.Description, ServiceType: in.ServiceType}
		if _, err := tenderVersions(tx).Init(ctx, tender.ID, content); err != nil {
			return err
		}
		view, err = tx.GetTenderView(ctx, tender.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("tender_id", view.ID.String()).Msg("tender created")
	return view, nil
}

// mutate блокирует тендер, проверяет права пользователя и выполняет fn в
// одной транзакции. Возвращает итоговое представление тендера.
func (s *TenderService) mutate(ctx context.Context, id uuid.UUID, username string, fn func(tx *db.Storage, tender *models.Tender) error) (*models.TenderView, error) {
	var view *models.TenderView
	err := s.store.Atomic(ctx, func(tx *db.Storage) error {
		user, err := NewDirectory(tx).GetEmployeeByUsername(ctx, username)
		if err != nil {
			return err
		}
		tender, err := tx.LockTender(ctx, id)
		if err != nil {
			return err
		}
		access, err := NewAuthorizer(tx).TenderAccess(ctx, user, tender)
		if err != nil {
			return err
		}
		if !access.Authorized() {
			return fmt.Errorf("%w: %s may not modify tender %s", models.ErrForbidden, user.Username, id)
		}
		if err := fn(tx, tender); err != nil {
			return err
		}
		view, err = tx.GetTenderView(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *TenderService) EditTender(ctx context.Context, id uuid.UUID, username string, patch models.TenderPatch) (*models.TenderView, error) {
	if patch.ServiceType != nil && !patch.ServiceType.Valid() {
		return nil, fmt.Errorf("%w: invalid serviceType %q", models.ErrBadRequest, *patch.ServiceType)
	}
	return s.mutate(ctx, id, username, func(tx *db.Storage, _ *models.Tender) error {
		_, err := tenderVersions(tx).Update(ctx, id, patch)
		return err
	})
}

// RollbackTender копирует содержимое версии target вперёд новой версией.
func (s *TenderService) RollbackTender(ctx context.Context, id uuid.UUID, username string, target int) (*models.TenderView, error) {
	if target < 1 {
		return nil, fmt.Errorf("%w: version must be positive", models.ErrBadRequest)
	}
	view, err := s.mutate(ctx, id, username, func(tx *db.Storage, _ *models.Tender) error {
		_, err := tenderVersions(tx).Rollback(ctx, id, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("tender_id", id.String()).Int("from_version", target).Int("version", view.Version).Msg("tender rolled back")
	return view, nil
}

// ChangeTenderStatus не создаёт новую версию: статус живёт на сущности.
func (s *TenderService) ChangeTenderStatus(ctx context.Context, id uuid.UUID, username string, status models.TenderStatus) (*models.TenderView, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid tender status %q", models.ErrBadRequest, status)
	}
	return s.mutate(ctx, id, username, func(tx *db.Storage, tender *models.Tender) error {
		if err := checkTransition(s.opts.StrictStatusTransitions, tenderTransitions, tender.Status, status); err != nil {
			return err
		}
		return tx.SetTenderStatus(ctx, id, status)
	})
}

// GetTenderStatus: опубликованный тендер виден всем, остальные только
// автору и ответственным.
func (s *TenderService) GetTenderStatus(ctx context.Context, id uuid.UUID, username string) (models.TenderStatus, error) {
	tender, err := s.store.GetTender(ctx, id)
	if err != nil {
		return "", err
	}
	if tender.Status == models.TenderPublished {
		return tender.Status, nil
	}
	user, err := NewDirectory(s.store).GetEmployeeByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	access, err := NewAuthorizer(s.store).TenderAccess(ctx, user, tender)
	if err != nil {
		return "", err
	}
	if !access.Authorized() {
		return "", fmt.Errorf("%w: tender %s is not published", models.ErrForbidden, id)
	}
	return tender.Status, nil
}

// ListTenders отдаёт опубликованные тендеры, а при заданном пользователе
// ещё и те, на которые у него есть права. Пагинация после фильтрации.
func (s *TenderService) ListTenders(ctx context.Context, f Filter) ([]models.TenderView, error) {
	if err := f.normalize(); err != nil {
		return nil, err
	}

	var (
		user *models.Employee
		orgs orgSet
	)
	if f.Username != "" {
		var err error
		user, err = NewDirectory(s.store).GetEmployeeByUsername(ctx, f.Username)
		if err != nil {
			return nil, err
		}
		orgs, err = NewAuthorizer(s.store).responsibleSet(ctx, user)
		if err != nil {
			return nil, err
		}
	}

	all, err := s.store.ListTenderViews(ctx, f.ServiceTypes)
	if err != nil {
		return nil, err
	}
	visible := make([]models.TenderView, 0, len(all))
	for _, t := range all {
		switch {
		case t.Status == models.TenderPublished:
		case user != nil && (t.CreatorID == user.ID || orgs.has(t.OrganizationID)):
		default:
			continue
		}
		visible = append(visible, t)
	}
	return page(visible, f), nil
}

// ListUserTenders отдаёт только тендеры, на которые у пользователя есть права.
func (s *TenderService) ListUserTenders(ctx context.Context, f Filter) ([]models.TenderView, error) {
	if err := f.normalize(); err != nil {
		return nil, err
	}
	user, err := NewDirectory(s.store).GetEmployeeByUsername(ctx, f.Username)
	if err != nil {
		return nil, err
	}
	orgs, err := NewAuthorizer(s.store).responsibleSet(ctx, user)
	if err != nil {
		return nil, err
	}

	all, err := s.store.ListTenderViews(ctx, f.ServiceTypes)
	if err != nil {
		return nil, err
	}
	mine := make([]models.TenderView, 0, len(all))
	for _, t := range all {
		if t.CreatorID == user.ID || orgs.has(t.OrganizationID) {
			mine = append(mine, t)
		}
	}
	return page(mine, f), nil
}

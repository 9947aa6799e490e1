package service

import (
	"context"

	"github.com/google/uuid"

	"tenderbid/db"
	"tenderbid/models"
)

// Access итог проверки пользователя по одной сущности.
type Access struct {
	Author      bool
	Responsible bool
}

// Authorized предикат, которым пользуются все изменяющие операции.
func (a Access) Authorized() bool {
	return a.Author || a.Responsible
}

// Authorizer решает, является ли пользователь автором сущности или
// ответственным за организацию-владельца.
type Authorizer struct {
	dir   *Directory
	store *db.Storage
}

func NewAuthorizer(store *db.Storage) *Authorizer {
	return &Authorizer{dir: NewDirectory(store), store: store}
}

func (a *Authorizer) TenderAccess(ctx context.Context, user *models.Employee, tender *models.Tender) (Access, error) {
	responsible, err := a.dir.IsUserResponsibleFor(ctx, user.ID, tender.OrganizationID)
	if err != nil {
		return Access{}, err
	}
	return Access{
		Author:      tender.CreatorID == user.ID,
		Responsible: responsible,
	}, nil
}

// BidAccess находит тендер предложения: организация тендера управляет
// предложениями наравне с автором предложения.
func (a *Authorizer) BidAccess(ctx context.Context, user *models.Employee, bid *models.Bid) (Access, error) {
	access := Access{
		Author: bid.AuthorType == models.AuthorUser && bid.AuthorID == user.ID,
	}

	tender, err := a.store.GetTender(ctx, bid.TenderID)
	if err != nil {
		return Access{}, err
	}
	access.Responsible, err = a.dir.IsUserResponsibleFor(ctx, user.ID, tender.OrganizationID)
	if err != nil || access.Responsible {
		return access, err
	}

	if bid.AuthorType == models.AuthorOrganization {
		access.Responsible, err = a.dir.IsUserResponsibleFor(ctx, user.ID, bid.AuthorID)
		if err != nil {
			return Access{}, err
		}
	}
	return access, nil
}

// orgSet организации, за которые отвечает пользователь. Загружается один раз на список.
type orgSet map[uuid.UUID]struct{}

func (a *Authorizer) responsibleSet(ctx context.Context, user *models.Employee) (orgSet, error) {
	ids, err := a.store.GetResponsibleOrganizations(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	set := make(orgSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (s orgSet) has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

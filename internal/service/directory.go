package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tenderbid/db"
	"tenderbid/models"
)

// ErrUnknownUser это NotFound для имени самого вызывающего.
var ErrUnknownUser = fmt.Errorf("%w: unknown user", models.ErrNotFound)

// Directory отвечает за сотрудников, организации и ответственных.
type Directory struct {
	store *db.Storage
}

func NewDirectory(store *db.Storage) *Directory {
	return &Directory{store: store}
}

func (d *Directory) GetEmployeeByUsername(ctx context.Context, username string) (*models.Employee, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", models.ErrBadRequest)
	}
	e, err := d.store.GetEmployeeByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUser, username)
	}
	return e, err
}

func (d *Directory) GetEmployeeByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	return d.store.GetEmployee(ctx, id)
}

func (d *Directory) GetOrganizationByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	return d.store.GetOrganization(ctx, id)
}

// IsUserResponsibleFor никогда не сообщает об отсутствии связи ошибкой.
func (d *Directory) IsUserResponsibleFor(ctx context.Context, userID, organizationID uuid.UUID) (bool, error) {
	return d.store.IsUserResponsibleForOrganization(ctx, userID, organizationID)
}

func (d *Directory) CreateEmployee(ctx context.Context, e *models.Employee) error {
	e.Username = strings.TrimSpace(e.Username)
	if e.Username == "" || len(e.Username) > 50 {
		return fmt.Errorf("%w: username is required and max length 50", models.ErrBadRequest)
	}
	return d.store.CreateEmployee(ctx, e)
}

func (d *Directory) CreateOrganization(ctx context.Context, o *models.Organization) error {
	if o.Name == "" || len(o.Name) > 100 {
		return fmt.Errorf("%w: organization name is required and max length 100", models.ErrBadRequest)
	}
	if o.Type == "" {
		o.Type = models.OrganizationLLC
	}
	if !o.Type.Valid() {
		return fmt.Errorf("%w: organization type %q", models.ErrBadRequest, o.Type)
	}
	return d.store.CreateOrganization(ctx, o)
}

// AddResponsible связывает сотрудника с организацией. Повторные связи сохраняются.
func (d *Directory) AddResponsible(ctx context.Context, organizationID, userID uuid.UUID) error {
	if _, err := d.store.GetOrganization(ctx, organizationID); err != nil {
		return err
	}
	if _, err := d.store.GetEmployee(ctx, userID); err != nil {
		return err
	}
	return d.store.AddResponsible(ctx, organizationID, userID)
}

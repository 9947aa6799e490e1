package db

import (
	"context"

	"github.com/google/uuid"

	"tenderbid/models"
)

// Employee (Пользователь)

func (s *Storage) CreateEmployee(ctx context.Context, e *models.Employee) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt
	query := `
        INSERT INTO employee (id, username, first_name, last_name, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.exec(ctx, query, e.ID, e.Username, e.FirstName, e.LastName, e.CreatedAt, e.UpdatedAt)
	return mapErr(err, "employee %q", e.Username)
}

func (s *Storage) GetEmployeeByUsername(ctx context.Context, username string) (*models.Employee, error) {
	e := &models.Employee{}
	query := `SELECT id, username, first_name, last_name, created_at, updated_at FROM employee WHERE username = ?`
	if err := s.get(ctx, e, query, username); err != nil {
		return nil, mapErr(err, "employee %q", username)
	}
	return e, nil
}

func (s *Storage) GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	e := &models.Employee{}
	query := `SELECT id, username, first_name, last_name, created_at, updated_at FROM employee WHERE id = ?`
	if err := s.get(ctx, e, query, id); err != nil {
		return nil, mapErr(err, "employee %s", id)
	}
	return e, nil
}

// Organization (Организация)

func (s *Storage) CreateOrganization(ctx context.Context, o *models.Organization) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = now()
	o.UpdatedAt = o.CreatedAt
	query := `
        INSERT INTO organization (id, name, description, type, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.exec(ctx, query, o.ID, o.Name, o.Description, o.Type, o.CreatedAt, o.UpdatedAt)
	return mapErr(err, "organization %q", o.Name)
}

func (s *Storage) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	o := &models.Organization{}
	query := `SELECT id, name, description, type, created_at, updated_at FROM organization WHERE id = ?`
	if err := s.get(ctx, o, query, id); err != nil {
		return nil, mapErr(err, "organization %s", id)
	}
	return o, nil
}

func (s *Storage) AddResponsible(ctx context.Context, organizationID, userID uuid.UUID) error {
	query := `INSERT INTO organization_responsible (id, organization_id, user_id) VALUES (?, ?, ?)`
	_, err := s.exec(ctx, query, uuid.New(), organizationID, userID)
	return mapErr(err, "responsible %s for %s", userID, organizationID)
}

func (s *Storage) IsUserResponsibleForOrganization(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	var count int
	query := `SELECT COUNT(1) FROM organization_responsible WHERE user_id = ? AND organization_id = ?`
	if err := s.get(ctx, &count, query, userID, orgID); err != nil {
		return false, mapErr(err, "responsible check")
	}
	return count > 0, nil
}

// GetResponsibleCount считает различных ответственных сотрудников:
// повторная связь того же сотрудника не учитывается.
func (s *Storage) GetResponsibleCount(ctx context.Context, organizationID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(DISTINCT user_id) FROM organization_responsible WHERE organization_id = ?`
	if err := s.get(ctx, &count, query, organizationID); err != nil {
		return 0, mapErr(err, "responsible count for %s", organizationID)
	}
	return count, nil
}

func (s *Storage) GetResponsibleOrganizations(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	query := `SELECT DISTINCT organization_id FROM organization_responsible WHERE user_id = ?`
	if err := s.selectAll(ctx, &ids, query, userID); err != nil {
		return nil, mapErr(err, "organizations of %s", userID)
	}
	return ids, nil
}

// FindOrganizationByName отдаёт самую раннюю организацию с таким именем.
func (s *Storage) FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	o := &models.Organization{}
	query := `
        SELECT id, name, description, type, created_at, updated_at
        FROM organization WHERE name = ? ORDER BY created_at ASC, id ASC LIMIT 1`
	if err := s.get(ctx, o, query, name); err != nil {
		return nil, mapErr(err, "organization %q", name)
	}
	return o, nil
}

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tenderbid/internal/versioned"
	"tenderbid/models"
)

// Tender (Тендер)

func (s *Storage) CreateTender(ctx context.Context, t *models.Tender) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	query := `
        INSERT INTO tender (id, status, organization_id, creator_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.exec(ctx, query, t.ID, t.Status, t.OrganizationID, t.CreatorID, t.CreatedAt, t.UpdatedAt)
	return mapErr(err, "tender %s", t.ID)
}

func (s *Storage) GetTender(ctx context.Context, id uuid.UUID) (*models.Tender, error) {
	return s.getTender(ctx, id, "")
}

// LockTender читает тендер и блокирует строку до конца транзакции.
func (s *Storage) LockTender(ctx context.Context, id uuid.UUID) (*models.Tender, error) {
	return s.getTender(ctx, id, s.forUpdate())
}

func (s *Storage) getTender(ctx context.Context, id uuid.UUID, lock string) (*models.Tender, error) {
	t := &models.Tender{}
	query := `SELECT id, status, organization_id, creator_id, created_at, updated_at FROM tender WHERE id = ?` + lock
	if err := s.get(ctx, t, query, id); err != nil {
		return nil, mapErr(err, "tender %s", id)
	}
	return t, nil
}

func (s *Storage) SetTenderStatus(ctx context.Context, id uuid.UUID, status models.TenderStatus) error {
	res, err := s.exec(ctx, `UPDATE tender SET status = ?, updated_at = ? WHERE id = ?`, status, now(), id)
	if err != nil {
		return mapErr(err, "tender %s status", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return mapErr(sql.ErrNoRows, "tender %s", id)
	}
	return nil
}

const tenderViewQuery = `
        SELECT t.id, v.name, v.description, t.status, v.service_type, v.version,
               t.created_at, t.organization_id, t.creator_id
        FROM tender t
        JOIN tender_version v ON v.tender_id = t.id
        WHERE v.version = (SELECT MAX(tv.version) FROM tender_version tv WHERE tv.tender_id = t.id)`

// GetTenderView собирает тендер и его текущую версию.
func (s *Storage) GetTenderView(ctx context.Context, id uuid.UUID) (*models.TenderView, error) {
	view := &models.TenderView{}
	if err := s.get(ctx, view, tenderViewQuery+` AND t.id = ?`, id); err != nil {
		return nil, mapErr(err, "tender %s", id)
	}
	return view, nil
}

// ListTenderViews возвращает все тендеры, упорядоченные по имени текущей версии.
// Пустой serviceTypes означает "любой тип". Тендеры без версий не видны ни
// одному пути чтения.
func (s *Storage) ListTenderViews(ctx context.Context, serviceTypes []models.ServiceType) ([]models.TenderView, error) {
	query := tenderViewQuery
	var args []interface{}
	if len(serviceTypes) > 0 {
		var err error
		query, args, err = sqlx.In(query+` AND v.service_type IN (?)`, serviceTypes)
		if err != nil {
			return nil, fmt.Errorf("list tenders: %w", err)
		}
	}
	query += ` ORDER BY v.name ASC, t.created_at ASC, t.id ASC`

	views := []models.TenderView{}
	if err := s.selectAll(ctx, &views, query, args...); err != nil {
		return nil, mapErr(err, "list tenders")
	}
	return views, nil
}

// TenderVersions отдаёт историю версий тендеров движку versioned.
func (s *Storage) TenderVersions() versioned.Backend[models.TenderContent] {
	return tenderVersions{s: s}
}

type tenderVersions struct {
	s *Storage
}

type tenderVersionRow struct {
	ID       uuid.UUID `db:"id"`
	TenderID uuid.UUID `db:"tender_id"`
	Version  int       `db:"version"`
	models.TenderContent
}

func (r tenderVersionRow) toVersion() versioned.Version[models.TenderContent] {
	return versioned.Version[models.TenderContent]{
		ID:       r.ID,
		EntityID: r.TenderID,
		Number:   r.Version,
		Content:  r.TenderContent,
	}
}

const tenderVersionColumns = `id, tender_id, version, name, description, service_type`

func (b tenderVersions) EntityExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int
	if err := b.s.get(ctx, &count, `SELECT COUNT(1) FROM tender WHERE id = ?`, id); err != nil {
		return false, mapErr(err, "tender %s", id)
	}
	return count > 0, nil
}

func (b tenderVersions) LatestVersion(ctx context.Context, id uuid.UUID) (versioned.Version[models.TenderContent], error) {
	var row tenderVersionRow
	query := `SELECT ` + tenderVersionColumns + ` FROM tender_version WHERE tender_id = ? ORDER BY version DESC LIMIT 1`
	if err := b.s.get(ctx, &row, query, id); err != nil {
		return versioned.Version[models.TenderContent]{}, mapErr(err, "versions of tender %s", id)
	}
	return row.toVersion(), nil
}

func (b tenderVersions) GetVersion(ctx context.Context, id uuid.UUID, number int) (versioned.Version[models.TenderContent], error) {
	var row tenderVersionRow
	query := `SELECT ` + tenderVersionColumns + ` FROM tender_version WHERE tender_id = ? AND version = ?`
	if err := b.s.get(ctx, &row, query, id, number); err != nil {
		return versioned.Version[models.TenderContent]{}, mapErr(err, "version %d of tender %s", number, id)
	}
	return row.toVersion(), nil
}

func (b tenderVersions) InsertVersion(ctx context.Context, v versioned.Version[models.TenderContent]) error {
	query := `
        INSERT INTO tender_version (id, tender_id, version, name, description, service_type, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := b.s.exec(ctx, query,
		v.ID, v.EntityID, v.Number, v.Content.Name, v.Content.Description, v.Content.ServiceType, now())
	return mapErr(err, "version %d of tender %s", v.Number, v.EntityID)
}

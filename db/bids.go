package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"tenderbid/internal/versioned"
	"tenderbid/models"
)

// Bid (Предложение)

func (s *Storage) CreateBid(ctx context.Context, b *models.Bid) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt
	query := `
        INSERT INTO bid (id, status, tender_id, author_type, author_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.exec(ctx, query, b.ID, b.Status, b.TenderID, b.AuthorType, b.AuthorID, b.CreatedAt, b.UpdatedAt)
	return mapErr(err, "bid %s", b.ID)
}

func (s *Storage) GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	return s.getBid(ctx, id, "")
}

// LockBid читает предложение и блокирует строку до конца транзакции.
func (s *Storage) LockBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	return s.getBid(ctx, id, s.forUpdate())
}

func (s *Storage) getBid(ctx context.Context, id uuid.UUID, lock string) (*models.Bid, error) {
	b := &models.Bid{}
	query := `SELECT id, status, tender_id, author_type, author_id, created_at, updated_at FROM bid WHERE id = ?` + lock
	if err := s.get(ctx, b, query, id); err != nil {
		return nil, mapErr(err, "bid %s", id)
	}
	return b, nil
}

func (s *Storage) SetBidStatus(ctx context.Context, id uuid.UUID, status models.BidStatus) error {
	res, err := s.exec(ctx, `UPDATE bid SET status = ?, updated_at = ? WHERE id = ?`, status, now(), id)
	if err != nil {
		return mapErr(err, "bid %s status", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return mapErr(sql.ErrNoRows, "bid %s", id)
	}
	return nil
}

const bidViewQuery = `
        SELECT b.id, v.name, v.description, b.status, b.tender_id, b.author_type, b.author_id,
               v.version, b.created_at
        FROM bid b
        JOIN bid_version v ON v.bid_id = b.id
        WHERE v.version = (SELECT MAX(bv.version) FROM bid_version bv WHERE bv.bid_id = b.id)`

func (s *Storage) GetBidView(ctx context.Context, id uuid.UUID) (*models.BidView, error) {
	view := &models.BidView{}
	if err := s.get(ctx, view, bidViewQuery+` AND b.id = ?`, id); err != nil {
		return nil, mapErr(err, "bid %s", id)
	}
	return view, nil
}

// ListBidViews возвращает предложения (по тендеру, если он задан),
// упорядоченные по имени текущей версии.
func (s *Storage) ListBidViews(ctx context.Context, tenderID *uuid.UUID) ([]models.BidView, error) {
	query := bidViewQuery
	var args []interface{}
	if tenderID != nil {
		query += ` AND b.tender_id = ?`
		args = append(args, *tenderID)
	}
	query += ` ORDER BY v.name ASC, b.created_at ASC, b.id ASC`

	views := []models.BidView{}
	if err := s.selectAll(ctx, &views, query, args...); err != nil {
		return nil, mapErr(err, "list bids")
	}
	return views, nil
}

func (s *Storage) CountUserBidsForTender(ctx context.Context, authorID, tenderID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(1) FROM bid WHERE author_type = ? AND author_id = ? AND tender_id = ?`
	if err := s.get(ctx, &count, query, models.AuthorUser, authorID, tenderID); err != nil {
		return 0, mapErr(err, "bids of %s", authorID)
	}
	return count, nil
}

// BidFeedback (Отзыв)

func (s *Storage) CreateBidFeedback(ctx context.Context, f *models.BidFeedback) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = now()
	query := `INSERT INTO bid_feedback (id, bid_id, feedback, created_at) VALUES (?, ?, ?, ?)`
	_, err := s.exec(ctx, query, f.ID, f.BidID, f.Description, f.CreatedAt)
	return mapErr(err, "feedback on bid %s", f.BidID)
}

// GetFeedbackByAuthorForTender отдаёт отзывы на предложения пользователя по тендеру.
func (s *Storage) GetFeedbackByAuthorForTender(ctx context.Context, authorID, tenderID uuid.UUID, limit, offset int) ([]models.BidFeedback, error) {
	query := `
        SELECT f.id, f.bid_id, f.feedback, f.created_at
        FROM bid_feedback f
        JOIN bid b ON f.bid_id = b.id
        WHERE b.author_type = ? AND b.author_id = ? AND b.tender_id = ?
        ORDER BY f.created_at DESC, f.id ASC
        LIMIT ? OFFSET ?`
	feedback := []models.BidFeedback{}
	if err := s.selectAll(ctx, &feedback, query, models.AuthorUser, authorID, tenderID, limit, offset); err != nil {
		return nil, mapErr(err, "feedback by %s", authorID)
	}
	return feedback, nil
}

// BidDecision (Решение)

func (s *Storage) AddBidDecision(ctx context.Context, d *models.BidDecision) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = now()
	query := `
        INSERT INTO bid_decision (id, bid_id, employee_id, decision, created_at)
        VALUES (?, ?, ?, ?, ?)`
	_, err := s.exec(ctx, query, d.ID, d.BidID, d.EmployeeID, d.Decision, d.CreatedAt)
	return mapErr(err, "decision on bid %s", d.BidID)
}

func (s *Storage) GetBidDecisions(ctx context.Context, bidID uuid.UUID) ([]models.BidDecision, error) {
	decisions := []models.BidDecision{}
	query := `
        SELECT id, bid_id, employee_id, decision, created_at
        FROM bid_decision WHERE bid_id = ? ORDER BY created_at ASC, id ASC`
	if err := s.selectAll(ctx, &decisions, query, bidID); err != nil {
		return nil, mapErr(err, "decisions on bid %s", bidID)
	}
	return decisions, nil
}

func (s *Storage) BidVersions() versioned.Backend[models.BidContent] {
	return bidVersions{s: s}
}

type bidVersions struct {
	s *Storage
}

type bidVersionRow struct {
	ID      uuid.UUID `db:"id"`
	BidID   uuid.UUID `db:"bid_id"`
	Version int       `db:"version"`
	models.BidContent
}

func (r bidVersionRow) toVersion() versioned.Version[models.BidContent] {
	return versioned.Version[models.BidContent]{
		ID:       r.ID,
		EntityID: r.BidID,
		Number:   r.Version,
		Content:  r.BidContent,
	}
}

const bidVersionColumns = `id, bid_id, version, name, description`

func (b bidVersions) EntityExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int
	if err := b.s.get(ctx, &count, `SELECT COUNT(1) FROM bid WHERE id = ?`, id); err != nil {
		return false, mapErr(err, "bid %s", id)
	}
	return count > 0, nil
}

func (b bidVersions) LatestVersion(ctx context.Context, id uuid.UUID) (versioned.Version[models.BidContent], error) {
	var row bidVersionRow
	query := `SELECT ` + bidVersionColumns + ` FROM bid_version WHERE bid_id = ? ORDER BY version DESC LIMIT 1`
	if err := b.s.get(ctx, &row, query, id); err != nil {
		return versioned.Version[models.BidContent]{}, mapErr(err, "versions of bid %s", id)
	}
	return row.toVersion(), nil
}

func (b bidVersions) GetVersion(ctx context.Context, id uuid.UUID, number int) (versioned.Version[models.BidContent], error) {
	var row bidVersionRow
	query := `SELECT ` + bidVersionColumns + ` FROM bid_version WHERE bid_id = ? AND version = ?`
	if err := b.s.get(ctx, &row, query, id, number); err != nil {
		return versioned.Version[models.BidContent]{}, mapErr(err, "version %d of bid %s", number, id)
	}
	return row.toVersion(), nil
}

func (b bidVersions) InsertVersion(ctx context.Context, v versioned.Version[models.BidContent]) error {
	query := `
        INSERT INTO bid_version (id, bid_id, version, name, description, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`
	_, err := b.s.exec(ctx, query, v.ID, v.EntityID, v.Number, v.Content.Name, v.Content.Description, now())
	return mapErr(err, "version %d of bid %s", v.Number, v.EntityID)
}

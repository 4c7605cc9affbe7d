package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type Responder struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	ContactInfo   string    `json:"contactInfo"`
	Department    string    `json:"department,omitempty"`
	IsAvailable   bool      `json:"isAvailable"`
	TotalResolved int64     `json:"totalResolved"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ResponderDetail adds the per-responder workload numbers used by the
// responder dashboard: logged actions, assigned reports, and the share of
// assigned reports that reached Resolved.
type ResponderDetail struct {
	Responder
	ActionCount      int `json:"actionCount"`
	AssignedReports  int `json:"assignedReports"`
	PerformanceScore int `json:"performanceScore"`
}

type RespondersStore interface {
	CreateResponder(ctx context.Context, responder *Responder) (int64, error)
	GetResponder(ctx context.Context, id int64) (*Responder, error)
	GetResponderDetail(ctx context.Context, id int64) (*ResponderDetail, error)
	ListResponders(ctx context.Context) ([]ResponderDetail, error)
}

type respondersStore struct {
	db *sql.DB
}

func NewRespondersStore(db *sql.DB) RespondersStore {
	return &respondersStore{db: db}
}

func (s *respondersStore) CreateResponder(ctx context.Context, responder *Responder) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO responders(name, role, contact_info, department, is_available, total_resolved, created_at)
		VALUES(?,?,?,?,?,0,?)`,
		strings.TrimSpace(responder.Name), strings.TrimSpace(responder.Role), strings.TrimSpace(responder.ContactInfo), strings.TrimSpace(responder.Department), boolToInt(responder.IsAvailable), now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	responder.ID = id
	responder.CreatedAt = now
	responder.TotalResolved = 0
	return id, nil
}

func (s *respondersStore) GetResponder(ctx context.Context, id int64) (*Responder, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, role, contact_info, department, is_available, total_resolved, created_at
		FROM responders WHERE id=?`, id)
	var r Responder
	var avail int
	if err := row.Scan(&r.ID, &r.Name, &r.Role, &r.ContactInfo, &r.Department, &avail, &r.TotalResolved, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	r.IsAvailable = avail == 1
	return &r, nil
}

const responderDetailQuery = `
	SELECT
		r.id, r.name, r.role, r.contact_info, r.department, r.is_available, r.total_resolved, r.created_at,
		(SELECT COUNT(*) FROM actions a WHERE a.responder_id = r.id),
		(SELECT COUNT(*) FROM reports rep WHERE rep.responder_id = r.id),
		(SELECT COUNT(*) FROM reports rep WHERE rep.responder_id = r.id AND rep.status = 'Resolved')
	FROM responders r`

func (s *respondersStore) GetResponderDetail(ctx context.Context, id int64) (*ResponderDetail, error) {
	row := s.db.QueryRowContext(ctx, responderDetailQuery+` WHERE r.id=?`, id)
	detail, err := scanResponderDetail(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return detail, nil
}

func (s *respondersStore) ListResponders(ctx context.Context) ([]ResponderDetail, error) {
	rows, err := s.db.QueryContext(ctx, responderDetailQuery+` ORDER BY r.name ASC, r.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []ResponderDetail
	for rows.Next() {
		detail, err := scanResponderDetail(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *detail)
	}
	return res, rows.Err()
}

func scanResponderDetail(row rowScanner) (*ResponderDetail, error) {
	var d ResponderDetail
	var avail int
	var resolvedAssigned int
	if err := row.Scan(&d.ID, &d.Name, &d.Role, &d.ContactInfo, &d.Department, &avail, &d.TotalResolved, &d.CreatedAt,
		&d.ActionCount, &d.AssignedReports, &resolvedAssigned); err != nil {
		return nil, err
	}
	d.IsAvailable = avail == 1
	if d.AssignedReports > 0 {
		d.PerformanceScore = int(float64(resolvedAssigned)/float64(d.AssignedReports)*100 + 0.5)
	}
	return &d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

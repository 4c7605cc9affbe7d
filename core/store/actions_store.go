package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type Action struct {
	ID          int64     `json:"id"`
	ReportID    int64     `json:"reportId"`
	ResponderID int64     `json:"responderId"`
	Description string    `json:"description"`
	ActionType  string    `json:"actionType"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ActionDetail struct {
	Action
	ResponderName     string `json:"responderName"`
	ResponderRole     string `json:"responderRole"`
	ResponderContact  string `json:"responderContact,omitempty"`
	ReportDescription string `json:"reportDescription,omitempty"`
	ReportStatus      string `json:"reportStatus,omitempty"`
}

type ActionsStore interface {
	// CreateAction inserts the action and applies the report-side effects
	// atomically: a Pending report moves to In Progress, and an unassigned
	// report gets the acting responder.
	CreateAction(ctx context.Context, action *Action) (*ActionEffects, error)
	GetActionDetail(ctx context.Context, id int64) (*ActionDetail, error)
	ListActions(ctx context.Context) ([]ActionDetail, error)
	ListActionsByReport(ctx context.Context, reportID int64) ([]ActionDetail, error)
}

type actionsStore struct {
	db *sql.DB
}

func NewActionsStore(db *sql.DB) ActionsStore {
	return &actionsStore{db: db}
}

func (s *actionsStore) CreateAction(ctx context.Context, action *Action) (*ActionEffects, error) {
	if strings.TrimSpace(action.ActionType) == "" {
		action.ActionType = "Investigation"
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	report, err := scanReport(tx.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id=?`, action.ReportID))
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if report == nil {
		tx.Rollback()
		return nil, sql.ErrNoRows
	}
	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO actions(report_id, responder_id, description, action_type, created_at)
		VALUES(?,?,?,?,?)`,
		action.ReportID, action.ResponderID, strings.TrimSpace(action.Description), action.ActionType, now)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	id, _ := res.LastInsertId()
	action.ID = id
	action.CreatedAt = now

	effects := &ActionEffects{}
	newStatus := report.Status
	responderID := report.ResponderID
	if report.Status == "Pending" {
		newStatus = "In Progress"
		effects.StatusChanged = true
		if responderID == nil {
			responderID = &action.ResponderID
			effects.ResponderAssigned = true
		}
	} else if responderID == nil {
		responderID = &action.ResponderID
		effects.ResponderAssigned = true
	}
	if effects.StatusChanged || effects.ResponderAssigned {
		if _, err := tx.ExecContext(ctx, `UPDATE reports SET status=?, responder_id=? WHERE id=?`,
			newStatus, nullableID(responderID), action.ReportID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return effects, nil
}

const actionDetailQuery = `
	SELECT
		a.id, a.report_id, a.responder_id, a.description, a.action_type, a.created_at,
		resp.name, resp.role, resp.contact_info,
		rep.description, rep.status
	FROM actions a
	INNER JOIN responders resp ON a.responder_id = resp.id
	INNER JOIN reports rep ON a.report_id = rep.id`

func (s *actionsStore) GetActionDetail(ctx context.Context, id int64) (*ActionDetail, error) {
	row := s.db.QueryRowContext(ctx, actionDetailQuery+` WHERE a.id=?`, id)
	var d ActionDetail
	if err := row.Scan(&d.ID, &d.ReportID, &d.ResponderID, &d.Description, &d.ActionType, &d.CreatedAt,
		&d.ResponderName, &d.ResponderRole, &d.ResponderContact,
		&d.ReportDescription, &d.ReportStatus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (s *actionsStore) ListActions(ctx context.Context) ([]ActionDetail, error) {
	return s.queryActions(ctx, actionDetailQuery+` ORDER BY a.created_at DESC, a.id DESC`)
}

func (s *actionsStore) ListActionsByReport(ctx context.Context, reportID int64) ([]ActionDetail, error) {
	return s.queryActions(ctx, actionDetailQuery+` WHERE a.report_id=? ORDER BY a.created_at DESC, a.id DESC`, reportID)
}

func (s *actionsStore) queryActions(ctx context.Context, query string, args ...any) ([]ActionDetail, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []ActionDetail
	for rows.Next() {
		var d ActionDetail
		if err := rows.Scan(&d.ID, &d.ReportID, &d.ResponderID, &d.Description, &d.ActionType, &d.CreatedAt,
			&d.ResponderName, &d.ResponderRole, &d.ResponderContact,
			&d.ReportDescription, &d.ReportStatus); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

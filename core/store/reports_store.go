package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrConflict marks a write that was rejected because of the row's current
// state (active report delete, lost update).
var ErrConflict = errors.New("conflict")

type Report struct {
	ID          int64      `json:"id"`
	CategoryID  int64      `json:"categoryId"`
	UserID      *int64     `json:"userId,omitempty"`
	Description string     `json:"description"`
	Location    string     `json:"location,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	ResponderID *int64     `json:"responderId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

// ReportDetail is a report row joined with its reference entities. Reporter
// name falls back to "Anonymous" when no user is attached.
type ReportDetail struct {
	Report
	ReporterName       string `json:"reporterName"`
	ReporterDepartment string `json:"reporterDepartment,omitempty"`
	ReporterContact    string `json:"reporterContact,omitempty"`
	CategoryName       string `json:"categoryName"`
	CategoryRole       string `json:"categoryRole"`
	CategoryContact    string `json:"categoryContact"`
	ResponderName      string `json:"responderName,omitempty"`
	ResponderRole      string `json:"responderRole,omitempty"`
	ActionCount        int    `json:"actionCount"`
}

type ReportFilter struct {
	Status     string
	CategoryID int64
	Limit      int
	Offset     int
}

// StatusChange describes the effects applied by UpdateReportStatus.
type StatusChange struct {
	OldStatus         string
	NewStatus         string
	ResolvedNow       bool
	AssignedResponder *int64
}

// ActionEffects describes the report-side effects of logging an action.
type ActionEffects struct {
	StatusChanged     bool
	ResponderAssigned bool
}

type ReportsStore interface {
	CreateReport(ctx context.Context, report *Report) (int64, error)
	GetReport(ctx context.Context, id int64) (*Report, error)
	GetReportDetail(ctx context.Context, id int64) (*ReportDetail, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]ReportDetail, error)
	CountReports(ctx context.Context, filter ReportFilter) (int, error)
	UpdateReportStatus(ctx context.Context, id int64, status string, responderID *int64) (*StatusChange, error)
	DeleteReport(ctx context.Context, id int64) error
}

type reportsStore struct {
	db *sql.DB
}

func NewReportsStore(db *sql.DB) ReportsStore {
	return &reportsStore{db: db}
}

func (s *reportsStore) CreateReport(ctx context.Context, report *Report) (int64, error) {
	if strings.TrimSpace(report.Priority) == "" {
		report.Priority = "Medium"
	}
	if strings.TrimSpace(report.Status) == "" {
		report.Status = "Pending"
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reports(category_id, user_id, description, location, priority, status, responder_id, created_at, resolved_at)
		VALUES(?,?,?,?,?,?,?,?,NULL)`,
		report.CategoryID, nullableID(report.UserID), strings.TrimSpace(report.Description), strings.TrimSpace(report.Location), report.Priority, report.Status, nullableID(report.ResponderID), now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	report.ID = id
	report.CreatedAt = now
	report.ResolvedAt = nil
	return id, nil
}

const reportColumns = `id, category_id, user_id, description, location, priority, status, responder_id, created_at, resolved_at`

func (s *reportsStore) GetReport(ctx context.Context, id int64) (*Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id=?`, id)
	return scanReport(row)
}

const reportDetailQuery = `
	SELECT
		r.id, r.category_id, r.user_id, r.description, r.location, r.priority, r.status, r.responder_id, r.created_at, r.resolved_at,
		COALESCE(u.pseudonym, 'Anonymous'),
		COALESCE(u.campus_dept, ''),
		COALESCE(u.optional_contact, ''),
		c.name, c.role, c.contact_info,
		COALESCE(resp.name, ''),
		COALESCE(resp.role, ''),
		(SELECT COUNT(*) FROM actions a WHERE a.report_id = r.id)
	FROM reports r
	LEFT JOIN users u ON r.user_id = u.id
	INNER JOIN categories c ON r.category_id = c.id
	LEFT JOIN responders resp ON r.responder_id = resp.id`

func (s *reportsStore) GetReportDetail(ctx context.Context, id int64) (*ReportDetail, error) {
	row := s.db.QueryRowContext(ctx, reportDetailQuery+` WHERE r.id=?`, id)
	detail, err := scanReportDetail(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return detail, nil
}

func (s *reportsStore) ListReports(ctx context.Context, filter ReportFilter) ([]ReportDetail, error) {
	query := reportDetailQuery
	clauses, args := reportFilterClauses(filter, "r.")
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY r.created_at DESC, r.id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []ReportDetail
	for rows.Next() {
		detail, err := scanReportDetail(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *detail)
	}
	return res, rows.Err()
}

func (s *reportsStore) CountReports(ctx context.Context, filter ReportFilter) (int, error) {
	query := `SELECT COUNT(*) FROM reports`
	clauses, args := reportFilterClauses(filter, "")
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func reportFilterClauses(filter ReportFilter, prefix string) ([]string, []any) {
	var clauses []string
	var args []any
	if strings.TrimSpace(filter.Status) != "" {
		clauses = append(clauses, prefix+"status=?")
		args = append(args, strings.TrimSpace(filter.Status))
	}
	if filter.CategoryID > 0 {
		clauses = append(clauses, prefix+"category_id=?")
		args = append(args, filter.CategoryID)
	}
	return clauses, args
}

// UpdateReportStatus applies a status transition together with its side
// effects in one transaction: entering Resolved from another state stamps
// resolved_at and bumps the assigned responder's counter; an explicit
// responder id (re)assigns the report.
func (s *reportsStore) UpdateReportStatus(ctx context.Context, id int64, status string, responderID *int64) (*StatusChange, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	current, err := scanReport(tx.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id=?`, id))
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if current == nil {
		tx.Rollback()
		return nil, nil
	}
	change := &StatusChange{OldStatus: current.Status, NewStatus: status}
	assigned := current.ResponderID
	if responderID != nil {
		assigned = responderID
		change.AssignedResponder = responderID
	}
	resolvedNow := status == "Resolved" && current.Status != "Resolved"
	if resolvedNow {
		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `
			UPDATE reports SET status=?, responder_id=?, resolved_at=COALESCE(resolved_at, ?) WHERE id=?`,
			status, nullableID(assigned), now, id); err != nil {
			tx.Rollback()
			return nil, err
		}
		if assigned != nil {
			if _, err := tx.ExecContext(ctx, `UPDATE responders SET total_resolved = total_resolved + 1 WHERE id=?`, *assigned); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
		change.ResolvedNow = true
	} else {
		if _, err := tx.ExecContext(ctx, `UPDATE reports SET status=?, responder_id=? WHERE id=?`,
			status, nullableID(assigned), id); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return change, nil
}

// DeleteReport removes a report and its actions in one transaction. Reports
// that are being worked on (In Progress, Under Review) are rejected with
// ErrConflict.
func (s *reportsStore) DeleteReport(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	current, err := scanReport(tx.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id=?`, id))
	if err != nil {
		tx.Rollback()
		return err
	}
	if current == nil {
		tx.Rollback()
		return sql.ErrNoRows
	}
	if current.Status == "In Progress" || current.Status == "Under Review" {
		tx.Rollback()
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM actions WHERE report_id=?`, id); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id=?`, id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*Report, error) {
	var rep Report
	var userID sql.NullInt64
	var responderID sql.NullInt64
	var resolvedAt sql.NullTime
	if err := row.Scan(&rep.ID, &rep.CategoryID, &userID, &rep.Description, &rep.Location, &rep.Priority, &rep.Status, &responderID, &rep.CreatedAt, &resolvedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if userID.Valid {
		rep.UserID = &userID.Int64
	}
	if responderID.Valid {
		rep.ResponderID = &responderID.Int64
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		rep.ResolvedAt = &t
	}
	return &rep, nil
}

func scanReportDetail(row rowScanner) (*ReportDetail, error) {
	var d ReportDetail
	var userID sql.NullInt64
	var responderID sql.NullInt64
	var resolvedAt sql.NullTime
	if err := row.Scan(
		&d.ID, &d.CategoryID, &userID, &d.Description, &d.Location, &d.Priority, &d.Status, &responderID, &d.CreatedAt, &resolvedAt,
		&d.ReporterName, &d.ReporterDepartment, &d.ReporterContact,
		&d.CategoryName, &d.CategoryRole, &d.CategoryContact,
		&d.ResponderName, &d.ResponderRole,
		&d.ActionCount,
	); err != nil {
		return nil, err
	}
	if userID.Valid {
		d.UserID = &userID.Int64
	}
	if responderID.Valid {
		d.ResponderID = &responderID.Int64
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		d.ResolvedAt = &t
	}
	return &d, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

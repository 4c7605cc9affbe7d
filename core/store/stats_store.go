package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Totals struct {
	TotalReports    int `json:"totalReports"`
	TotalUsers      int `json:"totalUsers"`
	TotalResponders int `json:"totalResponders"`
	TotalActions    int `json:"totalActions"`
	TotalCategories int `json:"totalCategories"`
}

// ReportTiming carries the raw timestamps; the stats service turns them into
// hours so one truncation policy applies everywhere.
type ReportTiming struct {
	ID          int64
	Description string
	Status      string
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}

type CriticalResponder struct {
	Name            string `json:"name"`
	Role            string `json:"role"`
	CriticalReports int    `json:"criticalReports"`
}

type Snapshot struct {
	ID      int64     `json:"id"`
	TakenAt time.Time `json:"takenAt"`
	Payload string    `json:"payload"`
}

type StatsStore interface {
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
	GetTotals(ctx context.Context) (*Totals, error)
	ListReportTimings(ctx context.Context) ([]ReportTiming, error)
	ListCriticalResponders(ctx context.Context) ([]CriticalResponder, error)
	SaveSnapshot(ctx context.Context, takenAt time.Time, payload string) (int64, error)
	LatestSnapshot(ctx context.Context) (*Snapshot, error)
}

type statsStore struct {
	db *sql.DB
}

func NewStatsStore(db *sql.DB) StatsStore {
	return &statsStore{db: db}
}

func (s *statsStore) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM reports GROUP BY status ORDER BY COUNT(*) DESC, status ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		res = append(res, sc)
	}
	return res, rows.Err()
}

// CountByCategory only reports categories that actually have reports.
func (s *statsStore) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, COUNT(r.id)
		FROM categories c
		LEFT JOIN reports r ON c.id = r.category_id
		GROUP BY c.id, c.name
		HAVING COUNT(r.id) > 0
		ORDER BY COUNT(r.id) DESC, c.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []CategoryCount
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Name, &cc.Count); err != nil {
			return nil, err
		}
		res = append(res, cc)
	}
	return res, rows.Err()
}

func (s *statsStore) GetTotals(ctx context.Context) (*Totals, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM reports),
			(SELECT COUNT(*) FROM users WHERE is_active = 1),
			(SELECT COUNT(*) FROM responders WHERE is_available = 1),
			(SELECT COUNT(*) FROM actions),
			(SELECT COUNT(*) FROM categories)`)
	var t Totals
	if err := row.Scan(&t.TotalReports, &t.TotalUsers, &t.TotalResponders, &t.TotalActions, &t.TotalCategories); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *statsStore) ListReportTimings(ctx context.Context) ([]ReportTiming, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, status, created_at, resolved_at FROM reports ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []ReportTiming
	for rows.Next() {
		var rt ReportTiming
		var resolvedAt sql.NullTime
		if err := rows.Scan(&rt.ID, &rt.Description, &rt.Status, &rt.CreatedAt, &resolvedAt); err != nil {
			return nil, err
		}
		if resolvedAt.Valid {
			t := resolvedAt.Time
			rt.ResolvedAt = &t
		}
		res = append(res, rt)
	}
	return res, rows.Err()
}

func (s *statsStore) ListCriticalResponders(ctx context.Context) ([]CriticalResponder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			resp.name,
			resp.role,
			(SELECT COUNT(*) FROM reports WHERE responder_id = resp.id AND priority = 'Critical')
		FROM responders resp
		WHERE resp.id IN (
			SELECT DISTINCT responder_id FROM reports
			WHERE priority = 'Critical' AND responder_id IS NOT NULL
		)
		ORDER BY 3 DESC, resp.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []CriticalResponder
	for rows.Next() {
		var cr CriticalResponder
		if err := rows.Scan(&cr.Name, &cr.Role, &cr.CriticalReports); err != nil {
			return nil, err
		}
		res = append(res, cr)
	}
	return res, rows.Err()
}

func (s *statsStore) SaveSnapshot(ctx context.Context, takenAt time.Time, payload string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO stats_snapshots(taken_at, payload_json) VALUES(?,?)`, takenAt.UTC(), payload)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (s *statsStore) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, taken_at, payload_json FROM stats_snapshots ORDER BY id DESC LIMIT 1`)
	var snap Snapshot
	if err := row.Scan(&snap.ID, &snap.TakenAt, &snap.Payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}

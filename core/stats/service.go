package stats

import (
	"context"
	"time"

	"reportdesk/core/store"
)

// Bundle is the aggregate view served by the statistics endpoint and
// persisted by the snapshot job. Everything is recomputed on demand.
type Bundle struct {
	Totals                   store.Totals              `json:"totals"`
	ByStatus                 []store.StatusCount       `json:"byStatus"`
	ByCategory               []store.CategoryCount     `json:"byCategory"`
	PendingReports           int                       `json:"pendingReports"`
	InProgressReports        int                       `json:"inProgressReports"`
	ResolvedReports          int                       `json:"resolvedReports"`
	ResolutionRate           int                       `json:"resolutionRate"`
	AverageResponseHours     int64                     `json:"averageResponseHours"`
	AboveAverageResponseTime []SlowReport              `json:"aboveAverageResponseTime"`
	CriticalResponders       []store.CriticalResponder `json:"criticalResponders"`
}

type SlowReport struct {
	ID                int64  `json:"id"`
	Description       string `json:"description"`
	Status            string `json:"status"`
	ResponseTimeHours int64  `json:"responseTimeHours"`
}

type Service struct {
	store store.StatsStore
}

func NewService(st store.StatsStore) *Service {
	return &Service{store: st}
}

// slowReportLimit caps the above-average list, matching the dashboard view.
const slowReportLimit = 5

func (s *Service) Compute(ctx context.Context) (*Bundle, error) {
	return s.ComputeAt(ctx, time.Now().UTC())
}

// ComputeAt builds the full bundle relative to the given clock. The clock is
// a parameter so unresolved response times are deterministic in tests.
func (s *Service) ComputeAt(ctx context.Context, now time.Time) (*Bundle, error) {
	totals, err := s.store.GetTotals(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.store.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	timings, err := s.store.ListReportTimings(ctx)
	if err != nil {
		return nil, err
	}
	critical, err := s.store.ListCriticalResponders(ctx)
	if err != nil {
		return nil, err
	}
	bundle := &Bundle{
		Totals:             *totals,
		ByStatus:           byStatus,
		ByCategory:         byCategory,
		CriticalResponders: critical,
	}
	for _, sc := range byStatus {
		switch sc.Status {
		case "Pending":
			bundle.PendingReports = sc.Count
		case "In Progress":
			bundle.InProgressReports = sc.Count
		case "Resolved":
			bundle.ResolvedReports = sc.Count
		}
	}
	bundle.ResolutionRate = ResolutionRate(bundle.ResolvedReports, totals.TotalReports)
	avg, slow := slowReports(timings, now)
	bundle.AverageResponseHours = avg
	bundle.AboveAverageResponseTime = slow
	return bundle, nil
}

// ResolutionRate is the resolved share as an integer percentage, 0 when
// there is nothing to divide by.
func ResolutionRate(resolved, total int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(resolved)/float64(total)*100 + 0.5)
}

// ResponseTimeHours is the whole-hour gap between creation and resolution,
// or the given clock for unresolved reports. Truncation, not rounding, is
// the policy everywhere.
func ResponseTimeHours(createdAt time.Time, resolvedAt *time.Time, now time.Time) int64 {
	end := now
	if resolvedAt != nil {
		end = *resolvedAt
	}
	d := end.Sub(createdAt)
	if d < 0 {
		return 0
	}
	return int64(d / time.Hour)
}

func slowReports(timings []store.ReportTiming, now time.Time) (int64, []SlowReport) {
	if len(timings) == 0 {
		return 0, nil
	}
	hours := make([]int64, len(timings))
	var sum int64
	for i, rt := range timings {
		hours[i] = ResponseTimeHours(rt.CreatedAt, rt.ResolvedAt, now)
		sum += hours[i]
	}
	avg := sum / int64(len(timings))
	var slow []SlowReport
	for i, rt := range timings {
		if hours[i] > avg {
			slow = append(slow, SlowReport{
				ID:                rt.ID,
				Description:       rt.Description,
				Status:            rt.Status,
				ResponseTimeHours: hours[i],
			})
		}
	}
	// Worst offenders first, capped for the dashboard.
	for i := 0; i < len(slow); i++ {
		for j := i + 1; j < len(slow); j++ {
			if slow[j].ResponseTimeHours > slow[i].ResponseTimeHours {
				slow[i], slow[j] = slow[j], slow[i]
			}
		}
	}
	if len(slow) > slowReportLimit {
		slow = slow[:slowReportLimit]
	}
	return avg, slow
}

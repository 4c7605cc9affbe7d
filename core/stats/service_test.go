package stats

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"reportdesk/config"
	"reportdesk/core/store"
	"reportdesk/core/utils"
)

type statsEnv struct {
	svc        *Service
	stats      store.StatsStore
	reports    store.ReportsStore
	responders store.RespondersStore
	categories store.CategoriesStore
}

func setupStatsTest(t *testing.T) (*statsEnv, func()) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.AppConfig{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(dir, "stats.db"),
	}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	statsStore := store.NewStatsStore(db)
	env := &statsEnv{
		svc:        NewService(statsStore),
		stats:      statsStore,
		reports:    store.NewReportsStore(db),
		responders: store.NewRespondersStore(db),
		categories: store.NewCategoriesStore(db),
	}
	return env, func() { _ = db.Close() }
}

func seedCategory(t *testing.T, env *statsEnv, name string) int64 {
	t.Helper()
	id, err := env.categories.CreateCategory(context.Background(), &store.Category{
		Name: name, Role: "Ops", ContactInfo: "ops@campus.edu",
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return id
}

func seedReport(t *testing.T, env *statsEnv, categoryID int64, status, priority string) int64 {
	t.Helper()
	id, err := env.reports.CreateReport(context.Background(), &store.Report{
		CategoryID:  categoryID,
		Description: "seeded",
		Priority:    priority,
		Status:      "Pending",
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	if status != "Pending" {
		if _, err := env.reports.UpdateReportStatus(context.Background(), id, status, nil); err != nil {
			t.Fatalf("set status: %v", err)
		}
	}
	return id
}

func TestCompute_EmptyDatabase(t *testing.T) {
	env, cleanup := setupStatsTest(t)
	defer cleanup()

	bundle, err := env.svc.Compute(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if bundle.Totals.TotalReports != 0 {
		t.Fatalf("total reports = %d, want 0", bundle.Totals.TotalReports)
	}
	if bundle.ResolutionRate != 0 {
		t.Fatalf("resolution rate on empty db = %d, want 0", bundle.ResolutionRate)
	}
	if len(bundle.ByCategory) != 0 {
		t.Fatalf("empty db should have no category rows, got %d", len(bundle.ByCategory))
	}
}

func TestCompute_ResolutionRateAndStatusCounts(t *testing.T) {
	env, cleanup := setupStatsTest(t)
	defer cleanup()

	catID := seedCategory(t, env, "Theft")
	seedReport(t, env, catID, "Pending", "Medium")
	seedReport(t, env, catID, "Resolved", "Medium")
	seedReport(t, env, catID, "Resolved", "High")
	seedReport(t, env, catID, "In Progress", "Low")

	bundle, err := env.svc.Compute(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if bundle.Totals.TotalReports != 4 {
		t.Fatalf("total reports = %d, want 4", bundle.Totals.TotalReports)
	}
	if bundle.ResolvedReports != 2 || bundle.PendingReports != 1 || bundle.InProgressReports != 1 {
		t.Fatalf("status counts wrong: pending=%d inprogress=%d resolved=%d",
			bundle.PendingReports, bundle.InProgressReports, bundle.ResolvedReports)
	}
	if bundle.ResolutionRate != 50 {
		t.Fatalf("resolution rate = %d, want 50", bundle.ResolutionRate)
	}
}

func TestCompute_CategoryCountsSkipEmptyCategories(t *testing.T) {
	env, cleanup := setupStatsTest(t)
	defer cleanup()

	used := seedCategory(t, env, "Vandalism")
	seedCategory(t, env, "Unused")
	seedReport(t, env, used, "Pending", "Medium")

	bundle, err := env.svc.Compute(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(bundle.ByCategory) != 1 {
		t.Fatalf("category rows = %d, want 1", len(bundle.ByCategory))
	}
	if bundle.ByCategory[0].Name != "Vandalism" || bundle.ByCategory[0].Count != 1 {
		t.Fatalf("unexpected category row %+v", bundle.ByCategory[0])
	}
}

func TestCompute_CriticalResponders(t *testing.T) {
	env, cleanup := setupStatsTest(t)
	defer cleanup()

	respID, err := env.responders.CreateResponder(context.Background(), &store.Responder{
		Name: "Ray", Role: "Security", ContactInfo: "ray@campus.edu", IsAvailable: true,
	})
	if err != nil {
		t.Fatalf("create responder: %v", err)
	}
	catID := seedCategory(t, env, "Assault")
	reportID := seedReport(t, env, catID, "Pending", "Critical")
	if _, err := env.reports.UpdateReportStatus(context.Background(), reportID, "In Progress", &respID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	bundle, err := env.svc.Compute(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(bundle.CriticalResponders) != 1 {
		t.Fatalf("critical responders = %d, want 1", len(bundle.CriticalResponders))
	}
	if bundle.CriticalResponders[0].Name != "Ray" {
		t.Fatalf("critical responder = %q, want Ray", bundle.CriticalResponders[0].Name)
	}
}

func TestResolutionRate(t *testing.T) {
	if got := ResolutionRate(0, 0); got != 0 {
		t.Fatalf("ResolutionRate(0,0) = %d, want 0", got)
	}
	if got := ResolutionRate(1, 3); got != 33 {
		t.Fatalf("ResolutionRate(1,3) = %d, want 33", got)
	}
	if got := ResolutionRate(2, 3); got != 67 {
		t.Fatalf("ResolutionRate(2,3) = %d, want 67", got)
	}
}

func TestResponseTimeHours_TruncatesAndClamps(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	resolved := created.Add(5*time.Hour + 59*time.Minute)
	if got := ResponseTimeHours(created, &resolved, resolved); got != 5 {
		t.Fatalf("hours = %d, want 5 (truncated)", got)
	}
	now := created.Add(90 * time.Minute)
	if got := ResponseTimeHours(created, nil, now); got != 1 {
		t.Fatalf("unresolved hours = %d, want 1", got)
	}
	if got := ResponseTimeHours(created, nil, created.Add(-time.Hour)); got != 0 {
		t.Fatalf("negative gap should clamp to 0, got %d", got)
	}
}

func TestSlowReports_TopFiveAboveAverage(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	var timings []store.ReportTiming
	// Hours: 1..8. Average is 4 (integer division), so 5..8 are above it.
	for i := 1; i <= 8; i++ {
		created := now.Add(-time.Duration(i) * time.Hour)
		resolved := now
		timings = append(timings, store.ReportTiming{
			ID: int64(i), Description: "r", Status: "Resolved",
			CreatedAt: created, ResolvedAt: &resolved,
		})
	}
	avg, slow := slowReports(timings, now)
	if avg != 4 {
		t.Fatalf("avg = %d, want 4", avg)
	}
	if len(slow) != 4 {
		t.Fatalf("slow reports = %d, want 4", len(slow))
	}
	if slow[0].ResponseTimeHours != 8 {
		t.Fatalf("slowest first, got %d hours", slow[0].ResponseTimeHours)
	}
}

func TestScheduler_RunOncePersistsSnapshot(t *testing.T) {
	env, cleanup := setupStatsTest(t)
	defer cleanup()

	catID := seedCategory(t, env, "Theft")
	seedReport(t, env, catID, "Resolved", "Medium")

	sched := NewScheduler(config.SchedulerConfig{Enabled: true}, env.svc, env.stats, utils.NewLogger())
	if err := sched.RunOnce(context.Background(), time.Now().UTC()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	snap, err := env.stats.LatestSnapshot(context.Background())
	if err != nil {
		t.Fatalf("latest snapshot: %v", err)
	}
	if snap == nil {
		t.Fatalf("snapshot should exist after RunOnce")
	}
	var bundle Bundle
	if err := json.Unmarshal([]byte(snap.Payload), &bundle); err != nil {
		t.Fatalf("snapshot payload: %v", err)
	}
	if bundle.Totals.TotalReports != 1 || bundle.ResolutionRate != 100 {
		t.Fatalf("snapshot bundle wrong: %+v", bundle)
	}
}

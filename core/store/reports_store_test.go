package store

import (
	"context"
	"path/filepath"
	"testing"

	"reportdesk/config"
	"reportdesk/core/utils"
)

func setupStoreTest(t *testing.T) (ReportsStore, RespondersStore, CategoriesStore, func()) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.AppConfig{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(dir, "store.db"),
	}
	logger := utils.NewLogger()
	db, err := NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	if err := ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewReportsStore(db), NewRespondersStore(db), NewCategoriesStore(db), func() { _ = db.Close() }
}

func seedStoreReport(t *testing.T, rs ReportsStore, categoryID int64, status string) int64 {
	t.Helper()
	id, err := rs.CreateReport(context.Background(), &Report{
		CategoryID:  categoryID,
		Description: "seeded",
		Priority:    "Medium",
		Status:      "Pending",
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	if status != "Pending" {
		if _, err := rs.UpdateReportStatus(context.Background(), id, status, nil); err != nil {
			t.Fatalf("set status: %v", err)
		}
	}
	return id
}

func TestListReports_FilterAndCount(t *testing.T) {
	rs, _, cs, cleanup := setupStoreTest(t)
	defer cleanup()

	catID, err := cs.CreateCategory(context.Background(), &Category{
		Name: "Theft", Role: "Security", ContactInfo: "sec@campus.edu",
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	seedStoreReport(t, rs, catID, "Pending")
	seedStoreReport(t, rs, catID, "Resolved")
	seedStoreReport(t, rs, catID, "Resolved")

	filter := ReportFilter{Status: "Resolved"}
	items, err := rs.ListReports(context.Background(), filter)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("filtered list = %d rows, want 2", len(items))
	}
	total, err := rs.CountReports(context.Background(), filter)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 2 {
		t.Fatalf("count = %d, want 2", total)
	}

	paged, err := rs.ListReports(context.Background(), ReportFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("paged list: %v", err)
	}
	if len(paged) != 1 {
		t.Fatalf("paged list = %d rows, want 1", len(paged))
	}
}

func TestDeleteReport_ConflictWhileUnderReview(t *testing.T) {
	rs, _, cs, cleanup := setupStoreTest(t)
	defer cleanup()

	catID, err := cs.CreateCategory(context.Background(), &Category{
		Name: "Vandalism", Role: "Facilities", ContactInfo: "fac@campus.edu",
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	id := seedStoreReport(t, rs, catID, "Under Review")
	if err := rs.DeleteReport(context.Background(), id); err != ErrConflict {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestResponderDetail_PerformanceScore(t *testing.T) {
	rs, resp, cs, cleanup := setupStoreTest(t)
	defer cleanup()

	respID, err := resp.CreateResponder(context.Background(), &Responder{
		Name: "Ray", Role: "Security", ContactInfo: "ray@campus.edu", IsAvailable: true,
	})
	if err != nil {
		t.Fatalf("create responder: %v", err)
	}
	catID, err := cs.CreateCategory(context.Background(), &Category{
		Name: "Theft", Role: "Security", ContactInfo: "sec@campus.edu",
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	// Three assigned reports, one resolved.
	for i, status := range []string{"In Progress", "In Progress", "Resolved"} {
		id := seedStoreReport(t, rs, catID, "Pending")
		if _, err := rs.UpdateReportStatus(context.Background(), id, status, &respID); err != nil {
			t.Fatalf("assign report %d: %v", i, err)
		}
	}

	detail, err := resp.GetResponderDetail(context.Background(), respID)
	if err != nil {
		t.Fatalf("get detail: %v", err)
	}
	if detail.AssignedReports != 3 {
		t.Fatalf("assigned = %d, want 3", detail.AssignedReports)
	}
	if detail.PerformanceScore != 33 {
		t.Fatalf("score = %d, want 33", detail.PerformanceScore)
	}
}

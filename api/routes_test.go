package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"reportdesk/config"
	"reportdesk/core/reports"
	"reportdesk/core/stats"
	"reportdesk/core/store"
	"reportdesk/core/utils"
)

func setupTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.AppConfig{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(dir, "api.db"),
		AppEnv:   "test",
		Reports: config.ReportsConfig{
			DefaultPriority: "Medium",
			ListLimit:       50,
		},
	}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	reportsStore := store.NewReportsStore(db)
	actionsStore := store.NewActionsStore(db)
	respondersStore := store.NewRespondersStore(db)
	categoriesStore := store.NewCategoriesStore(db)
	usersStore := store.NewUsersStore(db)
	audits := store.NewAuditStore(db)
	statsStore := store.NewStatsStore(db)
	svc := reports.NewService(cfg, reportsStore, actionsStore, respondersStore, categoriesStore, usersStore, audits, logger)

	srv := NewServer(cfg, db, ServerDeps{
		Reports:    reportsStore,
		Actions:    actionsStore,
		Responders: respondersStore,
		Categories: categoriesStore,
		Users:      usersStore,
		Audits:     audits,
		Stats:      statsStore,
		ReportsSvc: svc,
		StatsSvc:   stats.NewService(statsStore),
	}, logger)

	ts := httptest.NewServer(srv.Handler())
	return ts, func() {
		ts.Close()
		_ = db.Close()
	}
}

type testEnvelope struct {
	Status  string          `json:"status"`
	Results *int            `json:"results"`
	Total   *int            `json:"total"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func doJSON(t *testing.T, method, url string, body any) (int, testEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var env testEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp.StatusCode, env
}

func createCategory(t *testing.T, base string) int64 {
	t.Helper()
	code, env := doJSON(t, http.MethodPost, base+"/api/categories", map[string]string{
		"name": "Harassment", "role": "Student Affairs", "contactInfo": "affairs@campus.edu",
	})
	if code != http.StatusCreated {
		t.Fatalf("create category status = %d", code)
	}
	var cat struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &cat); err != nil {
		t.Fatalf("category data: %v", err)
	}
	return cat.ID
}

func createReport(t *testing.T, base string, categoryID int64) int64 {
	t.Helper()
	code, env := doJSON(t, http.MethodPost, base+"/api/reports", map[string]any{
		"categoryId":  categoryID,
		"description": "suspicious activity by the gym",
	})
	if code != http.StatusCreated {
		t.Fatalf("create report status = %d (%s)", code, env.Message)
	}
	var rep struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &rep); err != nil {
		t.Fatalf("report data: %v", err)
	}
	return rep.ID
}

func TestHealthEndpoint(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	code, env := doJSON(t, http.MethodGet, ts.URL+"/api/health", nil)
	if code != http.StatusOK {
		t.Fatalf("health status = %d", code)
	}
	if env.Status != "success" {
		t.Fatalf("health envelope status = %q", env.Status)
	}
}

func TestReportLifecycleOverHTTP(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	catID := createCategory(t, ts.URL)
	repID := createReport(t, ts.URL, catID)

	code, env := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/reports/%d", ts.URL, repID), nil)
	if code != http.StatusOK {
		t.Fatalf("get report status = %d", code)
	}
	var detail struct {
		Status            string `json:"status"`
		ResponseTimeHours *int64 `json:"responseTimeHours"`
	}
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("detail data: %v", err)
	}
	if detail.Status != "Pending" {
		t.Fatalf("new report status = %q, want Pending", detail.Status)
	}
	if detail.ResponseTimeHours == nil {
		t.Fatalf("detail must include responseTimeHours")
	}

	code, env = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/reports/%d", ts.URL, repID), map[string]string{
		"status": "Resolved",
	})
	if code != http.StatusOK {
		t.Fatalf("resolve status = %d (%s)", code, env.Message)
	}

	code, env = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/reports/%d", ts.URL, repID), nil)
	if code != http.StatusOK {
		t.Fatalf("delete status = %d (%s)", code, env.Message)
	}
}

func TestUpdateStatus_InvalidStatusListsWhitelist(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	catID := createCategory(t, ts.URL)
	repID := createReport(t, ts.URL, catID)

	code, env := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/reports/%d", ts.URL, repID), map[string]string{
		"status": "Done",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("invalid status code = %d, want 400", code)
	}
	if env.Status != "error" {
		t.Fatalf("envelope status = %q, want error", env.Status)
	}
	for _, want := range []string{"Pending", "In Progress", "Under Review", "Resolved", "Closed"} {
		if !strings.Contains(env.Message, want) {
			t.Fatalf("message %q should list %q", env.Message, want)
		}
	}
}

func TestCreateReport_UnknownCategoryIs404(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	code, env := doJSON(t, http.MethodPost, ts.URL+"/api/reports", map[string]any{
		"categoryId":  999,
		"description": "anything",
	})
	if code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", code)
	}
	if env.Status != "error" {
		t.Fatalf("envelope status = %q, want error", env.Status)
	}
}

func TestCreateReport_MissingDescriptionIs400(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	catID := createCategory(t, ts.URL)
	code, _ := doJSON(t, http.MethodPost, ts.URL+"/api/reports", map[string]any{
		"categoryId": catID,
	})
	if code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", code)
	}
}

func TestDeleteActiveReportIs400(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	catID := createCategory(t, ts.URL)
	repID := createReport(t, ts.URL, catID)

	code, _ := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/reports/%d", ts.URL, repID), map[string]string{
		"status": "In Progress",
	})
	if code != http.StatusOK {
		t.Fatalf("move to In Progress = %d", code)
	}
	code, env := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/reports/%d", ts.URL, repID), nil)
	if code != http.StatusBadRequest {
		t.Fatalf("delete active code = %d, want 400", code)
	}
	if env.Status != "error" {
		t.Fatalf("envelope status = %q, want error", env.Status)
	}
}

func TestListReports_EnvelopeCarriesResultsAndTotal(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	catID := createCategory(t, ts.URL)
	createReport(t, ts.URL, catID)
	createReport(t, ts.URL, catID)
	createReport(t, ts.URL, catID)

	code, env := doJSON(t, http.MethodGet, ts.URL+"/api/reports?limit=2", nil)
	if code != http.StatusOK {
		t.Fatalf("list code = %d", code)
	}
	if env.Results == nil || *env.Results != 2 {
		t.Fatalf("results = %v, want 2", env.Results)
	}
	if env.Total == nil || *env.Total != 3 {
		t.Fatalf("total = %v, want 3", env.Total)
	}
}

func TestReportsByStatusRoute(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	catID := createCategory(t, ts.URL)
	createReport(t, ts.URL, catID)

	code, env := doJSON(t, http.MethodGet, ts.URL+"/api/reports/status/Pending", nil)
	if code != http.StatusOK {
		t.Fatalf("by-status code = %d", code)
	}
	if env.Results == nil || *env.Results != 1 {
		t.Fatalf("results = %v, want 1", env.Results)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	catID := createCategory(t, ts.URL)
	createReport(t, ts.URL, catID)

	code, env := doJSON(t, http.MethodGet, ts.URL+"/api/reports/stats", nil)
	if code != http.StatusOK {
		t.Fatalf("stats code = %d", code)
	}
	var bundle struct {
		Totals struct {
			TotalReports int `json:"totalReports"`
		} `json:"totals"`
		ResolutionRate int `json:"resolutionRate"`
	}
	if err := json.Unmarshal(env.Data, &bundle); err != nil {
		t.Fatalf("bundle data: %v", err)
	}
	if bundle.Totals.TotalReports != 1 || bundle.ResolutionRate != 0 {
		t.Fatalf("bundle = %+v", bundle)
	}
}

func TestActionCreateFlipsPendingReport(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	catID := createCategory(t, ts.URL)
	repID := createReport(t, ts.URL, catID)

	code, env := doJSON(t, http.MethodPost, ts.URL+"/api/responders", map[string]string{
		"name": "Dana", "role": "Counselor", "contactInfo": "dana@campus.edu",
	})
	if code != http.StatusCreated {
		t.Fatalf("create responder = %d", code)
	}
	var responder struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &responder); err != nil {
		t.Fatalf("responder data: %v", err)
	}

	code, _ = doJSON(t, http.MethodPost, ts.URL+"/api/actions", map[string]any{
		"reportId":    repID,
		"responderId": responder.ID,
		"description": "went on site",
	})
	if code != http.StatusCreated {
		t.Fatalf("create action = %d", code)
	}

	code, env = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/reports/%d", ts.URL, repID), nil)
	if code != http.StatusOK {
		t.Fatalf("get report = %d", code)
	}
	var detail struct {
		Status      string `json:"status"`
		ResponderID *int64 `json:"responderId"`
		Actions     []struct {
			ActionType string `json:"actionType"`
		} `json:"actions"`
	}
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("detail data: %v", err)
	}
	if detail.Status != "In Progress" {
		t.Fatalf("status after first action = %q, want In Progress", detail.Status)
	}
	if detail.ResponderID == nil || *detail.ResponderID != responder.ID {
		t.Fatalf("responder should be assigned to the report")
	}
	if len(detail.Actions) != 1 || detail.Actions[0].ActionType != "Investigation" {
		t.Fatalf("nested actions = %+v", detail.Actions)
	}
}

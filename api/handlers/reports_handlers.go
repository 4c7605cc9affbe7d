package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"reportdesk/config"
	"reportdesk/core/reports"
	"reportdesk/core/stats"
	"reportdesk/core/store"
	"reportdesk/core/utils"
)

type ReportsHandler struct {
	cfg      *config.AppConfig
	store    store.ReportsStore
	actions  store.ActionsStore
	svc      *reports.Service
	statsSvc *stats.Service
	logger   *utils.Logger
}

func NewReportsHandler(cfg *config.AppConfig, rs store.ReportsStore, as store.ActionsStore, svc *reports.Service, statsSvc *stats.Service, logger *utils.Logger) *ReportsHandler {
	return &ReportsHandler{cfg: cfg, store: rs, actions: as, svc: svc, statsSvc: statsSvc, logger: logger}
}

type reportDetailDTO struct {
	store.ReportDetail
	ResponseTimeHours int64                `json:"responseTimeHours"`
	Actions           []store.ActionDetail `json:"actions,omitempty"`
}

func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := parseIntDefault(q.Get("limit"), h.cfg.Reports.ListLimit)
	if limit <= 0 {
		limit = h.cfg.Reports.ListLimit
	}
	filter := store.ReportFilter{
		Status:     strings.TrimSpace(q.Get("status")),
		CategoryID: int64(parseIntDefault(q.Get("categoryId"), 0)),
		Limit:      limit,
		Offset:     parseIntDefault(q.Get("offset"), 0),
	}
	items, err := h.store.ListReports(r.Context(), filter)
	if err != nil {
		h.logger.Errorf("list reports: %v", err)
		respondServerError(w)
		return
	}
	total, err := h.store.CountReports(r.Context(), filter)
	if err != nil {
		h.logger.Errorf("count reports: %v", err)
		respondServerError(w)
		return
	}
	if items == nil {
		items = []store.ReportDetail{}
	}
	respondList(w, items, len(items), total)
}

func (h *ReportsHandler) ByStatus(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(pathParams(r)["status"])
	if !h.svc.IsValidStatus(status) {
		respondError(w, http.StatusBadRequest, invalidStatusMessage(h.svc))
		return
	}
	items, err := h.store.ListReports(r.Context(), store.ReportFilter{Status: status})
	if err != nil {
		h.logger.Errorf("list reports by status: %v", err)
		respondServerError(w)
		return
	}
	if items == nil {
		items = []store.ReportDetail{}
	}
	respondList(w, items, len(items), len(items))
}

func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	detail, err := h.store.GetReportDetail(r.Context(), id)
	if err != nil {
		h.logger.Errorf("get report %d: %v", id, err)
		respondServerError(w)
		return
	}
	if detail == nil {
		respondError(w, http.StatusNotFound, "report not found")
		return
	}
	actions, err := h.actions.ListActionsByReport(r.Context(), id)
	if err != nil {
		h.logger.Errorf("list report actions %d: %v", id, err)
		respondServerError(w)
		return
	}
	respondData(w, http.StatusOK, reportDetailDTO{
		ReportDetail:      *detail,
		ResponseTimeHours: stats.ResponseTimeHours(detail.CreatedAt, detail.ResolvedAt, time.Now().UTC()),
		Actions:           actions,
	})
}

func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CategoryID  int64  `json:"categoryId"`
		UserID      *int64 `json:"userId"`
		Description string `json:"description"`
		Location    string `json:"location"`
		Priority    string `json:"priority"`
		IsAnonymous bool   `json:"isAnonymous"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	detail, err := h.svc.CreateReport(r.Context(), reports.CreateReportInput{
		CategoryID:  payload.CategoryID,
		UserID:      payload.UserID,
		Description: payload.Description,
		Location:    payload.Location,
		Priority:    payload.Priority,
		IsAnonymous: payload.IsAnonymous,
	})
	if err != nil {
		switch {
		case errors.Is(err, reports.ErrCategoryNotFound):
			respondError(w, http.StatusNotFound, "category not found")
		case errors.Is(err, reports.ErrDescriptionRequired),
			errors.Is(err, reports.ErrCategoryRequired),
			errors.Is(err, reports.ErrInvalidPriority):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Errorf("create report: %v", err)
			respondServerError(w)
		}
		return
	}
	respondData(w, http.StatusCreated, detail)
}

func (h *ReportsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	var payload struct {
		Status      string `json:"status"`
		ResponderID *int64 `json:"responderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	detail, err := h.svc.UpdateStatus(r.Context(), id, strings.TrimSpace(payload.Status), payload.ResponderID)
	if err != nil {
		switch {
		case errors.Is(err, reports.ErrInvalidStatus):
			respondError(w, http.StatusBadRequest, invalidStatusMessage(h.svc))
		case errors.Is(err, reports.ErrReportNotFound):
			respondError(w, http.StatusNotFound, "report not found")
		case errors.Is(err, reports.ErrResponderNotFound):
			respondError(w, http.StatusNotFound, "responder not found")
		default:
			h.logger.Errorf("update report %d status: %v", id, err)
			respondServerError(w)
		}
		return
	}
	respondData(w, http.StatusOK, detail)
}

func (h *ReportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if err := h.svc.DeleteReport(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, reports.ErrReportNotFound):
			respondError(w, http.StatusNotFound, "report not found")
		case errors.Is(err, reports.ErrActiveReport):
			respondError(w, http.StatusBadRequest, "cannot delete a report that is being worked on")
		default:
			h.logger.Errorf("delete report %d: %v", id, err)
			respondServerError(w)
		}
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: "success", Message: "report deleted"})
}

func (h *ReportsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.statsSvc.Compute(r.Context())
	if err != nil {
		h.logger.Errorf("compute stats: %v", err)
		respondServerError(w)
		return
	}
	respondData(w, http.StatusOK, bundle)
}

func invalidStatusMessage(svc *reports.Service) string {
	return "invalid status, must be one of: " + strings.Join(svc.ValidStatuses(), ", ")
}

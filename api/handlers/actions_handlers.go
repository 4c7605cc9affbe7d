package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"reportdesk/core/reports"
	"reportdesk/core/store"
	"reportdesk/core/utils"
)

type ActionsHandler struct {
	store  store.ActionsStore
	svc    *reports.Service
	logger *utils.Logger
}

func NewActionsHandler(as store.ActionsStore, svc *reports.Service, logger *utils.Logger) *ActionsHandler {
	return &ActionsHandler{store: as, svc: svc, logger: logger}
}

func (h *ActionsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListActions(r.Context())
	if err != nil {
		h.logger.Errorf("list actions: %v", err)
		respondServerError(w)
		return
	}
	if items == nil {
		items = []store.ActionDetail{}
	}
	respondList(w, items, len(items), len(items))
}

func (h *ActionsHandler) ListByReport(w http.ResponseWriter, r *http.Request) {
	reportID := pathID(r, "reportId")
	items, err := h.store.ListActionsByReport(r.Context(), reportID)
	if err != nil {
		h.logger.Errorf("list actions for report %d: %v", reportID, err)
		respondServerError(w)
		return
	}
	if items == nil {
		items = []store.ActionDetail{}
	}
	respondList(w, items, len(items), len(items))
}

func (h *ActionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	action, err := h.store.GetActionDetail(r.Context(), id)
	if err != nil {
		h.logger.Errorf("get action %d: %v", id, err)
		respondServerError(w)
		return
	}
	if action == nil {
		respondError(w, http.StatusNotFound, "action not found")
		return
	}
	respondData(w, http.StatusOK, action)
}

func (h *ActionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ReportID    int64  `json:"reportId"`
		ResponderID int64  `json:"responderId"`
		Description string `json:"description"`
		ActionType  string `json:"actionType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	action, err := h.svc.LogAction(r.Context(), reports.LogActionInput{
		ReportID:    payload.ReportID,
		ResponderID: payload.ResponderID,
		Description: payload.Description,
		ActionType:  payload.ActionType,
	})
	if err != nil {
		switch {
		case errors.Is(err, reports.ErrActionFieldsMissing):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, reports.ErrReportNotFound):
			respondError(w, http.StatusNotFound, "report not found")
		case errors.Is(err, reports.ErrResponderNotFound):
			respondError(w, http.StatusNotFound, "responder not found")
		default:
			h.logger.Errorf("create action: %v", err)
			respondServerError(w)
		}
		return
	}
	respondData(w, http.StatusCreated, action)
}

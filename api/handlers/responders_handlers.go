package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"reportdesk/core/store"
	"reportdesk/core/utils"
)

type RespondersHandler struct {
	store  store.RespondersStore
	audits store.AuditStore
	logger *utils.Logger
}

func NewRespondersHandler(rs store.RespondersStore, audits store.AuditStore, logger *utils.Logger) *RespondersHandler {
	return &RespondersHandler{store: rs, audits: audits, logger: logger}
}

func (h *RespondersHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListResponders(r.Context())
	if err != nil {
		h.logger.Errorf("list responders: %v", err)
		respondServerError(w)
		return
	}
	if items == nil {
		items = []store.ResponderDetail{}
	}
	respondList(w, items, len(items), len(items))
}

func (h *RespondersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	responder, err := h.store.GetResponderDetail(r.Context(), id)
	if err != nil {
		h.logger.Errorf("get responder %d: %v", id, err)
		respondServerError(w)
		return
	}
	if responder == nil {
		respondError(w, http.StatusNotFound, "responder not found")
		return
	}
	respondData(w, http.StatusOK, responder)
}

func (h *RespondersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        string `json:"name"`
		Role        string `json:"role"`
		ContactInfo string `json:"contactInfo"`
		Department  string `json:"department"`
		IsAvailable *bool  `json:"isAvailable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(payload.Name)
	role := strings.TrimSpace(payload.Role)
	contact := strings.TrimSpace(payload.ContactInfo)
	if name == "" || role == "" || contact == "" {
		respondError(w, http.StatusBadRequest, "name, role and contactInfo are required")
		return
	}
	responder := &store.Responder{
		Name:        name,
		Role:        role,
		ContactInfo: contact,
		Department:  strings.TrimSpace(payload.Department),
		IsAvailable: true,
	}
	if payload.IsAvailable != nil {
		responder.IsAvailable = *payload.IsAvailable
	}
	id, err := h.store.CreateResponder(r.Context(), responder)
	if err != nil {
		h.logger.Errorf("create responder: %v", err)
		respondServerError(w)
		return
	}
	_ = h.audits.Append(r.Context(), "system", "responder.create", name)
	created, err := h.store.GetResponderDetail(r.Context(), id)
	if err != nil || created == nil {
		h.logger.Errorf("load created responder %d: %v", id, err)
		respondServerError(w)
		return
	}
	respondData(w, http.StatusCreated, created)
}

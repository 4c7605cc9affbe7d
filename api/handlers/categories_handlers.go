package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"reportdesk/core/store"
	"reportdesk/core/utils"
)

type CategoriesHandler struct {
	store  store.CategoriesStore
	audits store.AuditStore
	logger *utils.Logger
}

func NewCategoriesHandler(cs store.CategoriesStore, audits store.AuditStore, logger *utils.Logger) *CategoriesHandler {
	return &CategoriesHandler{store: cs, audits: audits, logger: logger}
}

func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.logger.Errorf("list categories: %v", err)
		respondServerError(w)
		return
	}
	if items == nil {
		items = []store.Category{}
	}
	respondList(w, items, len(items), len(items))
}

func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	category, err := h.store.GetCategory(r.Context(), id)
	if err != nil {
		h.logger.Errorf("get category %d: %v", id, err)
		respondServerError(w)
		return
	}
	if category == nil {
		respondError(w, http.StatusNotFound, "category not found")
		return
	}
	respondData(w, http.StatusOK, category)
}

func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        string `json:"name"`
		Role        string `json:"role"`
		ContactInfo string `json:"contactInfo"`
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
	category := &store.Category{Name: name, Role: role, ContactInfo: contact}
	id, err := h.store.CreateCategory(r.Context(), category)
	if err != nil {
		h.logger.Errorf("create category: %v", err)
		respondServerError(w)
		return
	}
	_ = h.audits.Append(r.Context(), "system", "category.create", name)
	created, err := h.store.GetCategory(r.Context(), id)
	if err != nil || created == nil {
		h.logger.Errorf("load created category %d: %v", id, err)
		respondServerError(w)
		return
	}
	respondData(w, http.StatusCreated, created)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"reportdesk/core/store"
	"reportdesk/core/utils"
)

type UsersHandler struct {
	store  store.UsersStore
	audits store.AuditStore
	logger *utils.Logger
}

func NewUsersHandler(us store.UsersStore, audits store.AuditStore, logger *utils.Logger) *UsersHandler {
	return &UsersHandler{store: us, audits: audits, logger: logger}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.logger.Errorf("list users: %v", err)
		respondServerError(w)
		return
	}
	if items == nil {
		items = []store.User{}
	}
	respondList(w, items, len(items), len(items))
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.logger.Errorf("get user %d: %v", id, err)
		respondServerError(w)
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondData(w, http.StatusOK, user)
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Pseudonym       string `json:"pseudonym"`
		CampusDept      string `json:"campusDept"`
		OptionalContact string `json:"optionalContact"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	pseudonym := strings.TrimSpace(payload.Pseudonym)
	if pseudonym == "" {
		respondError(w, http.StatusBadRequest, "pseudonym is required")
		return
	}
	user := &store.User{
		Pseudonym:       pseudonym,
		CampusDept:      strings.TrimSpace(payload.CampusDept),
		OptionalContact: strings.TrimSpace(payload.OptionalContact),
		IsActive:        true,
	}
	id, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		h.logger.Errorf("create user: %v", err)
		respondServerError(w)
		return
	}
	_ = h.audits.Append(r.Context(), "system", "user.create", pseudonym)
	created, err := h.store.GetUser(r.Context(), id)
	if err != nil || created == nil {
		h.logger.Errorf("load created user %d: %v", id, err)
		respondServerError(w)
		return
	}
	respondData(w, http.StatusCreated, created)
}

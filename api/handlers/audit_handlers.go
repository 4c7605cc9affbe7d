package handlers

import (
	"net/http"

	"reportdesk/core/store"
	"reportdesk/core/utils"
)

type AuditHandler struct {
	store  store.AuditStore
	logger *utils.Logger
}

func NewAuditHandler(as store.AuditStore, logger *utils.Logger) *AuditHandler {
	return &AuditHandler{store: as, logger: logger}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
	items, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.logger.Errorf("list audit entries: %v", err)
		respondServerError(w)
		return
	}
	if items == nil {
		items = []store.AuditEntry{}
	}
	respondList(w, items, len(items), len(items))
}

package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"reportdesk/config"
)

type HealthHandler struct {
	cfg *config.AppConfig
	db  *sql.DB
}

func NewHealthHandler(cfg *config.AppConfig, db *sql.DB) *HealthHandler {
	return &HealthHandler{cfg: cfg, db: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	var probe int
	if err := h.db.QueryRowContext(r.Context(), "SELECT 1").Scan(&probe); err != nil {
		respondError(w, http.StatusInternalServerError, "database unreachable")
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"service":     "reportdesk",
		"environment": h.cfg.AppEnv,
		"database":    h.cfg.DBDriver,
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Index(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]any{
		"service": "reportdesk",
		"message": "incident reporting API",
		"endpoints": []string{
			"/api/health",
			"/api/reports",
			"/api/actions",
			"/api/responders",
			"/api/categories",
			"/api/users",
		},
	})
}

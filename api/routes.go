package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Handler() http.Handler {
	h := s.newRouteHandlers()
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)

	r.MethodFunc(http.MethodGet, "/", h.health.Index)
	r.MethodFunc(http.MethodGet, "/api", h.health.Index)
	r.MethodFunc(http.MethodGet, "/api/health", h.health.Health)

	// Fixed segments before the {id} routes so chi never treats
	// "stats" or "status" as a report id.
	r.MethodFunc(http.MethodGet, "/api/reports/stats", h.reports.Stats)
	r.MethodFunc(http.MethodGet, "/api/reports/status/{status}", h.reports.ByStatus)
	r.MethodFunc(http.MethodGet, "/api/reports", h.reports.List)
	r.MethodFunc(http.MethodPost, "/api/reports", h.reports.Create)
	r.MethodFunc(http.MethodGet, "/api/reports/{id:[0-9]+}", h.reports.Get)
	r.MethodFunc(http.MethodPut, "/api/reports/{id:[0-9]+}", h.reports.UpdateStatus)
	r.MethodFunc(http.MethodDelete, "/api/reports/{id:[0-9]+}", h.reports.Delete)

	r.MethodFunc(http.MethodGet, "/api/actions", h.actions.List)
	r.MethodFunc(http.MethodPost, "/api/actions", h.actions.Create)
	r.MethodFunc(http.MethodGet, "/api/actions/report/{reportId:[0-9]+}", h.actions.ListByReport)
	r.MethodFunc(http.MethodGet, "/api/actions/{id:[0-9]+}", h.actions.Get)

	r.MethodFunc(http.MethodGet, "/api/responders", h.responders.List)
	r.MethodFunc(http.MethodPost, "/api/responders", h.responders.Create)
	r.MethodFunc(http.MethodGet, "/api/responders/{id:[0-9]+}", h.responders.Get)

	r.MethodFunc(http.MethodGet, "/api/categories", h.categories.List)
	r.MethodFunc(http.MethodPost, "/api/categories", h.categories.Create)
	r.MethodFunc(http.MethodGet, "/api/categories/{id:[0-9]+}", h.categories.Get)

	r.MethodFunc(http.MethodGet, "/api/users", h.users.List)
	r.MethodFunc(http.MethodPost, "/api/users", h.users.Create)
	r.MethodFunc(http.MethodGet, "/api/users/{id:[0-9]+}", h.users.Get)

	r.MethodFunc(http.MethodGet, "/api/audit", h.audit.List)

	return r
}

package api

import "reportdesk/api/handlers"

type routeHandlers struct {
	health     *handlers.HealthHandler
	reports    *handlers.ReportsHandler
	actions    *handlers.ActionsHandler
	responders *handlers.RespondersHandler
	categories *handlers.CategoriesHandler
	users      *handlers.UsersHandler
	audit      *handlers.AuditHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	return routeHandlers{
		health:     handlers.NewHealthHandler(s.cfg, s.db),
		reports:    handlers.NewReportsHandler(s.cfg, s.reportsStore, s.actionsStore, s.reportsSvc, s.statsSvc, s.logger),
		actions:    handlers.NewActionsHandler(s.actionsStore, s.reportsSvc, s.logger),
		responders: handlers.NewRespondersHandler(s.respondersStore, s.audits, s.logger),
		categories: handlers.NewCategoriesHandler(s.categoriesStore, s.audits, s.logger),
		users:      handlers.NewUsersHandler(s.usersStore, s.audits, s.logger),
		audit:      handlers.NewAuditHandler(s.audits, s.logger),
	}
}

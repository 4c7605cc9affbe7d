package appbootstrap

import (
	"database/sql"

	"reportdesk/api"
	"reportdesk/config"
	"reportdesk/core/reports"
	"reportdesk/core/stats"
	"reportdesk/core/store"
	"reportdesk/core/utils"
)

// ComposeServer wires the stores, services and background workers into a
// ready-to-start server.
func ComposeServer(cfg *config.AppConfig, db *sql.DB, logger *utils.Logger) *api.Server {
	reportsStore := store.NewReportsStore(db)
	actionsStore := store.NewActionsStore(db)
	respondersStore := store.NewRespondersStore(db)
	categoriesStore := store.NewCategoriesStore(db)
	usersStore := store.NewUsersStore(db)
	audits := store.NewAuditStore(db)
	statsStore := store.NewStatsStore(db)

	reportsSvc := reports.NewService(cfg, reportsStore, actionsStore, respondersStore, categoriesStore, usersStore, audits, logger)
	statsSvc := stats.NewService(statsStore)
	snapshotScheduler := stats.NewScheduler(cfg.Scheduler, statsSvc, statsStore, logger)

	return api.NewServer(cfg, db, api.ServerDeps{
		Reports:    reportsStore,
		Actions:    actionsStore,
		Responders: respondersStore,
		Categories: categoriesStore,
		Users:      usersStore,
		Audits:     audits,
		Stats:      statsStore,
		ReportsSvc: reportsSvc,
		StatsSvc:   statsSvc,
		Workers:    []api.BackgroundWorker{snapshotScheduler},
	}, logger)
}

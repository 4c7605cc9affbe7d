package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"reportdesk/config"
	"reportdesk/core/reports"
	"reportdesk/core/stats"
	"reportdesk/core/store"
	"reportdesk/core/utils"
)

// BackgroundWorker is anything started and stopped with the server, like
// the snapshot scheduler.
type BackgroundWorker interface {
	StartWithContext(ctx context.Context) error
	StopWithContext(ctx context.Context) error
}

type ServerDeps struct {
	Reports    store.ReportsStore
	Actions    store.ActionsStore
	Responders store.RespondersStore
	Categories store.CategoriesStore
	Users      store.UsersStore
	Audits     store.AuditStore
	Stats      store.StatsStore
	ReportsSvc *reports.Service
	StatsSvc   *stats.Service
	Workers    []BackgroundWorker
}

type Server struct {
	cfg    *config.AppConfig
	db     *sql.DB
	logger *utils.Logger

	reportsStore    store.ReportsStore
	actionsStore    store.ActionsStore
	respondersStore store.RespondersStore
	categoriesStore store.CategoriesStore
	usersStore      store.UsersStore
	audits          store.AuditStore
	statsStore      store.StatsStore
	reportsSvc      *reports.Service
	statsSvc        *stats.Service
	workers         []BackgroundWorker

	httpServer *http.Server
}

func NewServer(cfg *config.AppConfig, db *sql.DB, deps ServerDeps, logger *utils.Logger) *Server {
	return &Server{
		cfg:             cfg,
		db:              db,
		logger:          logger,
		reportsStore:    deps.Reports,
		actionsStore:    deps.Actions,
		respondersStore: deps.Responders,
		categoriesStore: deps.Categories,
		usersStore:      deps.Users,
		audits:          deps.Audits,
		statsStore:      deps.Stats,
		reportsSvc:      deps.ReportsSvc,
		statsSvc:        deps.StatsSvc,
		workers:         deps.Workers,
	}
}

func (s *Server) Start(ctx context.Context) error {
	for _, w := range s.workers {
		if err := w.StartWithContext(ctx); err != nil {
			return err
		}
	}
	s.httpServer = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Printf("listening on %s (env=%s, db=%s)", s.cfg.ListenAddr, s.cfg.AppEnv, s.cfg.DBDriver)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	for _, w := range s.workers {
		if err := w.StopWithContext(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

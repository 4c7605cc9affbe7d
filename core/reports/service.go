package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"reportdesk/config"
	"reportdesk/core/store"
	"reportdesk/core/utils"
)

var (
	ErrDescriptionRequired = errors.New("description is required")
	ErrCategoryRequired    = errors.New("category is required")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrReportNotFound      = errors.New("report not found")
	ErrResponderNotFound   = errors.New("responder not found")
	ErrActiveReport        = errors.New("cannot delete active reports")
	ErrActionFieldsMissing = errors.New("reportId, responderId and description are required")
)

// Service owns the report lifecycle rules: creation defaults, the status
// whitelist, resolution side effects, action side effects, and the delete
// guard. Persistence and atomicity live in the stores.
type Service struct {
	cfg        *config.AppConfig
	reports    store.ReportsStore
	actions    store.ActionsStore
	responders store.RespondersStore
	categories store.CategoriesStore
	users      store.UsersStore
	audits     store.AuditStore
	logger     *utils.Logger
}

func NewService(cfg *config.AppConfig, rs store.ReportsStore, as store.ActionsStore, resp store.RespondersStore, cs store.CategoriesStore, us store.UsersStore, audits store.AuditStore, logger *utils.Logger) *Service {
	return &Service{cfg: cfg, reports: rs, actions: as, responders: resp, categories: cs, users: us, audits: audits, logger: logger}
}

func (s *Service) ValidStatuses() []string {
	underReview := true
	if s.cfg != nil {
		underReview = !s.cfg.Reports.DisableUnderReview
	}
	return statusSet(underReview)
}

func (s *Service) IsValidStatus(status string) bool {
	return contains(s.ValidStatuses(), status)
}

type CreateReportInput struct {
	CategoryID  int64
	UserID      *int64
	Description string
	Location    string
	Priority    string
	IsAnonymous bool
}

// CreateReport validates the input and persists a Pending, unassigned
// report. A user id that does not resolve to an existing user silently
// downgrades the report to anonymous.
func (s *Service) CreateReport(ctx context.Context, in CreateReportInput) (*store.ReportDetail, error) {
	if in.CategoryID <= 0 {
		return nil, ErrCategoryRequired
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, ErrDescriptionRequired
	}
	category, err := s.categories.GetCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	priority := strings.TrimSpace(in.Priority)
	if priority == "" {
		priority = s.defaultPriority()
	}
	if !contains(priorities, priority) {
		return nil, ErrInvalidPriority
	}
	var userID *int64
	if !in.IsAnonymous && in.UserID != nil && *in.UserID > 0 {
		user, err := s.users.GetUser(ctx, *in.UserID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			userID = in.UserID
		}
	}
	report := &store.Report{
		CategoryID:  in.CategoryID,
		UserID:      userID,
		Description: in.Description,
		Location:    in.Location,
		Priority:    priority,
		Status:      StatusPending,
	}
	id, err := s.reports.CreateReport(ctx, report)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "report.create", fmt.Sprintf("report #%d (category %q)", id, category.Name))
	return s.reports.GetReportDetail(ctx, id)
}

// UpdateStatus applies a whitelist-checked status change. An accompanying
// responder id is verified and assigned along with the status.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string, responderID *int64) (*store.ReportDetail, error) {
	if !s.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if responderID != nil {
		responder, err := s.responders.GetResponder(ctx, *responderID)
		if err != nil {
			return nil, err
		}
		if responder == nil {
			return nil, ErrResponderNotFound
		}
	}
	change, err := s.reports.UpdateReportStatus(ctx, id, status, responderID)
	if err != nil {
		return nil, err
	}
	if change == nil {
		return nil, ErrReportNotFound
	}
	s.audit(ctx, "report.status.change", fmt.Sprintf("report #%d: %s -> %s", id, change.OldStatus, change.NewStatus))
	if change.ResolvedNow {
		s.audit(ctx, "report.resolved", fmt.Sprintf("report #%d resolved", id))
	}
	return s.reports.GetReportDetail(ctx, id)
}

// DeleteReport removes a report and its actions unless the report is still
// being worked on.
func (s *Service) DeleteReport(ctx context.Context, id int64) error {
	err := s.reports.DeleteReport(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrReportNotFound
	}
	if errors.Is(err, store.ErrConflict) {
		return ErrActiveReport
	}
	if err != nil {
		return err
	}
	s.audit(ctx, "report.delete", fmt.Sprintf("report #%d deleted", id))
	return nil
}

type LogActionInput struct {
	ReportID    int64
	ResponderID int64
	Description string
	ActionType  string
}

// LogAction records responder work against a report. The first action on a
// Pending report moves it to In Progress; an unassigned report takes the
// acting responder either way.
func (s *Service) LogAction(ctx context.Context, in LogActionInput) (*store.ActionDetail, error) {
	if in.ReportID <= 0 || in.ResponderID <= 0 || strings.TrimSpace(in.Description) == "" {
		return nil, ErrActionFieldsMissing
	}
	responder, err := s.responders.GetResponder(ctx, in.ResponderID)
	if err != nil {
		return nil, err
	}
	if responder == nil {
		return nil, ErrResponderNotFound
	}
	action := &store.Action{
		ReportID:    in.ReportID,
		ResponderID: in.ResponderID,
		Description: in.Description,
		ActionType:  strings.TrimSpace(in.ActionType),
	}
	effects, err := s.actions.CreateAction(ctx, action)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "action.create", fmt.Sprintf("action #%d on report #%d by %s", action.ID, in.ReportID, responder.Name))
	if effects.StatusChanged {
		s.audit(ctx, "report.status.change", fmt.Sprintf("report #%d: %s -> %s", in.ReportID, StatusPending, StatusInProgress))
	}
	if effects.ResponderAssigned {
		s.audit(ctx, "report.assign", fmt.Sprintf("report #%d assigned to %s", in.ReportID, responder.Name))
	}
	return s.actions.GetActionDetail(ctx, action.ID)
}

func (s *Service) defaultPriority() string {
	if s.cfg != nil && contains(priorities, s.cfg.Reports.DefaultPriority) {
		return s.cfg.Reports.DefaultPriority
	}
	return PriorityMedium
}

func (s *Service) audit(ctx context.Context, action, details string) {
	if s.audits == nil {
		return
	}
	if err := s.audits.Append(ctx, "system", action, details); err != nil && s.logger != nil {
		s.logger.Errorf("audit append failed (%s): %v", action, err)
	}
}

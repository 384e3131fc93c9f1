package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-leavedesk/internal/domain"
	"go-leavedesk/internal/events"
	leaveerrors "go-leavedesk/internal/leave/errors"
	"go-leavedesk/internal/messaging/kafka"
	"go-leavedesk/internal/shared/apperror"
	"go-leavedesk/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// PolicyCatalog is a local interface; the policy module's service
// satisfies it. Only the active names matter here — the per-type
// annual cap is intentionally not enforced against usage.
type PolicyCatalog interface {
	ActiveNames(ctx context.Context) ([]string, error)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error)
	Decide(ctx context.Context, actor domain.Actor, id string, req DecideLeaveRequest) (LeaveResponse, error)
	Cancel(ctx context.Context, actor domain.Actor, id string) error
	ListMine(ctx context.Context, actor domain.Actor) ([]LeaveResponse, error)
	ListTeam(ctx context.Context, actor domain.Actor) ([]LeaveResponse, error)
	ListAll(ctx context.Context, actor domain.Actor) ([]LeaveResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	catalog PolicyCatalog
	outbox  kafka.OutboxRepository
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, catalog PolicyCatalog, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, catalog, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	catalog PolicyCatalog,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		catalog: catalog,
		outbox:  outboxRepo,
		logger:  l,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("actor_id", actor.ID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	actorUUID, err := uuid.Parse(actor.ID)
	if err != nil {
		return LeaveResponse{}, apperror.ErrUnauthorized
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	if endDate.Before(startDate) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	// Inclusive day count: a single-day request is 1, never 0.
	daysRequested := int(endDate.Sub(startDate).Hours()/24) + 1

	if err := s.checkLeaveType(ctx, req.LeaveType); err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	requester, err := qtx.FindRequesterByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, apperror.ErrUnauthorized
		}
		s.logger.Error("create leave requester lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if daysRequested > requester.LeaveBalance {
		s.logger.Warn("create leave insufficient balance",
			zap.String("actor_id", actor.ID),
			zap.Int("days_requested", daysRequested),
			zap.Int("leave_balance", requester.LeaveBalance),
		)
		return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
	}

	l := &LeaveRequest{
		ID:            uuid.New(),
		RequesterID:   actorUUID,
		LeaveType:     req.LeaveType,
		StartDate:     startDate,
		EndDate:       endDate,
		DaysRequested: daysRequested,
		Reason:        req.Reason,
		Status:        StatusPending,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("requester_id", actor.ID),
		zap.Int("days_requested", daysRequested),
	)
	return mapToResponse(*l), nil
}

func (s *service) Decide(ctx context.Context, actor domain.Actor, id string, req DecideLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("decide leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
		zap.String("outcome", req.Status),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	actorUUID, err := uuid.Parse(actor.ID)
	if err != nil {
		return LeaveResponse{}, apperror.ErrUnauthorized
	}
	if req.Status != StatusApproved && req.Status != StatusRejected {
		return LeaveResponse{}, apperror.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decide leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	// A decision is made exactly once; repeating the same outcome is
	// rejected like any other re-decision.
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrAlreadyDecided
	}

	owner, err := qtx.FindRequesterByID(ctx, l.RequesterID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The owner row is gone; the request is orphaned.
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("decide leave owner lookup failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	var ownerManagerID *string
	if owner.ManagerID != nil {
		v := owner.ManagerID.String()
		ownerManagerID = &v
	}

	if !CanDecide(actor, owner.Role, ownerManagerID) {
		s.logger.Warn("decide leave forbidden",
			zap.String("leave_id", id),
			zap.String("actor_id", actor.ID),
			zap.String("actor_role", actor.Role),
			zap.String("owner_role", owner.Role),
		)
		return LeaveResponse{}, leaveerrors.ErrDecisionForbidden
	}

	l.Status = req.Status
	l.DecidedBy = &actorUUID
	l.Remarks = req.Remarks

	applied, err := qtx.UpdateDecisionIfPending(ctx, l)
	if err != nil {
		s.logger.Error("decide leave persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	if !applied {
		// Lost the race against a concurrent decision.
		return LeaveResponse{}, leaveerrors.ErrAlreadyDecided
	}

	if req.Status == StatusApproved {
		if err := qtx.DebitLeaveBalance(ctx, l.RequesterID.String(), l.DaysRequested); err != nil {
			s.logger.Error("decide leave debit failed",
				zap.String("leave_id", id),
				zap.Error(err),
			)
			return LeaveResponse{}, err
		}
	}

	if err := s.appendDecidedEvent(ctx, tx, l); err != nil {
		s.logger.Error("decide leave outbox append failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decide leave commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	s.logger.Info("decide leave success",
		zap.String("leave_id", id),
		zap.String("status", l.Status),
		zap.String("decided_by", actor.ID),
	)
	return mapToResponse(*l), nil
}

func (s *service) Cancel(ctx context.Context, actor domain.Actor, id string) error {
	s.logger.Debug("cancel leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrLeaveNotFound
		}
		return err
	}

	// Only the owner may cancel; there is no manager/admin override.
	if l.RequesterID.String() != actor.ID {
		return leaveerrors.ErrCancelForbidden
	}

	if l.Status != StatusPending {
		return leaveerrors.ErrNotCancellable
	}

	removed, err := qtx.DeleteIfPending(ctx, id)
	if err != nil {
		s.logger.Error("cancel leave delete failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return err
	}
	if !removed {
		// Decided between our read and the delete.
		return leaveerrors.ErrNotCancellable
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("cancel leave success", zap.String("leave_id", id))
	return nil
}

func (s *service) ListMine(ctx context.Context, actor domain.Actor) ([]LeaveResponse, error) {
	requests, err := s.repo.FindAllByRequester(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) ListTeam(ctx context.Context, actor domain.Actor) ([]LeaveResponse, error) {
	if actor.Role != domain.RoleManager {
		return nil, apperror.ErrForbidden
	}

	requests, err := s.repo.FindAllByManager(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) ListAll(ctx context.Context, actor domain.Actor) ([]LeaveResponse, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	requests, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) checkLeaveType(ctx context.Context, leaveType string) error {
	if s.catalog == nil {
		return nil
	}

	names, err := s.catalog.ActiveNames(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		if name == leaveType {
			return nil
		}
	}
	return leaveerrors.ErrUnknownLeaveType
}

func (s *service) appendDecidedEvent(ctx context.Context, tx *sql.Tx, l *LeaveRequest) error {
	if s.outbox == nil {
		return nil
	}

	event := events.LeaveDecidedEvent{
		EventType:     events.LeaveDecidedEventType,
		LeaveID:       l.ID.String(),
		RequesterID:   l.RequesterID.String(),
		DecidedBy:     l.DecidedBy.String(),
		Status:        l.Status,
		DaysRequested: l.DaysRequested,
		OccurredAt:    time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     events.LeaveDecidedEventType,
		Topic:         events.LeaveDecidedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:            l.ID.String(),
		RequesterID:   l.RequesterID.String(),
		LeaveType:     l.LeaveType,
		StartDate:     l.StartDate.Format("2006-01-02"),
		EndDate:       l.EndDate.Format("2006-01-02"),
		DaysRequested: l.DaysRequested,
		Reason:        l.Reason,
		Status:        l.Status,
		Remarks:       l.Remarks,
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
	}
	if l.DecidedBy != nil {
		v := l.DecidedBy.String()
		resp.DecidedBy = &v
	}
	return resp
}

func mapToListResponse(requests []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(requests))
	for i, l := range requests {
		resp[i] = mapToResponse(l)
	}
	return resp
}

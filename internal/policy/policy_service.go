package policy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	policyerrors "go-leavedesk/internal/policy/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const activePoliciesKey = "policies:active"

//go:generate mockgen -source=policy_service.go -destination=mock/policy_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreatePolicyRequest) (PolicyResponse, error)
	GetAll(ctx context.Context) ([]PolicyResponse, error)
	GetByID(ctx context.Context, id string) (PolicyResponse, error)
	Update(ctx context.Context, id string, patch UpdatePolicyPatch) (PolicyResponse, error)
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]PolicyResponse, error)
	ActiveNames(ctx context.Context) ([]string, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("policy.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("policy.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreatePolicyRequest) (PolicyResponse, error) {
	s.logger.Debug("create policy requested", zap.String("name", req.Name))

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	p := &LeavePolicy{
		ID:             uuid.New(),
		Name:           req.Name,
		Description:    req.Description,
		MaxDaysPerYear: *req.MaxDaysPerYear,
		CarryForward:   req.CarryForward,
		IsActive:       isActive,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("create policy persist failed", zap.Error(err))
		return PolicyResponse{}, mapRepositoryError(err)
	}

	s.invalidateActiveCache(ctx)
	s.logger.Info("create policy success", zap.String("policy_id", p.ID.String()))
	return mapToResponse(*p), nil
}

func (s *service) GetAll(ctx context.Context) ([]PolicyResponse, error) {
	policies, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(policies), nil
}

func (s *service) GetByID(ctx context.Context, id string) (PolicyResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return PolicyResponse{}, policyerrors.ErrInvalidPolicyID
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return PolicyResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*p), nil
}

func (s *service) Update(ctx context.Context, id string, patch UpdatePolicyPatch) (PolicyResponse, error) {
	s.logger.Debug("update policy requested", zap.String("policy_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return PolicyResponse{}, policyerrors.ErrInvalidPolicyID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PolicyResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.FindByID(ctx, id)
	if err != nil {
		return PolicyResponse{}, mapRepositoryError(err)
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.MaxDaysPerYear != nil {
		p.MaxDaysPerYear = *patch.MaxDaysPerYear
	}
	if patch.CarryForward != nil {
		p.CarryForward = *patch.CarryForward
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}

	if err := qtx.Update(ctx, p); err != nil {
		s.logger.Error("update policy persist failed",
			zap.String("policy_id", id),
			zap.Error(err),
		)
		return PolicyResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return PolicyResponse{}, err
	}

	s.invalidateActiveCache(ctx)
	s.logger.Info("update policy success", zap.String("policy_id", id))
	return mapToResponse(*p), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return policyerrors.ErrInvalidPolicyID
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	s.invalidateActiveCache(ctx)
	s.logger.Info("delete policy success", zap.String("policy_id", id))
	return nil
}

// ListActive serves the leave-type catalog. It is read on every leave
// creation, so results are cached in redis and loads are collapsed
// through singleflight.
func (s *service) ListActive(ctx context.Context) ([]PolicyResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, activePoliciesKey).Result(); err == nil {
			var resp []PolicyResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(activePoliciesKey, func() (interface{}, error) {
		policies, err := s.repo.FindAllActive(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(policies)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, activePoliciesKey, jsonData, time.Hour)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]PolicyResponse), nil
}

func (s *service) ActiveNames(ctx context.Context) ([]string, error) {
	policies, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(policies))
	for i, p := range policies {
		names[i] = p.Name
	}
	return names, nil
}

func (s *service) invalidateActiveCache(ctx context.Context) {
	if s.rdb != nil {
		s.rdb.Del(ctx, activePoliciesKey)
	}
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return policyerrors.ErrPolicyNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_policy_name" {
			return policyerrors.ErrPolicyNameExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_policy_name") {
		return policyerrors.ErrPolicyNameExists
	}

	return err
}

func mapToResponse(p LeavePolicy) PolicyResponse {
	return PolicyResponse{
		ID:             p.ID.String(),
		Name:           p.Name,
		Description:    p.Description,
		MaxDaysPerYear: p.MaxDaysPerYear,
		CarryForward:   p.CarryForward,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt.Format("2006-01-02"),
	}
}

func mapToListResponse(policies []LeavePolicy) []PolicyResponse {
	resp := make([]PolicyResponse, len(policies))
	for i, p := range policies {
		resp[i] = mapToResponse(p)
	}
	return resp
}

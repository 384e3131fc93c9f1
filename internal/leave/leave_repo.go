package leave

import (
	"context"
	"database/sql"

	"go-leavedesk/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Requester is the slice of the users table the leave engine needs:
// who owns a request, who they report to, and what balance they hold.
type Requester struct {
	ID           uuid.UUID
	Role         string
	ManagerID    *uuid.UUID
	LeaveBalance int
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindAllByRequester(ctx context.Context, requesterID string) ([]LeaveRequest, error)
	FindAllByManager(ctx context.Context, managerID string) ([]LeaveRequest, error)
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	UpdateDecisionIfPending(ctx context.Context, l *LeaveRequest) (bool, error)
	DeleteIfPending(ctx context.Context, id string) (bool, error)
	FindRequesterByID(ctx context.Context, id string) (*Requester, error)
	DebitLeaveBalance(ctx context.Context, requesterID string, days int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx binds a session to the transaction so every statement issued
// through the returned repository joins it instead of the pool.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	session := r.db.Session(&gorm.Session{Context: r.db.Statement.Context, NewDB: true})
	session.Statement.ConnPool = tx
	return &repository{db: session}
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindAllByRequester(ctx context.Context, requesterID string) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// FindAllByManager returns requests owned by employees currently
// assigned to the manager. Owners promoted past employee level drop
// out of the team scope even if their manager link is still set.
func (r *repository) FindAllByManager(ctx context.Context, managerID string) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = leave_requests.requester_id").
		Where("users.manager_id = ?", managerID).
		Where("users.role = ?", domain.RoleEmployee).
		Order("leave_requests.created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// UpdateDecisionIfPending applies the decision only if the row is still
// pending. Concurrent decisions race on this compare-and-swap; the
// loser sees zero affected rows.
func (r *repository) UpdateDecisionIfPending(ctx context.Context, l *LeaveRequest) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", l.ID).
		Where("status = ?", StatusPending).
		Updates(map[string]any{
			"status":     l.Status,
			"decided_by": l.DecidedBy,
			"remarks":    l.Remarks,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) DeleteIfPending(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("status = ?", StatusPending).
		Delete(&LeaveRequest{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) FindRequesterByID(ctx context.Context, id string) (*Requester, error) {
	var req Requester
	err := r.db.WithContext(ctx).
		Table("users").
		Select("id", "role", "manager_id", "leave_balance").
		Where("id = ?", id).
		Take(&req).Error
	return &req, err
}

// DebitLeaveBalance floors at zero. The create-time sufficiency check
// should make the clamp unreachable, but the balance is never allowed
// to go negative regardless.
func (r *repository) DebitLeaveBalance(ctx context.Context, requesterID string, days int) error {
	return r.db.WithContext(ctx).Exec(
		"UPDATE users SET leave_balance = GREATEST(leave_balance - ?, 0), updated_at = NOW() WHERE id = ?",
		days, requesterID,
	).Error
}

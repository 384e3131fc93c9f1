package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"type:varchar(120);not null"`
	Email    string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_user_email"`
	Password string    `gorm:"type:varchar(255);not null"`

	Role       string `gorm:"type:varchar(20);not null;default:'employee';index:idx_users_role"`
	Department string `gorm:"type:varchar(80);not null;default:'General'"`

	// LeaveBalance is written only by the leave service's debit on
	// approval; everything else treats it as read-only.
	LeaveBalance int        `gorm:"type:int;not null;default:20"`
	IsActive     bool       `gorm:"not null;default:true"`
	ManagerID    *uuid.UUID `gorm:"type:uuid;index:idx_users_manager"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

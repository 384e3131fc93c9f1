package policy

import (
	"time"

	"github.com/google/uuid"
)

type LeavePolicy struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(60);not null;uniqueIndex:uq_policy_name"`
	Description string    `gorm:"type:text"`

	MaxDaysPerYear int  `gorm:"type:int;not null"`
	CarryForward   bool `gorm:"not null;default:false"`
	IsActive       bool `gorm:"not null;default:true;index:idx_policies_active"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

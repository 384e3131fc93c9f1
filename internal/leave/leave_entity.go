package leave

import (
	"time"

	"github.com/google/uuid"
)

type LeaveRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_requester"`

	LeaveType     string    `gorm:"type:varchar(60);not null"`
	StartDate     time.Time `gorm:"type:date;not null"`
	EndDate       time.Time `gorm:"type:date;not null"`
	DaysRequested int       `gorm:"type:int;not null"`
	Reason        string    `gorm:"type:text"`

	Status    string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_leave_requests_status"`
	DecidedBy *uuid.UUID `gorm:"type:uuid"`
	Remarks   string     `gorm:"type:text"`

	CreatedAt time.Time `gorm:"index:idx_leave_requests_created_at,sort:desc"`
	UpdatedAt time.Time
}

package leave

type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason"`
}

// DecideLeaveRequest is the full set of fields a decision may change.
type DecideLeaveRequest struct {
	Status  string `json:"status" binding:"required,oneof=approved rejected"`
	Remarks string `json:"remarks"`
}

type LeaveResponse struct {
	ID            string  `json:"id"`
	RequesterID   string  `json:"requester_id"`
	LeaveType     string  `json:"leave_type"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	DaysRequested int     `json:"days_requested"`
	Reason        string  `json:"reason"`
	Status        string  `json:"status"`
	DecidedBy     *string `json:"decided_by,omitempty"`
	Remarks       string  `json:"remarks,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

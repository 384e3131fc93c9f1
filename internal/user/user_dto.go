package user

type CreateUserRequest struct {
	Name         string  `json:"name" binding:"required"`
	Email        string  `json:"email" binding:"required,email"`
	Password     string  `json:"password" binding:"required,min=6"`
	Role         string  `json:"role" binding:"omitempty,oneof=admin manager employee"`
	Department   string  `json:"department"`
	LeaveBalance *int    `json:"leave_balance" binding:"omitempty,gte=0"`
	ManagerID    *string `json:"manager_id" binding:"omitempty,uuid"`
}

// UpdateUserPatch lists exactly the fields an admin may change; a nil
// field is left untouched. No generic presence-checked payloads.
type UpdateUserPatch struct {
	Name         *string `json:"name"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Role         *string `json:"role" binding:"omitempty,oneof=admin manager employee"`
	Department   *string `json:"department"`
	LeaveBalance *int    `json:"leave_balance" binding:"omitempty,gte=0"`
	IsActive     *bool   `json:"is_active"`
	ManagerID    *string `json:"manager_id" binding:"omitempty,uuid"`
}

type UserResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	Department   string  `json:"department"`
	LeaveBalance int     `json:"leave_balance"`
	IsActive     bool    `json:"is_active"`
	ManagerID    *string `json:"manager_id,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

package policy

type CreatePolicyRequest struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	MaxDaysPerYear *int   `json:"max_days_per_year" binding:"required,gte=0"`
	CarryForward   bool   `json:"carry_forward"`
	IsActive       *bool  `json:"is_active"`
}

// UpdatePolicyPatch lists exactly the fields an admin may change; a nil
// field is left untouched.
type UpdatePolicyPatch struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	MaxDaysPerYear *int    `json:"max_days_per_year" binding:"omitempty,gte=0"`
	CarryForward   *bool   `json:"carry_forward"`
	IsActive       *bool   `json:"is_active"`
}

type PolicyResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	MaxDaysPerYear int    `json:"max_days_per_year"`
	CarryForward   bool   `json:"carry_forward"`
	IsActive       bool   `json:"is_active"`
	CreatedAt      string `json:"created_at"`
}

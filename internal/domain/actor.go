package domain

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Actor is the authenticated caller threaded explicitly into every
// service call. It is resolved from the user directory on each request;
// services never reach for ambient session state.
type Actor struct {
	ID       string
	Role     string
	IsActive bool
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	default:
		return false
	}
}

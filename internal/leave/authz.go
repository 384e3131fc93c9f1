package leave

import "go-leavedesk/internal/domain"

// CanDecide is the single authorization seam for decisions. It is a
// pure function over (caller role, owner role, owner's manager) and is
// written as an explicit match over every role combination so that no
// pairing is decided by accident.
//
// admin decides anything, including other admins' and managers'
// requests. A manager decides only requests owned by an employee
// assigned to them; peers, admins and other managers' reports are out.
// Employees never decide, not even their own.
func CanDecide(caller domain.Actor, ownerRole string, ownerManagerID *string) bool {
	switch caller.Role {
	case domain.RoleAdmin:
		switch ownerRole {
		case domain.RoleAdmin, domain.RoleManager, domain.RoleEmployee:
			return true
		}
		return false

	case domain.RoleManager:
		switch ownerRole {
		case domain.RoleEmployee:
			return ownerManagerID != nil && *ownerManagerID == caller.ID
		case domain.RoleAdmin, domain.RoleManager:
			return false
		}
		return false

	case domain.RoleEmployee:
		switch ownerRole {
		case domain.RoleAdmin, domain.RoleManager, domain.RoleEmployee:
			return false
		}
		return false
	}

	return false
}

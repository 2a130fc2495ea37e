// Package access decides whether a caller may perform a mutation.
package access

import (
	"fmt"

	"github.com/existflow/sprintplan/internal/model"
)

// Capability is a class of mutation guarded by role
type Capability int

const (
	// ManageAllocations covers creating, editing and deleting allocations
	// and editing projects
	ManageAllocations Capability = iota
	// EditEmployee covers editing an employee profile
	EditEmployee
)

func (c Capability) String() string {
	switch c {
	case ManageAllocations:
		return "manage allocations"
	case EditEmployee:
		return "edit employee"
	default:
		return "unknown"
	}
}

// Caller is the identity on whose behalf the engine acts
type Caller struct {
	EmployeeID string     `json:"employee_id"`
	Role       model.Role `json:"role"`
	IsAdmin    bool       `json:"is_admin"`
}

// CallerFor builds a Caller from an employee record
func CallerFor(e model.Employee) Caller {
	return Caller{EmployeeID: e.ID, Role: e.Role, IsAdmin: e.IsAdmin}
}

// managerRoles may manage allocations and edit any employee
var managerRoles = map[model.Role]bool{
	model.RoleManager:                 true,
	model.RoleProductManager:          true,
	model.RoleProductOwner:            true,
	model.RoleTechnicalProjectManager: true,
}

// Decision is the outcome of a capability check
type Decision struct {
	Allowed bool
	Reason  string
	// Self is set when the only grant is editing one's own profile
	Self bool
}

// Check decides whether caller holds capability. target is the employee
// being edited for EditEmployee and ignored otherwise.
func Check(caller Caller, capability Capability, target string) Decision {
	if caller.IsAdmin {
		return Decision{Allowed: true, Reason: "admin"}
	}
	if managerRoles[caller.Role] {
		return Decision{Allowed: true, Reason: string(caller.Role)}
	}
	if capability == EditEmployee && caller.EmployeeID != "" && caller.EmployeeID == target {
		return Decision{Allowed: true, Reason: "own profile", Self: true}
	}
	if caller.EmployeeID == "" {
		return Decision{Reason: "no caller identity"}
	}
	return Decision{Reason: fmt.Sprintf("role %q may not %s", caller.Role, capability)}
}

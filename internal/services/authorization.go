package services

import "github.com/yukikurage/pto-approval-api/internal/models"

// Action is something an actor can do to a PTO request
type Action string

const (
	ActionDecide Action = "decide"
	ActionCancel Action = "cancel"
)

// Gate decides whether an actor may act on a request
type Gate interface {
	CanAct(actor *models.User, request *models.PTORequest, action Action) bool
}

// RoleGate is the role-based policy shared by admins, managers and approvers.
//
// It only reads relations that the caller preloaded: request.User for the
// owner, and actor.ApprovedDepartments for approvers. Missing relationship
// data means the actor cannot act.
type RoleGate struct{}

// NewRoleGate creates the default authorization policy
func NewRoleGate() *RoleGate {
	return &RoleGate{}
}

// CanAct implements Gate
func (g *RoleGate) CanAct(actor *models.User, request *models.PTORequest, action Action) bool {
	if actor == nil || request == nil {
		return false
	}

	switch action {
	case ActionCancel:
		return request.UserID == actor.ID
	case ActionDecide:
		return g.canDecide(actor, request)
	default:
		return false
	}
}

func (g *RoleGate) canDecide(actor *models.User, request *models.PTORequest) bool {
	owner := request.User
	if owner.ID == 0 || owner.ID != request.UserID {
		return false
	}

	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return owner.ManagerID != nil && *owner.ManagerID == actor.ID
	case models.RoleApprover:
		if owner.DepartmentID == nil {
			return false
		}
		for _, department := range actor.ApprovedDepartments {
			if department.ID == *owner.DepartmentID && department.ApproverID != nil && *department.ApproverID == actor.ID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

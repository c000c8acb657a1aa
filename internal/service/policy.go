package service

import (
	"github.com/TheYates/bernat-medical-sub000/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID    uuid.UUID
	Role      string
	IPAddress string
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// InitialStatusPolicy decides the status a new restock line starts in for a
// requester with the given role.
type InitialStatusPolicy func(role string) model.RestockStatus

// DecideInitialStatus auto-approves restocks submitted by admins; every other
// role waits for an admin decision.
func DecideInitialStatus(role string) model.RestockStatus {
	if role == model.RoleAdmin {
		return model.RestockApproved
	}
	return model.RestockPending
}

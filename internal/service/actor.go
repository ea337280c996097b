package service

import "github.com/google/uuid"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// CanAccess reports whether the actor may act on a resource owned by ownerID.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.IsAdmin || (a.UserID != uuid.Nil && a.UserID == ownerID)
}

func authorize(actor Actor, ownerID uuid.UUID) error {
	if !actor.CanAccess(ownerID) {
		return ErrForbidden
	}
	return nil
}

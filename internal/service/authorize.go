package service

import (
	"github.com/pawws/pawws/internal/model"
)

// Authorize returns ErrForbidden unless actor is an active user holding role.
func Authorize(actor *model.User, role model.Role) error {
	if !actor.HasRole(role) {
		return ErrForbidden
	}
	return nil
}

package domain

import "errors"

type (
	RoomID string
	Role   string
)

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

var ErrInvalidRole = errors.New("invalid role")

// ParseRole accepts only the two known roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleStudent:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

// ReadyEvent is the announcement other room members receive when r joins.
func (r Role) ReadyEvent() string {
	return string(r) + "-ready"
}

package core

import "github.com/dkeye/LiveSession/internal/domain"

// Member is a connection admitted to a room under a role.
// This is what a room stores and fans out to.
type Member struct {
	ID     ConnID
	Role   domain.Role
	Signal SignalConnection
}

package core

import (
	"errors"

	"github.com/dkeye/LiveSession/internal/domain"
)

var (
	ErrRoleConflict = errors.New("role already taken in room")
	ErrNotInRoom    = errors.New("connection is not a member of room")
)

type RoomState int

const (
	RoomEmpty RoomState = iota
	RoomAwaitingPeer
	RoomPaired
)

func (s RoomState) String() string {
	switch s {
	case RoomEmpty:
		return "empty"
	case RoomAwaitingPeer:
		return "awaiting_peer"
	case RoomPaired:
		return "paired"
	default:
		return "unknown"
	}
}

// room holds at most one admin and one student.
type room struct {
	id      domain.RoomID
	admin   *Member
	student *Member
}

func (r *room) slot(role domain.Role) **Member {
	if role == domain.RoleAdmin {
		return &r.admin
	}
	return &r.student
}

func (r *room) state() RoomState {
	switch {
	case r.admin != nil && r.student != nil:
		return RoomPaired
	case r.admin != nil || r.student != nil:
		return RoomAwaitingPeer
	default:
		return RoomEmpty
	}
}

// waiting reports the role present while the room awaits its peer.
func (r *room) waiting() (domain.Role, bool) {
	switch {
	case r.state() != RoomAwaitingPeer:
		return "", false
	case r.admin != nil:
		return domain.RoleAdmin, true
	default:
		return domain.RoleStudent, true
	}
}

func (r *room) add(m Member) error {
	s := r.slot(m.Role)
	if *s != nil && (*s).ID != m.ID {
		return ErrRoleConflict
	}
	*s = &m
	return nil
}

func (r *room) remove(id ConnID) (Member, bool) {
	for _, s := range []**Member{&r.admin, &r.student} {
		if *s != nil && (*s).ID == id {
			m := **s
			*s = nil
			return m, true
		}
	}
	return Member{}, false
}

func (r *room) has(id ConnID) bool {
	return (r.admin != nil && r.admin.ID == id) || (r.student != nil && r.student.ID == id)
}

// others returns members except id, admin first.
func (r *room) others(id ConnID) []Member {
	out := make([]Member, 0, 2)
	for _, m := range []*Member{r.admin, r.student} {
		if m != nil && m.ID != id {
			out = append(out, *m)
		}
	}
	return out
}

package core

import (
	"errors"

	"github.com/dkeye/LiveSession/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrEmptyRoom = errors.New("room id empty")

// RoomInfo is a read-only view of a room for APIs (no transport fields).
type RoomInfo struct {
	ID    domain.RoomID `json:"id"`
	State string        `json:"state"`
	Roles []domain.Role `json:"roles"`
}

type JoinResult struct {
	// Event is the announcement for Notify ("student-ready" / "admin-ready").
	Event  string
	Notify []Member
	State  RoomState
	// Left is set when the member switched over from another room. A role
	// change within one room needs the other slot free, so nobody is left to tell.
	Left *LeaveResult
}

type LeaveResult struct {
	Room      domain.RoomID
	Member    Member
	Remaining []Member
}

// Tracker maps rooms to their members and connections to their room.
// It is not safe for concurrent use: the hub goroutine owns it.
type Tracker struct {
	rooms  map[domain.RoomID]*room
	byConn map[ConnID]domain.RoomID
}

func NewTracker() *Tracker {
	return &Tracker{
		rooms:  make(map[domain.RoomID]*room),
		byConn: make(map[ConnID]domain.RoomID),
	}
}

// Join admits m to room id. A connection belongs to one room at a time, so a
// join elsewhere leaves the current room first. Joining again with the same
// role is idempotent. An occupied role yields ErrRoleConflict and leaves all
// state untouched.
func (t *Tracker) Join(id domain.RoomID, m Member) (JoinResult, error) {
	if id == "" {
		return JoinResult{}, ErrEmptyRoom
	}
	if _, err := domain.ParseRole(string(m.Role)); err != nil {
		return JoinResult{}, err
	}
	if r, ok := t.rooms[id]; ok {
		if cur := *r.slot(m.Role); cur != nil && cur.ID != m.ID {
			return JoinResult{}, ErrRoleConflict
		}
	}

	var left *LeaveResult
	if cur, ok := t.byConn[m.ID]; ok {
		old, remaining, removed := t.remove(cur, m.ID)
		if removed && cur != id {
			left = &LeaveResult{Room: cur, Member: old, Remaining: remaining}
		}
	}

	r, ok := t.rooms[id]
	if !ok {
		r = &room{id: id}
		t.rooms[id] = r
	}
	if err := r.add(m); err != nil {
		return JoinResult{}, err
	}
	t.byConn[m.ID] = id

	log.Debug().Str("module", "core.tracker").Str("conn", string(m.ID)).Str("room", string(id)).
		Str("role", string(m.Role)).Stringer("state", r.state()).Msg("member joined")
	return JoinResult{
		Event:  m.Role.ReadyEvent(),
		Notify: r.others(m.ID),
		State:  r.state(),
		Left:   left,
	}, nil
}

// Leave removes the connection from whichever room it is in.
func (t *Tracker) Leave(conn ConnID) (LeaveResult, bool) {
	id, ok := t.byConn[conn]
	if !ok {
		return LeaveResult{}, false
	}
	m, remaining, ok := t.remove(id, conn)
	if !ok {
		return LeaveResult{}, false
	}
	log.Debug().Str("module", "core.tracker").Str("conn", string(conn)).Str("room", string(id)).Msg("member left")
	return LeaveResult{Room: id, Member: m, Remaining: remaining}, true
}

func (t *Tracker) remove(id domain.RoomID, conn ConnID) (Member, []Member, bool) {
	delete(t.byConn, conn)
	r, ok := t.rooms[id]
	if !ok {
		return Member{}, nil, false
	}
	m, ok := r.remove(conn)
	if r.state() == RoomEmpty {
		delete(t.rooms, id)
	}
	return m, r.others(conn), ok
}

// MembersOf lists the members of a room.
func (t *Tracker) MembersOf(id domain.RoomID) []Member {
	r, ok := t.rooms[id]
	if !ok {
		return nil
	}
	return r.others("")
}

// Recipients lists the members of room id other than from. from must be a
// member; otherwise ErrNotInRoom.
func (t *Tracker) Recipients(id domain.RoomID, from ConnID) ([]Member, error) {
	r, ok := t.rooms[id]
	if !ok || !r.has(from) {
		return nil, ErrNotInRoom
	}
	return r.others(from), nil
}

func (t *Tracker) RoomOf(conn ConnID) (domain.RoomID, bool) {
	id, ok := t.byConn[conn]
	return id, ok
}

func (t *Tracker) State(id domain.RoomID) RoomState {
	if r, ok := t.rooms[id]; ok {
		return r.state()
	}
	return RoomEmpty
}

// Waiting reports which role holds a room that awaits its peer.
func (t *Tracker) Waiting(id domain.RoomID) (domain.Role, bool) {
	if r, ok := t.rooms[id]; ok {
		return r.waiting()
	}
	return "", false
}

func (t *Tracker) Info(id domain.RoomID) RoomInfo {
	info := RoomInfo{ID: id, State: t.State(id).String(), Roles: []domain.Role{}}
	for _, m := range t.MembersOf(id) {
		info.Roles = append(info.Roles, m.Role)
	}
	return info
}

func (t *Tracker) RoomCount() int { return len(t.rooms) }

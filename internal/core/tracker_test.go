package core

import (
	"errors"
	"testing"

	"github.com/dkeye/LiveSession/internal/domain"
)

type nopConn struct{}

func (nopConn) TrySend(Frame) error { return nil }
func (nopConn) Close()              {}

func member(id string, role domain.Role) Member {
	return Member{ID: ConnID(id), Role: role, Signal: nopConn{}}
}

func ids(ms []Member) []ConnID {
	out := make([]ConnID, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}

func TestJoinAnnouncesToOthers(t *testing.T) {
	tr := NewTracker()

	res, err := tr.Join("r1", member("a", domain.RoleAdmin))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Notify) != 0 || res.Event != "admin-ready" || res.State != RoomAwaitingPeer {
		t.Fatalf("first join = %+v", res)
	}
	if role, ok := tr.Waiting("r1"); !ok || role != domain.RoleAdmin {
		t.Fatalf("waiting = %q %v", role, ok)
	}

	res, err = tr.Join("r1", member("b", domain.RoleStudent))
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(res.Notify); len(got) != 1 || got[0] != "a" {
		t.Fatalf("student join notifies %v, want [a]", got)
	}
	if res.Event != "student-ready" || res.State != RoomPaired {
		t.Fatalf("student join = %+v", res)
	}
}

func TestJoinRoleConflict(t *testing.T) {
	tr := NewTracker()
	if _, err := tr.Join("r1", member("a", domain.RoleAdmin)); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Join("r1", member("a2", domain.RoleAdmin)); !errors.Is(err, ErrRoleConflict) {
		t.Fatalf("err = %v, want ErrRoleConflict", err)
	}
	if _, ok := tr.RoomOf("a2"); ok {
		t.Fatal("rejected connection must not be tracked")
	}
	if got := ids(tr.MembersOf("r1")); len(got) != 1 || got[0] != "a" {
		t.Fatalf("members = %v", got)
	}
}

func TestJoinConflictKeepsCurrentRoom(t *testing.T) {
	tr := NewTracker()
	_, _ = tr.Join("r1", member("a", domain.RoleAdmin))
	_, _ = tr.Join("r2", member("x", domain.RoleAdmin))
	if _, err := tr.Join("r2", member("a", domain.RoleAdmin)); !errors.Is(err, ErrRoleConflict) {
		t.Fatalf("err = %v", err)
	}
	if room, _ := tr.RoomOf("a"); room != "r1" {
		t.Fatalf("a moved to %q after failed join", room)
	}
}

func TestJoinIdempotent(t *testing.T) {
	tr := NewTracker()
	_, _ = tr.Join("r1", member("a", domain.RoleAdmin))
	_, _ = tr.Join("r1", member("b", domain.RoleStudent))
	res, err := tr.Join("r1", member("b", domain.RoleStudent))
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(res.Notify); len(got) != 1 || got[0] != "a" {
		t.Fatalf("rejoin notifies %v", got)
	}
	if n := len(tr.MembersOf("r1")); n != 2 {
		t.Fatalf("members = %d, want 2", n)
	}
}

func TestJoinMovesBetweenRooms(t *testing.T) {
	tr := NewTracker()
	_, _ = tr.Join("r1", member("a", domain.RoleAdmin))
	_, _ = tr.Join("r2", member("a", domain.RoleAdmin))
	if tr.State("r1") != RoomEmpty {
		t.Fatalf("r1 state = %s", tr.State("r1"))
	}
	if room, _ := tr.RoomOf("a"); room != "r2" {
		t.Fatalf("room of a = %q", room)
	}
	if tr.RoomCount() != 1 {
		t.Fatalf("room count = %d", tr.RoomCount())
	}
}

func TestJoinSwitchReportsOldRoom(t *testing.T) {
	tr := NewTracker()
	_, _ = tr.Join("r1", member("a", domain.RoleAdmin))
	_, _ = tr.Join("r1", member("b", domain.RoleStudent))

	res, err := tr.Join("r2", member("b", domain.RoleStudent))
	if err != nil {
		t.Fatal(err)
	}
	if res.Left == nil || res.Left.Room != "r1" || res.Left.Member.Role != domain.RoleStudent {
		t.Fatalf("left = %+v", res.Left)
	}
	if got := ids(res.Left.Remaining); len(got) != 1 || got[0] != "a" {
		t.Fatalf("remaining = %v", got)
	}

	same, _ := tr.Join("r2", member("b", domain.RoleStudent))
	if same.Left != nil {
		t.Fatalf("rejoin of the same room reported a leave: %+v", same.Left)
	}
}

func TestRoleChangeWithinRoom(t *testing.T) {
	tr := NewTracker()
	_, _ = tr.Join("r1", member("a", domain.RoleAdmin))
	_, _ = tr.Join("r1", member("b", domain.RoleStudent))

	// both slots taken: switching role collides with the peer
	if _, err := tr.Join("r1", member("b", domain.RoleAdmin)); !errors.Is(err, ErrRoleConflict) {
		t.Fatalf("err = %v, want ErrRoleConflict", err)
	}

	_, _ = tr.Leave("a")
	res, err := tr.Join("r1", member("b", domain.RoleAdmin))
	if err != nil {
		t.Fatal(err)
	}
	if res.Left != nil || len(res.Notify) != 0 {
		t.Fatalf("lone member role change reported %+v / %v", res.Left, ids(res.Notify))
	}
	if got := tr.Info("r1").Roles; len(got) != 1 || got[0] != domain.RoleAdmin {
		t.Fatalf("roles = %v", got)
	}
}

func TestJoinValidation(t *testing.T) {
	tr := NewTracker()
	if _, err := tr.Join("", member("a", domain.RoleAdmin)); !errors.Is(err, ErrEmptyRoom) {
		t.Fatalf("empty room err = %v", err)
	}
	if _, err := tr.Join("r1", member("a", "viewer")); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("bad role err = %v", err)
	}
}

func TestLeave(t *testing.T) {
	tr := NewTracker()
	_, _ = tr.Join("r1", member("a", domain.RoleAdmin))
	_, _ = tr.Join("r1", member("b", domain.RoleStudent))

	res, ok := tr.Leave("a")
	if !ok {
		t.Fatal("leave failed")
	}
	if res.Room != "r1" || res.Member.Role != domain.RoleAdmin {
		t.Fatalf("leave = %+v", res)
	}
	if got := ids(res.Remaining); len(got) != 1 || got[0] != "b" {
		t.Fatalf("remaining = %v", got)
	}
	if _, ok := tr.Leave("a"); ok {
		t.Fatal("second leave must be a no-op")
	}

	// b alone: no recipients, no error.
	rcpt, err := tr.Recipients("r1", "b")
	if err != nil || len(rcpt) != 0 {
		t.Fatalf("recipients = %v, %v", rcpt, err)
	}

	_, _ = tr.Leave("b")
	if tr.RoomCount() != 0 {
		t.Fatalf("empty room kept: %d", tr.RoomCount())
	}
}

func TestRecipientsRequiresMembership(t *testing.T) {
	tr := NewTracker()
	_, _ = tr.Join("r1", member("a", domain.RoleAdmin))
	_, _ = tr.Join("r2", member("c", domain.RoleStudent))
	if _, err := tr.Recipients("r1", "c"); !errors.Is(err, ErrNotInRoom) {
		t.Fatalf("err = %v, want ErrNotInRoom", err)
	}
	if _, err := tr.Recipients("nope", "a"); !errors.Is(err, ErrNotInRoom) {
		t.Fatalf("err = %v, want ErrNotInRoom", err)
	}
}

func TestInfo(t *testing.T) {
	tr := NewTracker()
	if info := tr.Info("r1"); info.State != "empty" || len(info.Roles) != 0 {
		t.Fatalf("info = %+v", info)
	}
	_, _ = tr.Join("r1", member("b", domain.RoleStudent))
	_, _ = tr.Join("r1", member("a", domain.RoleAdmin))
	info := tr.Info("r1")
	if info.State != "paired" || len(info.Roles) != 2 || info.Roles[0] != domain.RoleAdmin {
		t.Fatalf("info = %+v", info)
	}
}

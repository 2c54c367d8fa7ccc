package app

import (
	"github.com/dkeye/LiveSession/internal/core"
	"github.com/dkeye/LiveSession/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a member whose send queue is full.
type Policy interface {
	OnBackPressure(room domain.RoomID, member core.Member) BackpressureAction
}

// DropPolicy drops the frame for the slow member and keeps it connected.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.RoomID, core.Member) BackpressureAction {
	return DropFrame
}

// KickPolicy closes the slow member's connection; its leave follows from the close.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.RoomID, core.Member) BackpressureAction {
	return KickMember
}

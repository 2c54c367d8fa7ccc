// Package orch runs the hub: a single goroutine that owns room membership and
// routes signaling frames between the members of a room.
package orch

import (
	"context"
	"errors"

	"github.com/dkeye/LiveSession/internal/app"
	"github.com/dkeye/LiveSession/internal/core"
	"github.com/dkeye/LiveSession/internal/domain"
	"github.com/dkeye/LiveSession/internal/metrics"
	"github.com/rs/zerolog/log"
)

var ErrStopped = errors.New("hub stopped")

// Encoder builds the frames the hub emits on its own behalf.
type Encoder interface {
	Event(typ string) core.Frame
	Joined(room domain.RoomID, role domain.Role, state core.RoomState) core.Frame
	PeerLeft(role domain.Role) core.Frame
	Error(err error) core.Frame
}

type CommandKind int

const (
	// CmdJoin admits From to Room under Role.
	CmdJoin CommandKind = iota
	// CmdForward sends Frame to the other members of Room.
	CmdForward
	// CmdForwardCurrent sends Frame to the other members of From's current room.
	CmdForwardCurrent
	// CmdLeave removes From from its room and closes its connection.
	CmdLeave
)

// Command is one inbound relay message, already validated and encoded.
type Command struct {
	Kind  CommandKind
	From  core.ConnID
	Room  domain.RoomID
	Role  domain.Role
	Type  string
	Frame core.Frame
}

type registration struct {
	id   core.ConnID
	conn core.SignalConnection
}

type Orchestrator struct {
	Policy  app.Policy
	Metrics *metrics.Metrics
	Encoder Encoder

	tracker    *core.Tracker
	conns      map[core.ConnID]core.SignalConnection
	register chan registration
	inbound  chan Command
	queries  chan func(*core.Tracker)
	done     chan struct{}
}

func New(enc Encoder, policy app.Policy, m *metrics.Metrics) *Orchestrator {
	if policy == nil {
		policy = app.DropPolicy{}
	}
	return &Orchestrator{
		Policy:   policy,
		Metrics:  m,
		Encoder:  enc,
		tracker:  core.NewTracker(),
		conns:    make(map[core.ConnID]core.SignalConnection),
		register: make(chan registration),
		inbound:  make(chan Command, 256),
		queries:  make(chan func(*core.Tracker)),
		done:     make(chan struct{}),
	}
}

// Run is the only goroutine touching the tracker. It returns when ctx is done,
// closing every registered connection.
func (o *Orchestrator) Run(ctx context.Context) {
	defer close(o.done)
	log.Info().Str("module", "app.orch").Msg("hub started")
	for {
		select {
		case <-ctx.Done():
			for id, c := range o.conns {
				c.Close()
				delete(o.conns, id)
			}
			log.Info().Str("module", "app.orch").Msg("hub stopped")
			return
		case r := <-o.register:
			o.conns[r.id] = r.conn
			o.Metrics.ConnOpened()
			log.Debug().Str("module", "app.orch").Str("conn", string(r.id)).Msg("registered")
		case cmd := <-o.inbound:
			o.dispatch(cmd)
		case q := <-o.queries:
			q(o.tracker)
		}
	}
}

// Register must be called before any Submit for id.
func (o *Orchestrator) Register(id core.ConnID, conn core.SignalConnection) error {
	select {
	case o.register <- registration{id: id, conn: conn}:
		return nil
	case <-o.done:
		return ErrStopped
	}
}

// Unregister leaves id's room and closes its connection. It shares the inbound
// queue with Submit, so commands submitted earlier by id are handled first.
func (o *Orchestrator) Unregister(id core.ConnID) {
	_ = o.Submit(Command{Kind: CmdLeave, From: id})
}

// Submit queues cmd. Commands of one sender are handled in submission order.
func (o *Orchestrator) Submit(cmd Command) error {
	select {
	case <-o.done:
		return ErrStopped
	default:
	}
	select {
	case o.inbound <- cmd:
		return nil
	case <-o.done:
		return ErrStopped
	}
}

// RoomInfo reads the membership of a room through the hub loop.
func (o *Orchestrator) RoomInfo(ctx context.Context, id domain.RoomID) (core.RoomInfo, error) {
	out := make(chan core.RoomInfo, 1)
	q := func(t *core.Tracker) { out <- t.Info(id) }
	select {
	case o.queries <- q:
	case <-o.done:
		return core.RoomInfo{}, ErrStopped
	case <-ctx.Done():
		return core.RoomInfo{}, ctx.Err()
	}
	select {
	case info := <-out:
		return info, nil
	case <-ctx.Done():
		return core.RoomInfo{}, ctx.Err()
	}
}

func (o *Orchestrator) dispatch(cmd Command) {
	if cmd.Kind == CmdLeave {
		o.onDisconnect(cmd.From)
		return
	}
	o.Metrics.Message(cmd.Type)
	if _, ok := o.conns[cmd.From]; !ok {
		// Sender already unregistered; nothing may be routed on its behalf.
		return
	}
	switch cmd.Kind {
	case CmdJoin:
		o.join(cmd)
	case CmdForward:
		o.forward(cmd, cmd.Room)
	case CmdForwardCurrent:
		room, ok := o.tracker.RoomOf(cmd.From)
		if !ok {
			o.reject(cmd.From, core.ErrNotInRoom)
			return
		}
		o.forward(cmd, room)
	}
}

// reject reports err to the sender of a dropped message.
func (o *Orchestrator) reject(id core.ConnID, err error) {
	switch {
	case errors.Is(err, core.ErrNotInRoom):
		o.Metrics.Dropped(metrics.DropNotInRoom)
	case errors.Is(err, core.ErrRoleConflict):
		o.Metrics.Dropped(metrics.DropRoleConflict)
	default:
		o.Metrics.Dropped(metrics.DropMalformed)
	}
	log.Warn().Err(err).Str("module", "app.orch").Str("conn", string(id)).Msg("message rejected")
	if c, ok := o.conns[id]; ok {
		_ = c.TrySend(o.Encoder.Error(err))
	}
}

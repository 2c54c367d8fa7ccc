package orch

import (
	"github.com/dkeye/LiveSession/internal/core"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) join(cmd Command) {
	m := core.Member{ID: cmd.From, Role: cmd.Role, Signal: o.conns[cmd.From]}
	res, err := o.tracker.Join(cmd.Room, m)
	if err != nil {
		o.reject(cmd.From, err)
		return
	}
	o.Metrics.SetRooms(o.tracker.RoomCount())
	log.Info().Str("module", "app.orch").Str("conn", string(cmd.From)).Str("room", string(cmd.Room)).
		Str("role", string(cmd.Role)).Stringer("state", res.State).Msg("joined room")

	if l := res.Left; l != nil {
		o.fanout(l.Room, "peer-left", l.Remaining, o.Encoder.PeerLeft(l.Member.Role))
	}
	o.send(cmd.Room, m, o.Encoder.Joined(cmd.Room, cmd.Role, res.State))
	o.fanout(cmd.Room, res.Event, res.Notify, o.Encoder.Event(res.Event))
}

func (o *Orchestrator) onDisconnect(id core.ConnID) {
	conn, ok := o.conns[id]
	if !ok {
		return
	}
	delete(o.conns, id)
	conn.Close()
	o.Metrics.ConnClosed()

	res, ok := o.tracker.Leave(id)
	if !ok {
		log.Debug().Str("module", "app.orch").Str("conn", string(id)).Msg("unregistered")
		return
	}
	o.Metrics.SetRooms(o.tracker.RoomCount())
	log.Info().Str("module", "app.orch").Str("conn", string(id)).Str("room", string(res.Room)).
		Str("role", string(res.Member.Role)).Msg("left room")
	o.fanout(res.Room, "peer-left", res.Remaining, o.Encoder.PeerLeft(res.Member.Role))
}

package orch

import (
	"errors"

	"github.com/dkeye/LiveSession/internal/app"
	"github.com/dkeye/LiveSession/internal/core"
	"github.com/dkeye/LiveSession/internal/domain"
	"github.com/dkeye/LiveSession/internal/metrics"
	"github.com/rs/zerolog/log"
)

// forward relays an opaque frame to the other members of room.
func (o *Orchestrator) forward(cmd Command, room domain.RoomID) {
	to, err := o.tracker.Recipients(room, cmd.From)
	if err != nil {
		o.reject(cmd.From, err)
		return
	}
	o.fanout(room, cmd.Type, to, cmd.Frame)
}

func (o *Orchestrator) fanout(room domain.RoomID, typ string, to []core.Member, f core.Frame) {
	sent := 0
	for _, m := range to {
		if o.send(room, m, f) {
			sent++
		}
	}
	o.Metrics.Forwarded(typ, sent)
	log.Debug().Str("module", "app.orch").Str("room", string(room)).Str("type", typ).
		Int("sent_to", sent).Int("members", len(to)).Msg("fanout")
}

func (o *Orchestrator) send(room domain.RoomID, m core.Member, f core.Frame) bool {
	err := m.Signal.TrySend(f)
	if err == nil {
		return true
	}
	if !errors.Is(err, core.ErrBackpressure) {
		return false
	}
	o.Metrics.Dropped(metrics.DropBackpressure)
	switch o.Policy.OnBackPressure(room, m) {
	case app.KickMember:
		log.Warn().Str("module", "app.orch").Str("conn", string(m.ID)).Msg("slow member kicked")
		// The read pump notices the close and unregisters.
		m.Signal.Close()
	case app.DropFrame, app.NoAction:
		log.Warn().Str("module", "app.orch").Str("conn", string(m.ID)).Msg("frame dropped, send queue full")
	}
	return false
}

package signal

import (
	"github.com/dkeye/LiveSession/internal/app/orch"
	"github.com/dkeye/LiveSession/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(c *WsSignalConn, msg Inbound) {
	role, err := domain.ParseRole(msg.Role)
	if err != nil {
		ctl.drop(c, err)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Str("room", msg.RoomID).Str("role", msg.Role).Msg("join")
	ctl.submit(c, orch.Command{
		Kind: orch.CmdJoin,
		From: c.id,
		Room: domain.RoomID(msg.RoomID),
		Role: role,
		Type: msg.Type,
	})
}

func (ctl *SignalWSController) submit(c *WsSignalConn, cmd orch.Command) {
	if err := ctl.Hub.Submit(cmd); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("hub unavailable")
		c.Close()
	}
}

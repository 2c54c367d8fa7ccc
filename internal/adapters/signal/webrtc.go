package signal

import (
	"github.com/dkeye/LiveSession/internal/app/orch"
	"github.com/dkeye/LiveSession/internal/domain"
)

// handleNegotiation relays offer, answer and ice-candidate messages untouched.
// The offer/answer/ICE state machine lives in each peer, not here.
func (ctl *SignalWSController) handleNegotiation(c *WsSignalConn, msg Inbound) {
	ctl.submit(c, orch.Command{
		Kind:  orch.CmdForward,
		From:  c.id,
		Room:  domain.RoomID(msg.RoomID),
		Type:  msg.Type,
		Frame: encode(relayed(msg)),
	})
}

// handleStudentReady tells the sender's room the viewer is ready for an offer.
func (ctl *SignalWSController) handleStudentReady(c *WsSignalConn) {
	ctl.submit(c, orch.Command{
		Kind:  orch.CmdForwardCurrent,
		From:  c.id,
		Type:  TypeStudentReady,
		Frame: encode(Outbound{Type: TypeStudentReady}),
	})
}

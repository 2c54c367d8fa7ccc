package signal

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/LiveSession/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump owns the connection lifetime: however it exits, the hub is told
// and the room slot is released.
func (ctl *SignalWSController) readPump(ctx context.Context, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("readPump closing")
		ctl.Hub.Unregister(c.id)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.Cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.Cfg.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("readPump read error")
				}
				return
			}
			ctl.handleSignal(c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(c *WsSignalConn, data []byte) {
	if !allow(c.limiter) {
		ctl.drop(c, ErrRateLimited)
		return
	}

	msg, err := ParseInbound(data)
	if err != nil {
		ctl.drop(c, err)
		return
	}

	switch msg.Type {
	case TypeJoinRoom:
		ctl.handleJoin(c, msg)
	case TypeOffer, TypeAnswer, TypeICECandidate:
		ctl.handleNegotiation(c, msg)
	case TypeStudentReady:
		ctl.handleStudentReady(c)
	case TypePing:
		ctl.handlePing(c)
	}
}

// drop discards a message the hub never sees and tells the sender why.
func (ctl *SignalWSController) drop(c *WsSignalConn, err error) {
	reason := metrics.DropMalformed
	if errors.Is(err, ErrRateLimited) {
		reason = metrics.DropRateLimited
	}
	ctl.Metrics.Dropped(reason)
	log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("message dropped")
	ctl.sendJSON(c, Outbound{Type: TypeError, Error: ErrorCode(err)})
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v Outbound) {
	_ = c.TrySend(encode(v))
}

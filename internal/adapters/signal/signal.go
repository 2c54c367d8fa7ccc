package signal

import (
	"context"
	"net/http"
	"sync"

	"github.com/dkeye/LiveSession/internal/app/orch"
	"github.com/dkeye/LiveSession/internal/config"
	"github.com/dkeye/LiveSession/internal/core"
	"github.com/dkeye/LiveSession/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type SignalWSController struct {
	Hub     *orch.Orchestrator
	Cfg     *config.Config
	Metrics *metrics.Metrics

	upgrader websocket.Upgrader
}

func NewSignalWSController(hub *orch.Orchestrator, cfg *config.Config, m *metrics.Metrics) *SignalWSController {
	return &SignalWSController{
		Hub:     hub,
		Cfg:     cfg,
		Metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			// Session links are shared across origins; the identifier is the capability.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WsSignalConn is one participant's relay connection.
type WsSignalConn struct {
	id      core.ConnID
	conn    *websocket.Conn
	send    chan core.Frame
	limiter *rate.Limiter

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) ID() core.ConnID { return c.id }

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close is idempotent; the write pump drains nothing after it.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		id:      core.ConnID(xid.New().String()),
		conn:    ws,
		send:    make(chan core.Frame, ctl.Cfg.SendBuffer),
		limiter: newLimiter(ctl.Cfg.Relay),
	}
	log.Info().Str("module", "signal").Str("conn", string(conn.id)).
		Str("client", c.GetString("client_token")).Str("remote", c.ClientIP()).Msg("new WS connection")

	if err := ctl.Hub.Register(conn.id, conn); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("hub rejected connection")
		conn.Close()
		return
	}

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, conn)
}

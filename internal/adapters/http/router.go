package http

import (
	"context"
	"net/http"

	"github.com/dkeye/LiveSession/internal/adapters/signal"
	"github.com/dkeye/LiveSession/internal/app"
	"github.com/dkeye/LiveSession/internal/app/orch"
	"github.com/dkeye/LiveSession/internal/config"
	"github.com/dkeye/LiveSession/internal/metrics"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const cookieSessionName = "LiveSessions"

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Cfg        *config.Config
	Registry   *app.Registry
	Hub        *orch.Orchestrator
	Metrics    *metrics.Metrics
	ICEServers []webrtc.ICEServer
}

func SetupRouter(ctx context.Context, d Deps) *gin.Engine {
	if d.Cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if d.Cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(CORSMiddleware())

	store := cookie.NewStore([]byte(d.Cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(cookieSessionName, store))
	r.Use(ClientTokenMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	h := &sessionHandlers{registry: d.Registry, hub: d.Hub, publicOrigin: d.Cfg.PublicOrigin}
	ice := d.ICEServers
	if ice == nil {
		ice = []webrtc.ICEServer{}
	}

	api := r.Group("/api")
	api.POST("/sessions", h.create)
	api.GET("/sessions/current", h.current)
	api.GET("/sessions/:identifier", h.get)
	api.GET("/sessions/:identifier/room", h.room)
	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": ice})
	})

	ctrl := signal.NewSignalWSController(d.Hub, d.Cfg, d.Metrics)
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Bool("metrics", d.Cfg.Metrics.Enabled).Msg("router setup")
	return r
}

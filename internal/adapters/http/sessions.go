package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/LiveSession/internal/app"
	"github.com/dkeye/LiveSession/internal/app/orch"
	"github.com/dkeye/LiveSession/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const currentSessionKey = "current_session"

type sessionHandlers struct {
	registry     *app.Registry
	hub          *orch.Orchestrator
	publicOrigin string
}

type createRequest struct {
	BaseURL string `json:"baseUrl"`
}

// create handles POST /api/sessions. The body is optional.
func (h *sessionHandlers) create(c *gin.Context) {
	var req createRequest
	_ = c.ShouldBindJSON(&req)

	base := req.BaseURL
	if base == "" {
		base = h.publicOrigin
	}
	if base == "" {
		base = requestOrigin(c.Request)
	}

	s, err := h.registry.StartSession(c.Request.Context(), base)
	if err != nil {
		writeError(c, err)
		return
	}

	cs := sessions.Default(c)
	cs.Set(currentSessionKey, s.Identifier)
	if err := cs.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("save cookie session")
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": s})
}

func (h *sessionHandlers) get(c *gin.Context) {
	s, err := h.registry.GetSession(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": s})
}

// current returns the last session created from this browser.
func (h *sessionHandlers) current(c *gin.Context) {
	id, _ := sessions.Default(c).Get(currentSessionKey).(string)
	if id == "" {
		c.JSON(http.StatusNotFound, gin.H{"ok": false})
		return
	}
	s, err := h.registry.GetSession(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": s})
}

// room reports who is currently connected to a session's room.
func (h *sessionHandlers) room(c *gin.Context) {
	s, err := h.registry.GetSession(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		writeError(c, err)
		return
	}
	info, err := h.hub.RoomInfo(c.Request.Context(), domain.RoomID(s.Identifier))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "room": info})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false})
	case errors.Is(err, app.ErrInvalidOrigin):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid baseUrl"})
	case errors.Is(err, orch.ErrStopped):
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
	default:
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
	}
}

// requestOrigin is scheme://host of the request, honouring a TLS-terminating proxy.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + r.Host
}

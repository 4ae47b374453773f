package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/patrolbot/audit"
	"github.com/kasuganosora/patrolbot/game/world"
	"github.com/kasuganosora/patrolbot/gamemath"
	mw "github.com/kasuganosora/patrolbot/middleware"
	"go.uber.org/zap"
)

// DebugHandler serves the debug overlay: bot state, patrol previews, timers
// and a few operator controls.
type DebugHandler struct {
	room     *world.Room
	actions  *audit.Service  // nil disables action logging
	recorder *audit.Recorder // nil disables event history
	logger   *zap.Logger
}

// NewDebugHandler creates a DebugHandler. actions and recorder may be nil.
func NewDebugHandler(room *world.Room, actions *audit.Service, recorder *audit.Recorder, logger *zap.Logger) *DebugHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DebugHandler{room: room, actions: actions, recorder: recorder, logger: logger}
}

// Metrics returns the room summary.
// GET /debug/metrics
func (h *DebugHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.room.Metrics())
}

// ListBots returns every live bot.
// GET /debug/bots
func (h *DebugHandler) ListBots(c *gin.Context) {
	bots := h.room.Bots()
	c.JSON(http.StatusOK, gin.H{"bots": bots, "count": len(bots)})
}

// GetBot returns one bot.
// GET /debug/bots/:id
func (h *DebugHandler) GetBot(c *gin.Context) {
	view, ok := h.room.Bot(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "bot not found"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// Preview returns the trigger sphere and patrol route of a bot.
// GET /debug/bots/:id/preview
func (h *DebugHandler) Preview(c *gin.Context) {
	p, ok := h.room.PatrolPreview(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "bot not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

type damageRequest struct {
	Amount int `json:"amount" binding:"required,gt=0"`
}

// DamageBot applies damage to a bot.
// POST /debug/bots/:id/damage {"amount": 5}
func (h *DebugHandler) DamageBot(c *gin.Context) {
	start := time.Now()
	id := c.Param("id")
	var req damageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive integer"})
		return
	}
	view, ok := h.room.DamageBot(id, req.Amount)
	if !ok {
		h.logAction(c, "damage_bot", id, req, nil, "bot not found", start)
		c.JSON(http.StatusNotFound, gin.H{"error": "bot not found"})
		return
	}
	h.logger.Info("operator damaged bot",
		zap.String("bot_id", id),
		zap.Int("amount", req.Amount),
		zap.Int("life", view.Life),
		zap.String("operator", mw.GetOperator(c)))
	h.logAction(c, "damage_bot", id, req, view, "", start)
	c.JSON(http.StatusOK, view)
}

// GetPlayer returns the player.
// GET /debug/player
func (h *DebugHandler) GetPlayer(c *gin.Context) {
	c.JSON(http.StatusOK, h.room.Player().Snapshot())
}

type moveRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z" binding:"required"`
}

// MovePlayer teleports the player.
// POST /debug/player/move {"x": 1, "y": 0, "z": 2}
func (h *DebugHandler) MovePlayer(c *gin.Context) {
	start := time.Now()
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "x and z are required"})
		return
	}
	pos := gamemath.Vec3{X: *req.X, Z: *req.Z}
	if req.Y != nil {
		pos.Y = *req.Y
	}
	if !h.room.MovePlayer(pos) {
		h.logAction(c, "move_player", "", pos, nil, "position not walkable", start)
		c.JSON(http.StatusBadRequest, gin.H{"error": "position not walkable"})
		return
	}
	snap := h.room.Player().Snapshot()
	h.logAction(c, "move_player", "", pos, snap, "", start)
	c.JSON(http.StatusOK, snap)
}

// Timers lists outstanding bot timers.
// GET /debug/timers
func (h *DebugHandler) Timers(c *gin.Context) {
	timers := h.room.Timers()
	c.JSON(http.StatusOK, gin.H{"timers": timers, "count": len(timers), "tick": h.room.Now()})
}

// Projectiles lists live projectiles.
// GET /debug/projectiles
func (h *DebugHandler) Projectiles(c *gin.Context) {
	ps := h.room.Projectiles()
	c.JSON(http.StatusOK, gin.H{"projectiles": ps, "count": len(ps)})
}

// History returns recorded events.
// GET /debug/events/history?bot_id=&kind=&since_tick=&limit=
func (h *DebugHandler) History(c *gin.Context) {
	if h.recorder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event recording disabled"})
		return
	}
	q := audit.Query{BotID: c.Query("bot_id"), Kind: c.Query("kind")}
	if s := c.Query("since_tick"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since_tick"})
			return
		}
		q.SinceTick = v
	}
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		q.Limit = v
	}
	evs, err := h.recorder.Find(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("event history query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": evs, "count": len(evs)})
}

func (h *DebugHandler) logAction(c *gin.Context, action, botID string, req, resp interface{}, errMsg string, start time.Time) {
	if h.actions == nil {
		return
	}
	h.actions.Log(audit.ActionEntry{
		TraceID:    mw.GetTraceID(c),
		Operator:   mw.GetOperator(c),
		Action:     action,
		BotID:      botID,
		Request:    req,
		Response:   resp,
		Error:      errMsg,
		IP:         c.ClientIP(),
		DurationMs: int(time.Since(start).Milliseconds()),
	})
}

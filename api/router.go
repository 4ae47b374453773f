// Package api assembles the debug HTTP surface.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/patrolbot/api/rest"
	"github.com/kasuganosora/patrolbot/api/sse"
	"github.com/kasuganosora/patrolbot/audit"
	"github.com/kasuganosora/patrolbot/config"
	"github.com/kasuganosora/patrolbot/events"
	"github.com/kasuganosora/patrolbot/game/world"
	mw "github.com/kasuganosora/patrolbot/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Deps are the services the debug API reads from. Only Room is required.
type Deps struct {
	Room     *world.Room
	Bus      events.Bus // nil disables the event stream
	Channel  string
	Actions  *audit.Service
	Recorder *audit.Recorder
	Logger   *zap.Logger
}

// NewRouter builds the debug API. ctx bounds background work such as rate
// limiter cleanup.
func NewRouter(ctx context.Context, cfg config.ServerConfig, deps Deps) (*gin.Engine, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	allow, err := mw.AllowNetworks(cfg.DebugAllow)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	if cfg.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "tick": deps.Room.Now()})
	})

	h := rest.NewDebugHandler(deps.Room, deps.Actions, deps.Recorder, logger)
	dbg := r.Group("/debug", allow)
	{
		dbg.GET("/metrics", h.Metrics)
		dbg.GET("/bots", h.ListBots)
		dbg.GET("/bots/:id", h.GetBot)
		dbg.GET("/bots/:id/preview", h.Preview)
		dbg.GET("/player", h.GetPlayer)
		dbg.GET("/timers", h.Timers)
		dbg.GET("/projectiles", h.Projectiles)
		dbg.GET("/events/history", h.History)
		if deps.Bus != nil {
			dbg.GET("/events", sse.NewHandler(deps.Bus, deps.Channel, logger).ServeSSE)
		}

		ops := dbg.Group("", mw.OperatorAuth(cfg.DebugSecret))
		ops.POST("/bots/:id/damage", h.DamageBot)
		ops.POST("/player/move", h.MovePlayer)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r, nil
}

// Package events carries room events to observers outside the game loop.
package events

import (
	"context"
	"time"
)

// Event kinds emitted by a room.
const (
	KindBotSpawned         = "bot_spawned"
	KindBotState           = "bot_state"
	KindBotCue             = "bot_cue"
	KindBotDamaged         = "bot_damaged"
	KindBotDestroyed       = "bot_destroyed"
	KindProjectileLaunched = "projectile_launched"
	KindProjectileHit      = "projectile_hit"
	KindProjectileExpired  = "projectile_expired"
	KindPlayerDamaged      = "player_damaged"
	KindPlayerDefeated     = "player_defeated"
)

// DefaultChannel is the bus channel rooms publish on.
const DefaultChannel = "patrolbot.room"

// Event is one thing that happened in a room on a given tick.
type Event struct {
	Kind    string         `json:"kind"`
	Tick    uint64         `json:"tick"`
	BotID   string         `json:"bot_id,omitempty"`
	BotName string         `json:"bot_name,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Sink accepts events from the game loop. Emit must not block.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(ev Event) { f(ev) }

// Message is a received bus message.
type Message struct {
	Channel string
	Payload string
}

// Bus is a channel publish/subscribe transport.
type Bus interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error)
}

// Config selects and tunes the bus.
type Config struct {
	RedisAddr     string        `mapstructure:"redis_addr"` // empty means in-process
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	Channel       string        `mapstructure:"channel"`
	Buffer        int           `mapstructure:"buffer"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`
}

// NewBus returns a Redis-backed bus if RedisAddr is set, otherwise an
// in-process one.
func NewBus(cfg Config) (Bus, error) {
	if cfg.RedisAddr != "" {
		return NewRedisBus(cfg)
	}
	return NewLocalBus(cfg.Buffer), nil
}

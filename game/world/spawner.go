package world

import (
	"fmt"

	"github.com/kasuganosora/patrolbot/config"
	"github.com/kasuganosora/patrolbot/game/ai"
	"github.com/kasuganosora/patrolbot/gamemath"
	"github.com/kasuganosora/patrolbot/resource"
	"go.uber.org/zap"
)

// Spawner places the configured bots into a Room.
type Spawner struct {
	room    *Room
	level   *resource.Level
	configs []config.BotConfig
	logger  *zap.Logger
}

// NewSpawner creates a Spawner for a Room.
func NewSpawner(room *Room, level *resource.Level, configs []config.BotConfig, logger *zap.Logger) *Spawner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Spawner{room: room, level: level, configs: configs, logger: logger}
}

// SpawnAll spawns every configured bot, then every level placement that has
// no config entry (with default settings). A level placement overrides the
// position and waypoints of the config entry with the same name.
func (sp *Spawner) SpawnAll() ([]*ai.Bot, error) {
	var bots []*ai.Bot
	configured := make(map[string]bool, len(sp.configs))
	for _, cfg := range sp.configs {
		configured[cfg.Name] = true
		cfg = cfg.WithDefaults()
		pos := point(cfg.Position)
		waypoints := points(cfg.Waypoints)
		if sp.level != nil {
			if pl, ok := sp.level.Placement(cfg.Name); ok {
				pos, waypoints = pl.Position, pl.Waypoints
			}
		}
		b, err := sp.spawn(cfg, pos, waypoints)
		if err != nil {
			return nil, err
		}
		bots = append(bots, b)
	}

	if sp.level != nil {
		for _, pl := range sp.level.Bots {
			if configured[pl.Name] {
				continue
			}
			sp.logger.Warn("level bot has no config entry, using defaults", zap.String("bot_name", pl.Name))
			b, err := sp.spawn(config.DefaultBot(pl.Name), pl.Position, pl.Waypoints)
			if err != nil {
				return nil, err
			}
			bots = append(bots, b)
		}
	}
	return bots, nil
}

func (sp *Spawner) spawn(cfg config.BotConfig, pos gamemath.Vec3, waypoints []gamemath.Vec3) (*ai.Bot, error) {
	types, err := ai.ParseDamageTypes(cfg.DamageTypes)
	if err != nil {
		return nil, fmt.Errorf("spawn bot %q: %w", cfg.Name, err)
	}
	b, err := sp.room.AddBot(ai.BotConfig{
		Name:          cfg.Name,
		RadiusTrigger: cfg.RadiusTrigger,
		Life:          cfg.Life,
		Waypoints:     waypoints,
		DamageTypes:   types,
		Near: ai.MeleeEmitter{
			Damage:     cfg.Near.Damage,
			ReloadTime: cfg.Near.ReloadTime,
		},
		Distant: ai.ProjectileEmitter{
			Damage:        cfg.Distant.Damage,
			ReloadTime:    cfg.Distant.ReloadTime,
			LiveTime:      cfg.Distant.LiveTime,
			Speed:         cfg.Distant.Speed,
			LaunchForward: cfg.Distant.LaunchForward,
			LaunchUp:      cfg.Distant.LaunchUp,
		},
		DistanceRadiusDamage: cfg.DistanceRadiusDamage,
	}, pos, cfg.Speed)
	if err != nil {
		return nil, fmt.Errorf("spawn bot %q: %w", cfg.Name, err)
	}
	return b, nil
}

func point(p config.PointConfig) gamemath.Vec3 {
	return gamemath.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

func points(ps []config.PointConfig) []gamemath.Vec3 {
	out := make([]gamemath.Vec3, 0, len(ps))
	for _, p := range ps {
		out = append(out, point(p))
	}
	return out
}

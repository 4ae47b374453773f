package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/kasuganosora/patrolbot/gamemath"
	"github.com/kasuganosora/patrolbot/scheduler"
	"go.uber.org/zap"
)

// Fixed engagement distances.
const (
	HaltDistance         = 1.5 // pursuit stops closing inside this range
	MeleeRange           = 2.0 // near damage reaches this far
	PatrolArriveDistance = 1.0 // remaining distance that counts as arrived
)

// DamageType is a set of enabled damage variants.
type DamageType uint8

const (
	DamageNear DamageType = 1 << iota
	DamageDistant
)

// Has reports whether every variant in f is enabled.
func (d DamageType) Has(f DamageType) bool { return f != 0 && d&f == f }

func (d DamageType) String() string {
	var parts []string
	if d.Has(DamageNear) {
		parts = append(parts, "near")
	}
	if d.Has(DamageDistant) {
		parts = append(parts, "distant")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseDamageTypes builds a set from names such as "near" and "distant".
func ParseDamageTypes(names []string) (DamageType, error) {
	var d DamageType
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "near":
			d |= DamageNear
		case "distant":
			d |= DamageDistant
		case "":
		default:
			return 0, fmt.Errorf("%w: unknown damage type %q", ErrInvalidConfig, n)
		}
	}
	return d, nil
}

// MeleeEmitter applies damage directly to the target.
type MeleeEmitter struct {
	Damage     int
	ReloadTime time.Duration
}

// ProjectileEmitter launches a projectile that lives for LiveTime.
// The launch point sits LaunchForward ahead of and LaunchUp above the bot.
type ProjectileEmitter struct {
	Damage        int
	ReloadTime    time.Duration
	LiveTime      time.Duration
	Speed         float64
	LaunchForward float64
	LaunchUp      float64
}

// Projectile is a spawn request for a projectile actor.
type Projectile struct {
	Owner         string
	Pose          gamemath.Pose
	Damage        int
	Speed         float64
	LifetimeTicks int
}

// resolveDamage fires at most one damage variant, near first.
func (b *Bot) resolveDamage(ctx *AIContext) {
	dist := gamemath.Distance(ctx.Self, ctx.Target)
	switch {
	case dist < MeleeRange && b.cfg.DamageTypes.Has(DamageNear) && !b.nearCooldown:
		b.cue(CueDamage)
		b.nav.SetDestination(ctx.Target)
		b.target.ApplyDamage(b.cfg.Near.Damage)
		b.nearCooldown = true
		b.startCooldown(TimerNearReload, b.cfg.Near.ReloadTime, &b.nearCooldown)
		b.logger.Debug("near damage", zap.Int("damage", b.cfg.Near.Damage), zap.Float64("distance", dist))

	case b.nav.RemainingDistance() < b.cfg.DistanceRadiusDamage && b.cfg.DamageTypes.Has(DamageDistant) && !b.distantCooldown:
		b.cue(CueDamage)
		b.distantCooldown = true
		b.startCooldown(TimerDistantReload, b.cfg.Distant.ReloadTime, &b.distantCooldown)
		pose := b.launchPose(ctx.Self)
		id := b.projectiles.SpawnProjectile(Projectile{
			Owner:         b.ID,
			Pose:          pose,
			Damage:        b.cfg.Distant.Damage,
			Speed:         b.cfg.Distant.Speed,
			LifetimeTicks: Ticks(b.cfg.Distant.LiveTime, b.interval),
		})
		b.logger.Debug("projectile launched", zap.Int64("projectile_id", id), zap.Int("damage", b.cfg.Distant.Damage))
	}
}

// startCooldown clears *flag once the reload has elapsed.
func (b *Bot) startCooldown(kind string, reload time.Duration, flag *bool) {
	b.timers.AddDelay(scheduler.Key{Owner: b.ID, Kind: kind}, Ticks(reload, b.interval), func() {
		if b.dead {
			return
		}
		*flag = false
	})
}

func (b *Bot) launchPose(self gamemath.Vec3) gamemath.Pose {
	pos := self.
		Add(gamemath.Forward(b.nav.Facing()).Scale(b.cfg.Distant.LaunchForward)).
		Add(gamemath.Up.Scale(b.cfg.Distant.LaunchUp))
	return gamemath.Pose{Position: pos, Yaw: b.nav.Facing()}
}

package world

import (
	"slices"

	"github.com/kasuganosora/patrolbot/events"
	"github.com/kasuganosora/patrolbot/game/ai"
	"github.com/kasuganosora/patrolbot/gamemath"
	"go.uber.org/zap"
)

const (
	projectileHitRadius = 0.5 // horizontal reach of a hit
	playerHeight        = 2.0
)

// Projectile is a live projectile actor.
type Projectile struct {
	ID        int64         `json:"id"`
	Owner     string        `json:"owner"`
	Position  gamemath.Vec3 `json:"position"`
	Yaw       float64       `json:"yaw"`
	Speed     float64       `json:"speed"`
	Damage    int           `json:"damage"`
	TicksLeft int           `json:"ticks_left"`
}

// SpawnProjectile implements ai.ProjectileSpawner. It runs inside the room
// loop with the room lock held.
func (room *Room) SpawnProjectile(p ai.Projectile) int64 {
	room.nextProjectileID++
	id := room.nextProjectileID
	room.projectiles[id] = &Projectile{
		ID:        id,
		Owner:     p.Owner,
		Position:  p.Pose.Position,
		Yaw:       p.Pose.Yaw,
		Speed:     p.Speed,
		Damage:    p.Damage,
		TicksLeft: p.LifetimeTicks,
	}
	room.emit(events.Event{Kind: events.KindProjectileLaunched, BotID: p.Owner, Data: map[string]any{
		"projectile_id": id,
		"position":      p.Pose.Position,
		"yaw":           p.Pose.Yaw,
	}})
	return id
}

// stepProjectiles moves every projectile, resolves hits on the player and
// removes projectiles whose lifetime ran out.
func (room *Room) stepProjectiles() {
	dt := room.interval.Seconds()
	target := room.player.Position()
	ids := make([]int64, 0, len(room.projectiles))
	for id := range room.projectiles {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		p := room.projectiles[id]
		p.Position = p.Position.Add(gamemath.Forward(p.Yaw).Scale(p.Speed * dt))
		if hitsPlayer(p.Position, target) {
			delete(room.projectiles, id)
			room.emit(events.Event{Kind: events.KindProjectileHit, BotID: p.Owner, Data: map[string]any{
				"projectile_id": id,
			}})
			room.damagePlayer(p.Damage, p.Owner, "distant")
			room.logger.Debug("projectile hit player",
				zap.Int64("projectile_id", id),
				zap.String("owner", p.Owner),
				zap.Int("damage", p.Damage))
			continue
		}
		p.TicksLeft--
		if p.TicksLeft <= 0 {
			delete(room.projectiles, id)
			room.emit(events.Event{Kind: events.KindProjectileExpired, BotID: p.Owner, Data: map[string]any{
				"projectile_id": id,
			}})
		}
	}
}

// hitsPlayer tests pos against an upright player capsule standing at feet.
func hitsPlayer(pos, feet gamemath.Vec3) bool {
	dy := pos.Y - feet.Y
	if dy < 0 || dy > playerHeight {
		return false
	}
	flat := gamemath.Vec3{X: pos.X - feet.X, Z: pos.Z - feet.Z}
	return flat.Len() <= projectileHitRadius
}

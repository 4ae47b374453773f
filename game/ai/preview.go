package ai

import "github.com/kasuganosora/patrolbot/gamemath"

// Preview is the debug overlay for one bot: its trigger sphere and the
// route through its configured waypoints.
type Preview struct {
	Center        gamemath.Vec3   `json:"center"`
	TriggerRadius float64         `json:"trigger_radius"`
	Polyline      []gamemath.Vec3 `json:"polyline"`
}

// PatrolPolyline chains path queries from `from` through each waypoint.
// Each leg starts where the previous one actually ended, which for an
// unreachable waypoint is the closest reachable point.
func PatrolPolyline(q PathQuery, from gamemath.Vec3, waypoints []gamemath.Vec3) []gamemath.Vec3 {
	line := []gamemath.Vec3{from}
	prev := from
	for _, wp := range waypoints {
		for _, c := range q.ComputePath(prev, wp).Corners {
			if c == prev {
				continue
			}
			line = append(line, c)
			prev = c
		}
	}
	return line
}

// PatrolPreview builds the overlay from the bot's current position.
// It does not touch bot state.
func (b *Bot) PatrolPreview() Preview {
	pos := b.nav.Position()
	return Preview{
		Center:        pos,
		TriggerRadius: b.cfg.RadiusTrigger,
		Polyline:      PatrolPolyline(b.nav, pos, b.cfg.Waypoints),
	}
}

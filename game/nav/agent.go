package nav

import "github.com/kasuganosora/patrolbot/gamemath"

// Agent moves one body along grid paths towards its destination.
// It is driven from the world loop and is not safe for concurrent use.
type Agent struct {
	grid    *Grid
	pos     gamemath.Vec3
	speed   float64
	hasDest bool
	dest    gamemath.Vec3
	path    Path
	next    int // index into path.Corners of the corner being approached
	facing  float64
}

// NewAgent places an agent on grid at pos. speed is in world units per second.
func NewAgent(grid *Grid, pos gamemath.Vec3, speed float64) *Agent {
	return &Agent{grid: grid, pos: pos, speed: speed}
}

// Position returns the current position.
func (a *Agent) Position() gamemath.Vec3 { return a.pos }

// Facing returns the yaw the body faces.
func (a *Agent) Facing() float64 { return a.facing }

// Face turns the body to yaw.
func (a *Agent) Face(yaw float64) { a.facing = yaw }

// Speed returns the movement speed in world units per second.
func (a *Agent) Speed() float64 { return a.speed }

// Warp teleports the agent and re-plans towards the current destination.
func (a *Agent) Warp(pos gamemath.Vec3) {
	a.pos = pos
	if a.hasDest {
		a.SetDestination(a.dest)
	}
}

// ComputePath runs a path query without touching the active path.
func (a *Agent) ComputePath(from, to gamemath.Vec3) Path {
	return a.grid.ComputePath(from, to)
}

// SetDestination replaces the active path with one towards dest.
func (a *Agent) SetDestination(dest gamemath.Vec3) {
	a.dest = dest
	a.hasDest = true
	a.path = a.grid.ComputePath(a.pos, dest)
	a.next = 1
}

// Destination returns the current destination.
func (a *Agent) Destination() (gamemath.Vec3, bool) { return a.dest, a.hasDest }

// PathComplete reports whether the active path reaches the destination.
// An agent without a destination has nothing to reach and reports true.
func (a *Agent) PathComplete() bool {
	return !a.hasDest || a.path.Complete
}

// RemainingDistance is the distance left along the active path.
func (a *Agent) RemainingDistance() float64 {
	if !a.hasDest || a.next >= len(a.path.Corners) {
		return 0
	}
	total := gamemath.Distance(a.pos, a.path.Corners[a.next])
	for i := a.next + 1; i < len(a.path.Corners); i++ {
		total += gamemath.Distance(a.path.Corners[i-1], a.path.Corners[i])
	}
	return total
}

// Step advances the agent up to distance world units along the active path.
func (a *Agent) Step(distance float64) {
	for distance > 0 && a.hasDest && a.next < len(a.path.Corners) {
		target := a.path.Corners[a.next]
		before := gamemath.Distance(a.pos, target)
		if before > 0 {
			a.facing = gamemath.YawTowards(a.pos, target)
		}
		var arrived bool
		a.pos, arrived = gamemath.MoveTowards(a.pos, target, distance)
		if !arrived {
			return
		}
		distance -= before
		a.next++
	}
}

package ai

import (
	"math"
	"time"

	"github.com/kasuganosora/patrolbot/game/nav"
	"github.com/kasuganosora/patrolbot/gamemath"
	"github.com/kasuganosora/patrolbot/scheduler"
)

// AIContext is passed to every behavior tree node during a tick.
// Self and Target are sampled once at the start of the tick.
type AIContext struct {
	Bot    *Bot
	Self   gamemath.Vec3
	Target gamemath.Vec3
	Branch Branch // set by the branch that ran
}

// BotState enumerates the high-level AI states of a bot.
type BotState int

const (
	StatePatrolling BotState = iota
	StatePursuing
	StateBlocked // pursuing, but the path to the target is incomplete
	StateDead
)

func (s BotState) String() string {
	switch s {
	case StatePatrolling:
		return "patrolling"
	case StatePursuing:
		return "pursuing"
	case StateBlocked:
		return "blocked"
	case StateDead:
		return "dead"
	}
	return "unknown"
}

// Branch names the per-tick branch a bot took. At most one runs per tick.
type Branch int

const (
	BranchNone Branch = iota
	BranchPursue
	BranchTrigger
	BranchPatrol
)

func (b Branch) String() string {
	switch b {
	case BranchPursue:
		return "pursue"
	case BranchTrigger:
		return "trigger"
	case BranchPatrol:
		return "patrol"
	}
	return "none"
}

// Cue is a named animation request.
type Cue string

const (
	CueIdle   Cue = "idle"
	CueWalk   Cue = "walk"
	CueDamage Cue = "damage"
)

// PathQuery computes paths between two points.
type PathQuery interface {
	ComputePath(from, to gamemath.Vec3) nav.Path
}

// Navigator moves the bot's body. Implemented by *nav.Agent.
type Navigator interface {
	PathQuery
	Position() gamemath.Vec3
	SetDestination(dest gamemath.Vec3)
	RemainingDistance() float64
	PathComplete() bool
	Facing() float64
	Face(yaw float64)
}

// CueSink plays animation cues. Cues are best-effort.
type CueSink interface {
	PlayCue(c Cue)
}

// CueFunc adapts a function to CueSink.
type CueFunc func(c Cue)

func (f CueFunc) PlayCue(c Cue) { f(c) }

// Target is the entity a bot hunts.
type Target interface {
	Position() gamemath.Vec3
	ApplyDamage(amount int)
}

// ProjectileSpawner puts a projectile actor into the world and returns its id.
// The actor removes itself after its lifetime.
type ProjectileSpawner interface {
	SpawnProjectile(p Projectile) int64
}

// Timers is the tick-counted timer table. Implemented by *scheduler.Scheduler.
type Timers interface {
	AddDelay(key scheduler.Key, ticks int, fn scheduler.TaskFn) bool
}

// Timer kinds, one outstanding per bot each.
const (
	TimerReacquire     = "reacquire"
	TimerNearReload    = "near_reload"
	TimerDistantReload = "distant_reload"
)

// Ticks converts d to a whole number of ticks of the given interval,
// rounding up. Anything positive lasts at least one tick.
func Ticks(d, interval time.Duration) int {
	if d <= 0 || interval <= 0 {
		return 1
	}
	return int(math.Ceil(float64(d) / float64(interval)))
}

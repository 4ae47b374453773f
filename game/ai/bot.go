package ai

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/patrolbot/gamemath"
	"github.com/kasuganosora/patrolbot/scheduler"
	"go.uber.org/zap"
)

// ReacquireDelay is how long a blocked bot waits before re-checking its path.
const ReacquireDelay = 3 * time.Second

var (
	ErrNoTarget      = errors.New("ai: bot has no target")
	ErrNoNavigator   = errors.New("ai: bot has no navigator")
	ErrNoTimers      = errors.New("ai: bot has no timer table")
	ErrNoSpawner     = errors.New("ai: distant damage needs a projectile spawner")
	ErrInvalidConfig = errors.New("ai: invalid bot config")
)

// BotConfig is fixed at construction.
type BotConfig struct {
	Name                 string
	RadiusTrigger        float64
	Life                 int
	Waypoints            []gamemath.Vec3
	DamageTypes          DamageType
	Near                 MeleeEmitter
	Distant              ProjectileEmitter
	DistanceRadiusDamage float64
}

// Deps are the collaborators a bot talks to. Cues, OnDestroyed and Logger
// are optional.
type Deps struct {
	Nav          Navigator
	Target       Target
	Cues         CueSink
	Projectiles  ProjectileSpawner
	Timers       Timers
	TickInterval time.Duration
	OnDestroyed  func(*Bot)
	Logger       *zap.Logger
}

// Bot is a patrolling, pursuing, attacking agent. All methods must be called
// from the goroutine driving the world loop.
type Bot struct {
	ID   string
	Name string

	cfg    BotConfig
	health HealthPool
	points []gamemath.Vec3 // spawn point followed by the configured waypoints
	index  int

	active          bool
	blocked         bool
	nearCooldown    bool
	distantCooldown bool
	dead            bool

	nav         Navigator
	target      Target
	cues        CueSink
	projectiles ProjectileSpawner
	timers      Timers
	interval    time.Duration
	onDestroyed func(*Bot)
	tree        *BehaviorTree
	logger      *zap.Logger
}

// NewBot validates cfg and deps and places the bot at the navigator's
// current position, which becomes patrol point 0.
func NewBot(cfg BotConfig, deps Deps) (*Bot, error) {
	switch {
	case deps.Target == nil:
		return nil, ErrNoTarget
	case deps.Nav == nil:
		return nil, ErrNoNavigator
	case deps.Timers == nil:
		return nil, ErrNoTimers
	case cfg.DamageTypes.Has(DamageDistant) && deps.Projectiles == nil:
		return nil, ErrNoSpawner
	case cfg.RadiusTrigger <= 0:
		return nil, fmt.Errorf("%w: radius trigger must be > 0, got %v", ErrInvalidConfig, cfg.RadiusTrigger)
	case cfg.Life <= 0:
		return nil, fmt.Errorf("%w: life must be > 0, got %d", ErrInvalidConfig, cfg.Life)
	case deps.TickInterval <= 0:
		return nil, fmt.Errorf("%w: tick interval must be > 0", ErrInvalidConfig)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bot{
		ID:          uuid.NewString(),
		Name:        cfg.Name,
		cfg:         cfg,
		health:      NewHealthPool(cfg.Life),
		nav:         deps.Nav,
		target:      deps.Target,
		cues:        deps.Cues,
		projectiles: deps.Projectiles,
		timers:      deps.Timers,
		interval:    deps.TickInterval,
		onDestroyed: deps.OnDestroyed,
	}
	b.logger = logger.With(zap.String("bot_id", b.ID), zap.String("bot_name", b.Name))

	b.points = make([]gamemath.Vec3, 0, len(cfg.Waypoints)+1)
	b.points = append(b.points, deps.Nav.Position())
	b.points = append(b.points, cfg.Waypoints...)
	if len(cfg.Waypoints) > 0 {
		b.nav.SetDestination(b.points[1])
	}

	b.tree = &BehaviorTree{Root: &Selector{Children: []Node{
		Guarded(b.isPursuing, b.pursue),
		Guarded(b.targetInTrigger, b.engage),
		Guarded(func(*AIContext) bool { return true }, b.patrol),
	}}}
	return b, nil
}

// Tick runs one step of the state machine and returns the branch taken.
func (b *Bot) Tick() Branch {
	if b.dead {
		return BranchNone
	}
	ctx := &AIContext{Bot: b, Self: b.nav.Position(), Target: b.target.Position()}
	b.tree.Tick(ctx)
	return ctx.Branch
}

func (b *Bot) isPursuing(*AIContext) bool { return b.active }

func (b *Bot) targetInTrigger(ctx *AIContext) bool {
	return gamemath.Distance(ctx.Self, ctx.Target) <= b.cfg.RadiusTrigger
}

// pursue closes on the target, or halts and faces it when close, then either
// blocks on an incomplete path or resolves damage.
func (b *Bot) pursue(ctx *AIContext) {
	ctx.Branch = BranchPursue
	if gamemath.Distance(ctx.Target, ctx.Self) > HaltDistance {
		b.nav.SetDestination(ctx.Target)
	} else {
		b.nav.SetDestination(ctx.Self)
		b.nav.Face(gamemath.YawTowards(ctx.Self, ctx.Target))
	}

	if !b.nav.PathComplete() {
		if !b.blocked {
			b.startReacquire()
		}
		b.blocked = true
		return
	}
	b.resolveDamage(ctx)
}

// engage starts pursuit when the target is reachable.
func (b *Bot) engage(ctx *AIContext) {
	ctx.Branch = BranchTrigger
	if b.nav.ComputePath(ctx.Self, ctx.Target).Complete {
		b.active = true
		b.logger.Info("bot engaged target", zap.Float64("distance", gamemath.Distance(ctx.Self, ctx.Target)))
	}
}

// patrol moves on to the next waypoint once the current one is reached.
func (b *Bot) patrol(ctx *AIContext) {
	ctx.Branch = BranchPatrol
	if len(b.points) == 0 {
		return
	}
	if b.nav.RemainingDistance() < PatrolArriveDistance {
		b.index = (b.index + 1) % len(b.points)
		b.nav.SetDestination(b.points[b.index])
	}
}

func (b *Bot) startReacquire() {
	b.cue(CueIdle)
	b.logger.Debug("bot blocked, waiting to reacquire")
	b.timers.AddDelay(scheduler.Key{Owner: b.ID, Kind: TimerReacquire}, Ticks(ReacquireDelay, b.interval), b.reacquire)
}

// reacquire re-checks the path to where the target is now and gives up the
// chase if it is still incomplete.
func (b *Bot) reacquire() {
	if b.dead {
		return
	}
	if !b.nav.ComputePath(b.nav.Position(), b.target.Position()).Complete {
		b.active = false
		b.nav.SetDestination(b.points[b.index%len(b.points)])
		b.logger.Info("bot lost target, returning to patrol", zap.Int("patrol_index", b.index))
	}
	b.blocked = false
	b.cue(CueWalk)
}

func (b *Bot) cue(c Cue) {
	if b.cues != nil {
		b.cues.PlayCue(c)
	}
}

// ApplyDamage takes amount off the bot's life and reports whether it is
// destroyed. Destruction happens once; later calls change nothing.
func (b *Bot) ApplyDamage(amount int) bool {
	if b.dead {
		return true
	}
	if !b.health.Apply(amount) {
		return false
	}
	b.dead = true
	b.logger.Info("bot destroyed", zap.Int("life", b.health.Life()))
	if b.onDestroyed != nil {
		b.onDestroyed(b)
	}
	return true
}

// State returns the bot's current high-level state.
func (b *Bot) State() BotState {
	switch {
	case b.dead:
		return StateDead
	case b.active && b.blocked:
		return StateBlocked
	case b.active:
		return StatePursuing
	}
	return StatePatrolling
}

func (b *Bot) Destroyed() bool { return b.dead }
func (b *Bot) Life() int { return b.health.Life() }
func (b *Bot) PatrolIndex() int { return b.index }
func (b *Bot) Yaw() float64 { return b.nav.Facing() }
func (b *Bot) Active() bool { return b.active }
func (b *Bot) Blocked() bool { return b.blocked }
func (b *Bot) NearCooldown() bool { return b.nearCooldown }
func (b *Bot) DistantCooldown() bool { return b.distantCooldown }
func (b *Bot) Position() gamemath.Vec3 { return b.nav.Position() }

// PatrolPoints returns a copy of the patrol sequence.
func (b *Bot) PatrolPoints() []gamemath.Vec3 {
	out := make([]gamemath.Vec3, len(b.points))
	copy(out, b.points)
	return out
}

// Snapshot is a read-only view of a bot.
type Snapshot struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	State           string        `json:"state"`
	Position        gamemath.Vec3 `json:"position"`
	Yaw             float64       `json:"yaw"`
	Life            int           `json:"life"`
	MaxLife         int           `json:"max_life"`
	PatrolIndex     int           `json:"patrol_index"`
	DamageTypes     string        `json:"damage_types"`
	Active          bool          `json:"active"`
	Blocked         bool          `json:"blocked"`
	NearCooldown    bool          `json:"near_cooldown"`
	DistantCooldown bool          `json:"distant_cooldown"`
}

// Snapshot captures the bot's current state.
func (b *Bot) Snapshot() Snapshot {
	return Snapshot{
		ID:              b.ID,
		Name:            b.Name,
		State:           b.State().String(),
		Position:        b.nav.Position(),
		Yaw:             b.nav.Facing(),
		Life:            b.health.Life(),
		MaxLife:         b.health.Max(),
		PatrolIndex:     b.index,
		DamageTypes:     b.cfg.DamageTypes.String(),
		Active:          b.active,
		Blocked:         b.blocked,
		NearCooldown:    b.nearCooldown,
		DistantCooldown: b.distantCooldown,
	}
}

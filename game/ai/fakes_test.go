package ai

import (
	"testing"
	"time"

	"github.com/kasuganosora/patrolbot/game/nav"
	"github.com/kasuganosora/patrolbot/gamemath"
	"github.com/kasuganosora/patrolbot/scheduler"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testInterval = 100 * time.Millisecond

// fakeNav answers path queries from flags instead of a grid.
type fakeNav struct {
	pos       gamemath.Vec3
	dests     []gamemath.Vec3
	complete  bool // status of the active path
	reachable bool // answer to ComputePath
	remaining float64
	queries   [][2]gamemath.Vec3
	facing    float64
}

func (n *fakeNav) Facing() float64 { return n.facing }

func (n *fakeNav) Face(yaw float64) { n.facing = yaw }

func (n *fakeNav) Position() gamemath.Vec3 { return n.pos }

func (n *fakeNav) SetDestination(d gamemath.Vec3) { n.dests = append(n.dests, d) }

func (n *fakeNav) RemainingDistance() float64 { return n.remaining }

func (n *fakeNav) PathComplete() bool { return n.complete }

func (n *fakeNav) ComputePath(from, to gamemath.Vec3) nav.Path {
	n.queries = append(n.queries, [2]gamemath.Vec3{from, to})
	return nav.Path{Complete: n.reachable, Corners: []gamemath.Vec3{from, to}}
}

func (n *fakeNav) lastDest() gamemath.Vec3 {
	if len(n.dests) == 0 {
		return gamemath.Vec3{}
	}
	return n.dests[len(n.dests)-1]
}

type fakeTarget struct {
	pos  gamemath.Vec3
	hits []int
}

func (p *fakeTarget) Position() gamemath.Vec3 { return p.pos }
func (p *fakeTarget) ApplyDamage(amount int) { p.hits = append(p.hits, amount) }

type fakeSpawner struct {
	spawned []Projectile
}

func (s *fakeSpawner) SpawnProjectile(p Projectile) int64 {
	s.spawned = append(s.spawned, p)
	return int64(len(s.spawned))
}

type harness struct {
	bot     *Bot
	nav     *fakeNav
	target  *fakeTarget
	spawner *fakeSpawner
	sched   *scheduler.Scheduler
	cues    []Cue
	removed int
}

func defaultConfig() BotConfig {
	return BotConfig{
		Name:                 "guard",
		RadiusTrigger:        10,
		Life:                 15,
		DamageTypes:          DamageNear,
		Near:                 MeleeEmitter{Damage: 3, ReloadTime: time.Second},
		Distant:              ProjectileEmitter{Damage: 2, ReloadTime: 2 * time.Second, LiveTime: 500 * time.Millisecond, Speed: 8, LaunchForward: 0.5, LaunchUp: 1},
		DistanceRadiusDamage: 2,
	}
}

func newHarness(t *testing.T, cfg BotConfig) *harness {
	t.Helper()
	h := &harness{
		nav:     &fakeNav{complete: true, reachable: true, remaining: 5},
		target:  &fakeTarget{pos: gamemath.Vec3{X: 50}},
		spawner: &fakeSpawner{},
		sched:   scheduler.New(zap.NewNop()),
	}
	b, err := NewBot(cfg, Deps{
		Nav:          h.nav,
		Target:       h.target,
		Cues:         CueFunc(func(c Cue) { h.cues = append(h.cues, c) }),
		Projectiles:  h.spawner,
		Timers:       h.sched,
		TickInterval: testInterval,
		OnDestroyed:  func(*Bot) { h.removed++ },
		Logger:       zap.NewNop(),
	})
	require.NoError(t, err)
	h.bot = b
	return h
}

// world advances timers then the bot, the way the room loop does.
func (h *harness) tick() Branch {
	h.sched.Advance()
	return h.bot.Tick()
}

func (h *harness) advanceTimers(n int) {
	for i := 0; i < n; i++ {
		h.sched.Advance()
	}
}

// engage puts the target in range with a reachable path and ticks once.
func (h *harness) engage(t *testing.T, at gamemath.Vec3) {
	t.Helper()
	h.target.pos = at
	require.Equal(t, BranchTrigger, h.bot.Tick())
	require.True(t, h.bot.Active())
}

func (h *harness) count(c Cue) int {
	n := 0
	for _, got := range h.cues {
		if got == c {
			n++
		}
	}
	return n
}

package world

import (
	"testing"
	"time"

	"github.com/kasuganosora/patrolbot/config"
	"github.com/kasuganosora/patrolbot/game/ai"
	"github.com/kasuganosora/patrolbot/gamemath"
	"github.com/kasuganosora/patrolbot/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSpawner_ConfigOnly(t *testing.T) {
	room, level := newTestRoom(t, 10, 10, gamemath.Vec3{X: 9, Z: 9})
	cfgs := []config.BotConfig{{
		Name:        "guard",
		Position:    config.PointConfig{X: 1.5, Z: 1.5},
		Waypoints:   []config.PointConfig{{X: 4.5, Z: 1.5}},
		DamageTypes: []string{"near"},
		Near:        config.NearDamageConfig{Damage: 4, ReloadTime: 500 * time.Millisecond},
	}}

	bots, err := NewSpawner(room, level, cfgs, zap.NewNop()).SpawnAll()
	require.NoError(t, err)
	require.Len(t, bots, 1)

	b := bots[0]
	assert.Equal(t, "guard", b.Name)
	assert.Equal(t, gamemath.Vec3{X: 1.5, Z: 1.5}, b.Position())
	assert.Equal(t, []gamemath.Vec3{{X: 1.5, Z: 1.5}, {X: 4.5, Z: 1.5}}, b.PatrolPoints())
	assert.Equal(t, 15, b.Life(), "default life")
	assert.Equal(t, "near", b.Snapshot().DamageTypes)
}

func TestSpawner_LevelPlacementOverridesConfig(t *testing.T) {
	level := resource.OpenLevel(10, 10, 1)
	level.Bots = []resource.BotPlacement{
		{Name: "guard", Position: gamemath.Vec3{X: 7.5, Z: 7.5}, Waypoints: []gamemath.Vec3{{X: 7.5, Z: 2.5}}},
		{Name: "lurker", Position: gamemath.Vec3{X: 0.5, Z: 9.5}},
	}
	room := NewRoom(level, NewPlayer(gamemath.Vec3{X: 0.5, Z: 0.5}, 100, nil), Options{TickInterval: testTick}, nil)
	cfgs := []config.BotConfig{{
		Name:        "guard",
		Position:    config.PointConfig{X: 1.5, Z: 1.5},
		Life:        30,
		DamageTypes: []string{"near", "distant"},
	}}

	bots, err := NewSpawner(room, level, cfgs, nil).SpawnAll()
	require.NoError(t, err)
	require.Len(t, bots, 2)

	guard := bots[0]
	assert.Equal(t, gamemath.Vec3{X: 7.5, Z: 7.5}, guard.Position())
	assert.Equal(t, []gamemath.Vec3{{X: 7.5, Z: 7.5}, {X: 7.5, Z: 2.5}}, guard.PatrolPoints())
	assert.Equal(t, 30, guard.Life())
	assert.Equal(t, "near|distant", guard.Snapshot().DamageTypes)

	lurker := bots[1]
	assert.Equal(t, "lurker", lurker.Name)
	assert.Equal(t, gamemath.Vec3{X: 0.5, Z: 9.5}, lurker.Position())
	assert.Equal(t, "none", lurker.Snapshot().DamageTypes, "default bots carry no damage variant")

	assert.Len(t, room.Bots(), 2)
}

func TestSpawner_BadDamageType(t *testing.T) {
	room, level := newTestRoom(t, 4, 4, gamemath.Vec3{})
	cfgs := []config.BotConfig{{Name: "odd", DamageTypes: []string{"poison"}}}

	_, err := NewSpawner(room, level, cfgs, nil).SpawnAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrInvalidConfig)
	assert.Contains(t, err.Error(), `"odd"`)
	assert.Empty(t, room.Bots())
}

func TestSpawner_NilLevel(t *testing.T) {
	room, _ := newTestRoom(t, 4, 4, gamemath.Vec3{})
	bots, err := NewSpawner(room, nil, []config.BotConfig{{Name: "solo"}}, nil).SpawnAll()
	require.NoError(t, err)
	require.Len(t, bots, 1)
	assert.Equal(t, gamemath.Vec3{}, bots[0].Position())
}

package resource

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/kasuganosora/patrolbot/gamemath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLevel_Arena(t *testing.T) {
	lv, err := LoadLevel(os.DirFS("testdata"), "arena.tmx", 1)
	require.NoError(t, err)

	require.NotNil(t, lv.Pass)
	assert.Equal(t, 6, lv.Pass.Width)
	assert.Equal(t, 4, lv.Pass.Height)
	assert.Equal(t, 4, lv.Pass.BlockedCount())
	assert.False(t, lv.Pass.CanPass(2, 1))
	assert.False(t, lv.Pass.CanPass(3, 2))
	assert.True(t, lv.Pass.CanPass(0, 0))

	require.NotNil(t, lv.PlayerSpawn)
	assert.Equal(t, gamemath.Vec3{X: 5.5, Z: 2.5}, *lv.PlayerSpawn)

	guard, ok := lv.Placement("guard")
	require.True(t, ok)
	assert.Equal(t, gamemath.Vec3{X: 0.5, Z: 0.5}, guard.Position)
	assert.Equal(t, []gamemath.Vec3{{X: 5.5, Z: 0.5}, {X: 5.5, Z: 3.5}}, guard.Waypoints, "waypoints sorted by order")

	_, ok = lv.Placement("nobody")
	assert.False(t, ok)
}

func TestLoadLevel_CellSizeScales(t *testing.T) {
	lv, err := LoadLevel(os.DirFS("testdata"), "arena.tmx", 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, lv.CellSize)
	assert.Equal(t, gamemath.Vec3{X: 11, Z: 5}, *lv.PlayerSpawn)
}

func TestLoadLevel_MissingFile(t *testing.T) {
	_, err := LoadLevel(fstest.MapFS{}, "missing.tmx", 1)
	assert.Error(t, err)
}

func TestOpenLevel(t *testing.T) {
	lv := OpenLevel(5, 5, 0)
	assert.Equal(t, 1.0, lv.CellSize)
	assert.Equal(t, 0, lv.Pass.BlockedCount())
	assert.Nil(t, lv.PlayerSpawn)
}

func TestLoadLevel_ShippedArena(t *testing.T) {
	lv, err := LoadLevel(os.DirFS("../levels"), "arena.tmx", 1)
	require.NoError(t, err)

	assert.Equal(t, 24, lv.Pass.Width)
	assert.Equal(t, 16, lv.Pass.Height)
	assert.Equal(t, 92, lv.Pass.BlockedCount(), "border plus two pillars")
	require.NotNil(t, lv.PlayerSpawn)
	assert.Equal(t, gamemath.Vec3{X: 12.5, Z: 8.5}, *lv.PlayerSpawn)

	guard, ok := lv.Placement("guard")
	require.True(t, ok)
	assert.Equal(t, gamemath.Vec3{X: 3.5, Z: 3.5}, guard.Position)
	assert.Len(t, guard.Waypoints, 3)

	sentry, ok := lv.Placement("sentry")
	require.True(t, ok)
	assert.Equal(t, []gamemath.Vec3{{X: 8.5, Z: 2.5}, {X: 16.5, Z: 2.5}}, sentry.Waypoints)

	for _, b := range lv.Bots {
		for _, w := range append([]gamemath.Vec3{b.Position}, b.Waypoints...) {
			assert.True(t, lv.Pass.CanPass(int(w.X), int(w.Z)), "%s point %v on a wall", b.Name, w)
		}
	}
}

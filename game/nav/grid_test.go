package nav

import (
	"testing"

	"github.com/kasuganosora/patrolbot/gamemath"
	"github.com/kasuganosora/patrolbot/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid_CellConversion(t *testing.T) {
	g := NewGrid(resource.NewPassabilityMap(4, 4), 2)
	assert.Equal(t, Point{1, 0}, g.CellOf(gamemath.Vec3{X: 2.5, Z: 1.9}))
	assert.Equal(t, gamemath.Vec3{X: 3, Y: 7, Z: 5}, g.CenterOf(Point{1, 2}, 7))
	assert.Equal(t, Point{-1, 0}, g.CellOf(gamemath.Vec3{X: -0.1}))
	assert.False(t, g.Walkable(gamemath.Vec3{X: -0.1}))
}

func TestGrid_ComputePath_StraightHasNoInnerCorners(t *testing.T) {
	g := NewGrid(resource.NewPassabilityMap(10, 1), 1)
	from := gamemath.Vec3{X: 0.5, Z: 0.5}
	to := gamemath.Vec3{X: 8.2, Z: 0.5}
	p := g.ComputePath(from, to)
	require.True(t, p.Complete)
	assert.Equal(t, []gamemath.Vec3{from, to}, p.Corners)
	assert.InDelta(t, 7.7, p.Length(), 1e-9)
}

func TestGrid_ComputePath_TurnsAtCorners(t *testing.T) {
	g := NewGrid(wallMap(), 1)
	from := gamemath.Vec3{X: 0.5, Z: 0.5}
	to := gamemath.Vec3{X: 4.5, Z: 0.5}
	p := g.ComputePath(from, to)
	require.True(t, p.Complete)
	assert.Equal(t, from, p.Corners[0])
	assert.Equal(t, to, p.Corners[len(p.Corners)-1])
	assert.Greater(t, len(p.Corners), 2)
	assert.InDelta(t, 12.0, p.Length(), 1e-9)
}

func TestGrid_ComputePath_SameCell(t *testing.T) {
	g := NewGrid(resource.NewPassabilityMap(3, 3), 1)
	from := gamemath.Vec3{X: 1.2, Z: 1.2}
	to := gamemath.Vec3{X: 1.8, Z: 1.4}
	p := g.ComputePath(from, to)
	assert.True(t, p.Complete)
	assert.Equal(t, []gamemath.Vec3{from, to}, p.Corners)
}

func TestGrid_ComputePath_Partial(t *testing.T) {
	pm := resource.NewPassabilityMap(4, 1)
	pm.SetPass(3, 0, false)
	g := NewGrid(pm, 1)
	from := gamemath.Vec3{X: 0.5, Z: 0.5}
	p := g.ComputePath(from, gamemath.Vec3{X: 3.5, Z: 0.5})
	assert.False(t, p.Complete)
	assert.Equal(t, []gamemath.Vec3{from, {X: 2.5, Z: 0.5}}, p.Corners)
}

func TestGrid_ComputePath_StartOffGrid(t *testing.T) {
	g := NewGrid(resource.NewPassabilityMap(2, 2), 1)
	from := gamemath.Vec3{X: -3}
	p := g.ComputePath(from, gamemath.Vec3{X: 1.5, Z: 1.5})
	assert.False(t, p.Complete)
	assert.Equal(t, []gamemath.Vec3{from}, p.Corners)
}

package nav

import (
	"testing"

	"github.com/kasuganosora/patrolbot/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wallMap() *resource.PassabilityMap {
	// 5x5 with a vertical wall at x=2 for y=0..3; the gap is at y=4.
	pm := resource.NewPassabilityMap(5, 5)
	for y := 0; y < 4; y++ {
		pm.SetPass(2, y, false)
	}
	return pm
}

func TestAStar_SameCell(t *testing.T) {
	path, complete := AStar(resource.NewPassabilityMap(3, 3), Point{1, 1}, Point{1, 1})
	assert.True(t, complete)
	assert.Empty(t, path)
	assert.NotNil(t, path)
}

func TestAStar_StraightLine(t *testing.T) {
	path, complete := AStar(resource.NewPassabilityMap(5, 1), Point{0, 0}, Point{4, 0})
	require.True(t, complete)
	assert.Equal(t, []Point{{1, 0}, {2, 0}, {3, 0}, {4, 0}}, path)
}

func TestAStar_AroundWall(t *testing.T) {
	path, complete := AStar(wallMap(), Point{0, 0}, Point{4, 0})
	require.True(t, complete)
	// Down to row 4, across the gap, back up: 4 + 4 + 4 steps.
	assert.Len(t, path, 12)
	assert.Equal(t, Point{4, 0}, path[len(path)-1])
	for _, p := range path {
		assert.True(t, wallMap().CanPass(p.X, p.Y), "path crosses wall at %v", p)
	}
}

func TestAStar_UnreachableReturnsPartialToClosest(t *testing.T) {
	pm := wallMap()
	pm.SetPass(2, 4, false) // seal the gap
	path, complete := AStar(pm, Point{0, 2}, Point{4, 2})
	assert.False(t, complete)
	require.NotEmpty(t, path)
	assert.Equal(t, Point{1, 2}, path[len(path)-1])
}

func TestAStar_BlockedTarget(t *testing.T) {
	pm := resource.NewPassabilityMap(4, 1)
	pm.SetPass(3, 0, false)
	path, complete := AStar(pm, Point{0, 0}, Point{3, 0})
	assert.False(t, complete)
	assert.Equal(t, []Point{{1, 0}, {2, 0}}, path)
}

func TestAStar_NilMapOrBlockedStart(t *testing.T) {
	path, complete := AStar(nil, Point{}, Point{1, 1})
	assert.Nil(t, path)
	assert.False(t, complete)

	pm := resource.NewPassabilityMap(2, 2)
	pm.SetPass(0, 0, false)
	path, complete = AStar(pm, Point{}, Point{1, 1})
	assert.Nil(t, path)
	assert.False(t, complete)
}

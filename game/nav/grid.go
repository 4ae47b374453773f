// Package nav computes paths over a walkable grid and moves bots along them.
package nav

import (
	"math"

	"github.com/kasuganosora/patrolbot/gamemath"
	"github.com/kasuganosora/patrolbot/resource"
)

// Path is the result of a path query.
type Path struct {
	Complete bool
	Corners  []gamemath.Vec3
}

// Length returns the length of the polyline through the corners.
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p.Corners); i++ {
		total += gamemath.Distance(p.Corners[i-1], p.Corners[i])
	}
	return total
}

// Grid maps world positions onto a passability map. Cell (x, y) covers
// world X in [x*CellSize, (x+1)*CellSize) and Z likewise for y.
type Grid struct {
	pass     *resource.PassabilityMap
	cellSize float64
}

// NewGrid wraps pm; a non-positive cellSize means 1.
func NewGrid(pm *resource.PassabilityMap, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{pass: pm, cellSize: cellSize}
}

// CellSize returns the world size of one cell.
func (g *Grid) CellSize() float64 { return g.cellSize }

// CellOf returns the cell containing p.
func (g *Grid) CellOf(p gamemath.Vec3) Point {
	return Point{
		X: int(math.Floor(p.X / g.cellSize)),
		Y: int(math.Floor(p.Z / g.cellSize)),
	}
}

// CenterOf returns the world centre of cell c at height y.
func (g *Grid) CenterOf(c Point, y float64) gamemath.Vec3 {
	return gamemath.Vec3{
		X: (float64(c.X) + 0.5) * g.cellSize,
		Y: y,
		Z: (float64(c.Y) + 0.5) * g.cellSize,
	}
}

// Walkable reports whether p lies on a passable cell.
func (g *Grid) Walkable(p gamemath.Vec3) bool {
	c := g.CellOf(p)
	return g.pass.CanPass(c.X, c.Y)
}

// ComputePath finds a path from `from` to `to`. Corners begin at from, keep
// only the cells where the direction changes, and end at to for a complete
// path or at the centre of the closest reachable cell otherwise.
func (g *Grid) ComputePath(from, to gamemath.Vec3) Path {
	cells, complete := AStar(g.pass, g.CellOf(from), g.CellOf(to))
	if cells == nil {
		return Path{Complete: false, Corners: []gamemath.Vec3{from}}
	}

	corners := []gamemath.Vec3{from}
	prev := g.CellOf(from)
	for i, c := range cells {
		if i+1 < len(cells) {
			next := cells[i+1]
			if next.X-c.X == c.X-prev.X && next.Y-c.Y == c.Y-prev.Y {
				prev = c
				continue
			}
			corners = append(corners, g.CenterOf(c, from.Y))
		}
		prev = c
	}
	if complete {
		corners = append(corners, to)
	} else if len(cells) > 0 {
		corners = append(corners, g.CenterOf(cells[len(cells)-1], from.Y))
	}
	return Path{Complete: complete, Corners: corners}
}

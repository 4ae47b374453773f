package nav

import (
	"container/heap"

	"github.com/kasuganosora/patrolbot/resource"
)

// Point is a 2D grid coordinate.
type Point struct {
	X, Y int
}

var dirs = [4]Point{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}

func manhattan(a, b Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

type node struct {
	pt     Point
	g, f   int
	parent *node
	index  int
}

type openSet []*node

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	return o[i].g > o[j].g
}
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openSet) Push(x any) {
	n := x.(*node)
	n.index = len(*o)
	*o = append(*o, n)
}
func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	*o = old[:len(old)-1]
	return n
}

// AStar finds the shortest passable 4-neighbour path from `from` to `to`.
// The returned cells exclude the start and include the end.
// When `to` cannot be reached the path leads to the explored cell closest to
// it and complete is false.
func AStar(pm *resource.PassabilityMap, from, to Point) (path []Point, complete bool) {
	if pm == nil || !pm.CanPass(from.X, from.Y) {
		return nil, false
	}
	if from == to {
		return []Point{}, true
	}

	closed := make(map[Point]bool)
	gScore := make(map[Point]int)

	start := &node{pt: from, f: manhattan(from, to)}
	gScore[from] = 0
	open := &openSet{}
	heap.Push(open, start)

	best := start
	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if closed[cur.pt] {
			continue
		}
		closed[cur.pt] = true

		if cur.pt == to {
			return reconstruct(cur), true
		}
		if h, bh := manhattan(cur.pt, to), manhattan(best.pt, to); h < bh || (h == bh && cur.g < best.g) {
			best = cur
		}

		for _, d := range dirs {
			np := Point{cur.pt.X + d.X, cur.pt.Y + d.Y}
			if closed[np] || !pm.CanPass(np.X, np.Y) {
				continue
			}
			ng := cur.g + 1
			if prev, ok := gScore[np]; !ok || ng < prev {
				gScore[np] = ng
				heap.Push(open, &node{pt: np, g: ng, f: ng + manhattan(np, to), parent: cur})
			}
		}
	}
	return reconstruct(best), false
}

func reconstruct(n *node) []Point {
	var path []Point
	for ; n.parent != nil; n = n.parent {
		path = append(path, n.pt)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	if path == nil {
		path = []Point{}
	}
	return path
}

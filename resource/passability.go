package resource

// PassabilityMap stores whether each (x, y) grid cell can be walked on.
type PassabilityMap struct {
	Width  int
	Height int
	// blocked[y*Width+x]
	blocked []bool
}

// NewPassabilityMap creates a w×h map with every cell passable.
func NewPassabilityMap(w, h int) *PassabilityMap {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &PassabilityMap{Width: w, Height: h, blocked: make([]bool, w*h)}
}

// InBounds reports whether (x, y) lies on the map.
func (pm *PassabilityMap) InBounds(x, y int) bool {
	return x >= 0 && x < pm.Width && y >= 0 && y < pm.Height
}

// SetPass marks a cell passable or blocked. Out-of-bounds writes are ignored.
func (pm *PassabilityMap) SetPass(x, y int, passable bool) {
	if !pm.InBounds(x, y) {
		return
	}
	pm.blocked[y*pm.Width+x] = !passable
}

// CanPass reports whether the cell at (x, y) is walkable.
func (pm *PassabilityMap) CanPass(x, y int) bool {
	if pm == nil || !pm.InBounds(x, y) {
		return false
	}
	return !pm.blocked[y*pm.Width+x]
}

// BlockedCount returns the number of impassable cells.
func (pm *PassabilityMap) BlockedCount() int {
	n := 0
	for _, b := range pm.blocked {
		if b {
			n++
		}
	}
	return n
}

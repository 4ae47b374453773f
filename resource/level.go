package resource

import (
	"fmt"
	"io/fs"
	"sort"

	"github.com/kasuganosora/patrolbot/gamemath"
	"github.com/lafriks/go-tiled"
)

// Layer and object group names read from TMX levels.
const (
	CollisionLayer  = "collision"
	PlayerGroup     = "player"
	BotGroup        = "bots"
	WaypointGroup   = "waypoints"
	waypointBotProp = "bot"
	waypointOrder   = "order"
)

// Level is the navigation and placement data for one arena.
type Level struct {
	Pass        *PassabilityMap
	CellSize    float64
	PlayerSpawn *gamemath.Vec3
	Bots        []BotPlacement
}

// BotPlacement positions a named bot and its patrol route.
type BotPlacement struct {
	Name      string
	Position  gamemath.Vec3
	Waypoints []gamemath.Vec3
}

// Placement returns the placement for the bot called name.
func (l *Level) Placement(name string) (BotPlacement, bool) {
	for _, b := range l.Bots {
		if b.Name == name {
			return b, true
		}
	}
	return BotPlacement{}, false
}

// OpenLevel returns an obstacle-free w×h level.
func OpenLevel(w, h int, cellSize float64) *Level {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Level{Pass: NewPassabilityMap(w, h), CellSize: cellSize}
}

// LoadLevel parses a TMX file at path within fsys. Tiles present on the
// collision layer are impassable; pixel coordinates of objects are scaled so
// one tile equals cellSize world units.
func LoadLevel(fsys fs.FS, path string, cellSize float64) (*Level, error) {
	m, err := tiled.LoadFile(path, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", path, err)
	}
	if m.TileWidth <= 0 || m.TileHeight <= 0 {
		return nil, fmt.Errorf("load TMX %s: invalid tile size %dx%d", path, m.TileWidth, m.TileHeight)
	}
	if cellSize <= 0 {
		cellSize = 1
	}

	lv := &Level{Pass: NewPassabilityMap(m.Width, m.Height), CellSize: cellSize}
	toWorld := func(px, py float64) gamemath.Vec3 {
		return gamemath.Vec3{
			X: px / float64(m.TileWidth) * cellSize,
			Z: py / float64(m.TileHeight) * cellSize,
		}
	}

	for _, layer := range m.Layers {
		if layer.Name != CollisionLayer {
			continue
		}
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				idx := y*m.Width + x
				if idx >= len(layer.Tiles) {
					continue
				}
				if tile := layer.Tiles[idx]; tile != nil && !tile.IsNil() {
					lv.Pass.SetPass(x, y, false)
				}
			}
		}
		break
	}

	type orderedPoint struct {
		order int
		pos   gamemath.Vec3
	}
	routes := make(map[string][]orderedPoint)

	for _, og := range m.ObjectGroups {
		switch og.Name {
		case PlayerGroup:
			if len(og.Objects) > 0 {
				p := toWorld(og.Objects[0].X, og.Objects[0].Y)
				lv.PlayerSpawn = &p
			}
		case BotGroup:
			for _, o := range og.Objects {
				if o.Name == "" {
					return nil, fmt.Errorf("load TMX %s: bot object %d has no name", path, o.ID)
				}
				lv.Bots = append(lv.Bots, BotPlacement{Name: o.Name, Position: toWorld(o.X, o.Y)})
			}
		case WaypointGroup:
			for _, o := range og.Objects {
				owner := o.Properties.GetString(waypointBotProp)
				if owner == "" {
					continue
				}
				routes[owner] = append(routes[owner], orderedPoint{
					order: o.Properties.GetInt(waypointOrder),
					pos:   toWorld(o.X, o.Y),
				})
			}
		}
	}

	for i := range lv.Bots {
		pts := routes[lv.Bots[i].Name]
		sort.SliceStable(pts, func(a, b int) bool { return pts[a].order < pts[b].order })
		for _, p := range pts {
			lv.Bots[i].Waypoints = append(lv.Bots[i].Waypoints, p.pos)
		}
	}
	return lv, nil
}

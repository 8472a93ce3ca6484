package world

// Terrain is what a cell contains, independent of agent occupancy.
type Terrain uint8

const (
	TerrainEmpty Terrain = iota
	TerrainObstacle
	TerrainOrb
	TerrainHole
	TerrainFilledHole
)

var terrainNames = [...]string{"EMPTY", "OBSTACLE", "ORB", "HOLE", "FILLED_HOLE"}

func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "UNKNOWN"
}

// Cell is one grid square: a terrain token plus the ids of agents standing on
// it. Occupancy and terrain are orthogonal; agents stand on holes and orbs
// without consuming them.
type Cell struct {
	Terrain   Terrain  `json:"terrain"`
	Occupants []string `json:"occupants,omitempty"`
}

func (c *Cell) addOccupant(id string) {
	for _, o := range c.Occupants {
		if o == id {
			return
		}
	}
	c.Occupants = append(c.Occupants, id)
}

func (c *Cell) removeOccupant(id string) {
	for i, o := range c.Occupants {
		if o == id {
			c.Occupants = append(c.Occupants[:i], c.Occupants[i+1:]...)
			if len(c.Occupants) == 0 {
				c.Occupants = nil
			}
			return
		}
	}
}

func (c Cell) HasOccupant(id string) bool {
	for _, o := range c.Occupants {
		if o == id {
			return true
		}
	}
	return false
}

// Clone returns a copy with its own occupant slice.
func (c Cell) Clone() Cell {
	out := Cell{Terrain: c.Terrain}
	if len(c.Occupants) > 0 {
		out.Occupants = append([]string(nil), c.Occupants...)
	}
	return out
}

// ViewCell is one entry of an agent's local view. Cells outside the grid are
// reported with OutOfBounds set so agents can learn the boundary.
type ViewCell struct {
	Terrain     Terrain
	Occupants   []string
	OutOfBounds bool
}

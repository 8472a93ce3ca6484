package world

import "fmt"

// Vec2i is a grid position. X grows rightward, Y grows downward; (0,0) is the
// top-left corner.
type Vec2i struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (v Vec2i) Add(o Vec2i) Vec2i { return Vec2i{v.X + o.X, v.Y + o.Y} }

func (v Vec2i) String() string { return fmt.Sprintf("(%d,%d)", v.X, v.Y) }

// Manhattan is the L1 distance between two positions, the metric agents use
// since they never move diagonally.
func Manhattan(a, b Vec2i) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction is one of the four cardinal headings. The numeric order matches
// a clockwise rotation.
type Direction uint8

const (
	DirUp Direction = iota
	DirRight
	DirDown
	DirLeft
)

var dirDeltas = [4]Vec2i{
	DirUp:    {0, -1},
	DirRight: {1, 0},
	DirDown:  {0, 1},
	DirLeft:  {-1, 0},
}

var dirNames = [4]string{"UP", "RIGHT", "DOWN", "LEFT"}

// Clockwise returns the next heading in a clockwise rotation.
func (d Direction) Clockwise() Direction { return (d + 1) % 4 }

// Delta is the unit step for the heading.
func (d Direction) Delta() Vec2i { return dirDeltas[d%4] }

func (d Direction) String() string { return dirNames[d%4] }

func DirectionFromString(v string) (Direction, bool) {
	for i, name := range dirNames {
		if name == v {
			return Direction(i), true
		}
	}
	return DirUp, false
}

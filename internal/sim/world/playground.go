package world

import (
	"math/rand"
	"sort"
)

// Playground is the authoritative grid. Every mutation goes through its
// methods; agents hold beliefs about it but never pointers into it. All
// methods assume a single caller, matching the controller's round loop.
type Playground struct {
	width  int
	height int
	cells  [][]Cell

	numHoles int
	numOrbs  int

	// starts tracks claimed start positions during setup.
	starts map[Vec2i]bool

	// orbs is the registry of loose orb positions, kept in lockstep with the
	// grid so redistribution never scans the whole board.
	orbs map[Vec2i]bool

	// redistributePermille is the per-orb drift probability after a deposit.
	redistributePermille int

	rng *rand.Rand
}

func NewPlayground(width, height, numHoles, numOrbs int, rng *rand.Rand) *Playground {
	cells := make([][]Cell, height)
	for y := range cells {
		cells[y] = make([]Cell, width)
	}
	return &Playground{
		width:                width,
		height:               height,
		cells:                cells,
		numHoles:             numHoles,
		numOrbs:              numOrbs,
		starts:               map[Vec2i]bool{},
		orbs:                 map[Vec2i]bool{},
		redistributePermille: 100,
		rng:                  rng,
	}
}

func (p *Playground) Width() int  { return p.width }
func (p *Playground) Height() int { return p.height }

// SetRedistributePermille overrides the drift probability, clamped to
// [0,1000].
func (p *Playground) SetRedistributePermille(v int) {
	if v < 0 {
		v = 0
	}
	if v > 1000 {
		v = 1000
	}
	p.redistributePermille = v
}

func (p *Playground) IsValidPosition(pos Vec2i) bool {
	return pos.X >= 0 && pos.X < p.width && pos.Y >= 0 && pos.Y < p.height
}

// CellState returns a copy of the cell at pos. Out-of-bounds positions return
// a zero cell; callers that care check IsValidPosition first.
func (p *Playground) CellState(pos Vec2i) Cell {
	if !p.IsValidPosition(pos) {
		return Cell{}
	}
	return p.cells[pos.Y][pos.X].Clone()
}

// AddAgent claims the agent's start position during setup. It fails when the
// position is invalid or another agent already claimed it.
func (p *Playground) AddAgent(a *Agent) bool {
	if !p.IsValidPosition(a.Pos) || p.starts[a.Pos] {
		return false
	}
	p.starts[a.Pos] = true
	p.cells[a.Pos.Y][a.Pos.X].addOccupant(a.ID)
	return true
}

// RandomFreeStart picks a uniformly random unclaimed empty cell for an agent
// without an explicit start. ok is false when the grid is exhausted.
func (p *Playground) RandomFreeStart() (Vec2i, bool) {
	free := make([]Vec2i, 0, p.width*p.height)
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			pos := Vec2i{x, y}
			if !p.starts[pos] && p.cells[y][x].Terrain == TerrainEmpty {
				free = append(free, pos)
			}
		}
	}
	if len(free) == 0 {
		return Vec2i{}, false
	}
	return free[p.rng.Intn(len(free))], true
}

// PlaceHolesAndOrbs scatters the configured holes then orbs over empty
// non-start cells. When the grid runs out of room, placement is partial:
// holes win over orbs, and the counts simply fall short.
func (p *Playground) PlaceHolesAndOrbs() {
	available := make([]Vec2i, 0, p.width*p.height)
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			pos := Vec2i{x, y}
			if !p.starts[pos] && p.cells[y][x].Terrain == TerrainEmpty {
				available = append(available, pos)
			}
		}
	}
	p.rng.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})

	n := 0
	for i := 0; i < p.numHoles && n < len(available); i++ {
		pos := available[n]
		p.cells[pos.Y][pos.X].Terrain = TerrainHole
		n++
	}
	for i := 0; i < p.numOrbs && n < len(available); i++ {
		pos := available[n]
		p.cells[pos.Y][pos.X].Terrain = TerrainOrb
		p.orbs[pos] = true
		n++
	}
}

// SurroundingCells returns the fov x fov view centered on pos. An even fov is
// widened by one so the center stays well defined. Cells outside the grid
// carry the OutOfBounds sentinel instead of fabricated terrain.
func (p *Playground) SurroundingCells(pos Vec2i, fov int) [][]ViewCell {
	if fov < 1 {
		fov = 1
	}
	if fov%2 == 0 {
		fov++
	}
	half := fov / 2

	view := make([][]ViewCell, fov)
	for i := 0; i < fov; i++ {
		view[i] = make([]ViewCell, fov)
		for j := 0; j < fov; j++ {
			abs := Vec2i{pos.X - half + j, pos.Y - half + i}
			if !p.IsValidPosition(abs) {
				view[i][j] = ViewCell{OutOfBounds: true}
				continue
			}
			c := p.cells[abs.Y][abs.X]
			vc := ViewCell{Terrain: c.Terrain}
			if len(c.Occupants) > 0 {
				vc.Occupants = append([]string(nil), c.Occupants...)
			}
			view[i][j] = vc
		}
	}
	return view
}

// AgentExitCell removes the agent's id from its current cell.
func (p *Playground) AgentExitCell(a *Agent) {
	if !p.IsValidPosition(a.Pos) {
		return
	}
	p.cells[a.Pos.Y][a.Pos.X].removeOccupant(a.ID)
}

// AgentEnterCell moves the agent's occupancy to pos. The move fails when pos
// is outside the grid or the destination is an obstacle; on failure nothing
// changes. Terrain is never altered by movement, and multiple agents may
// share a cell.
func (p *Playground) AgentEnterCell(pos Vec2i, a *Agent) bool {
	if !p.IsValidPosition(pos) {
		return false
	}
	if p.cells[pos.Y][pos.X].Terrain == TerrainObstacle {
		return false
	}
	p.AgentExitCell(a)
	p.cells[pos.Y][pos.X].addOccupant(a.ID)
	return true
}

// PickOrb removes the orb at pos from grid and registry. It fails when pos is
// invalid or holds no orb.
func (p *Playground) PickOrb(pos Vec2i) bool {
	if !p.IsValidPosition(pos) {
		return false
	}
	if p.cells[pos.Y][pos.X].Terrain != TerrainOrb {
		return false
	}
	p.cells[pos.Y][pos.X].Terrain = TerrainEmpty
	delete(p.orbs, pos)
	return true
}

// PlaceOrb deposits the agent's carried orb into the hole at pos, turning it
// into a filled hole. A successful deposit triggers exactly one
// redistribution pass over the remaining loose orbs.
func (p *Playground) PlaceOrb(pos Vec2i, a *Agent) bool {
	if !p.IsValidPosition(pos) || !a.Carrying {
		return false
	}
	if p.cells[pos.Y][pos.X].Terrain != TerrainHole {
		return false
	}
	p.cells[pos.Y][pos.X].Terrain = TerrainFilledHole
	p.redistributeOrbs()
	return true
}

// redistributeOrbs gives every loose orb an independent chance to drift one
// step in a random cardinal direction. The direction is drawn before the
// probability check so a run's random sequence is stable. Orbs drift onto
// empty cells, are blocked by orbs, filled holes, obstacles and the boundary,
// and fall into open holes, filling them.
func (p *Playground) redistributeOrbs() {
	for _, pos := range p.OrbPositions() {
		if !p.orbs[pos] {
			// Consumed or displaced earlier in this same pass.
			continue
		}
		dir := Direction(p.rng.Intn(4))
		if p.rng.Float64() > float64(p.redistributePermille)/1000 {
			continue
		}
		dest := pos.Add(dir.Delta())
		if !p.IsValidPosition(dest) {
			continue
		}
		switch p.cells[dest.Y][dest.X].Terrain {
		case TerrainEmpty:
			p.cells[pos.Y][pos.X].Terrain = TerrainEmpty
			delete(p.orbs, pos)
			p.cells[dest.Y][dest.X].Terrain = TerrainOrb
			p.orbs[dest] = true
		case TerrainHole:
			p.cells[pos.Y][pos.X].Terrain = TerrainEmpty
			delete(p.orbs, pos)
			p.cells[dest.Y][dest.X].Terrain = TerrainFilledHole
		}
	}
}

// OrbPositions returns the registry positions in row-major order, so
// iteration order never depends on map layout.
func (p *Playground) OrbPositions() []Vec2i {
	out := make([]Vec2i, 0, len(p.orbs))
	for pos := range p.orbs {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func (p *Playground) OrbCount() int { return len(p.orbs) }

func (p *Playground) FilledHoleCount() int {
	n := 0
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			if p.cells[y][x].Terrain == TerrainFilledHole {
				n++
			}
		}
	}
	return n
}

// SnapshotGrid returns a deep copy of the grid for frames.
func (p *Playground) SnapshotGrid() [][]Cell {
	out := make([][]Cell, p.height)
	for y := 0; y < p.height; y++ {
		out[y] = make([]Cell, p.width)
		for x := 0; x < p.width; x++ {
			out[y][x] = p.cells[y][x].Clone()
		}
	}
	return out
}

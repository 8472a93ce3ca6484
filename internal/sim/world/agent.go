package world

import (
	"math/rand"

	"github.com/google/uuid"
)

// Agent holds one agent's private belief about the playground plus the
// decision loop that turns a local view into grid mutations. Belief grows
// from observed views only; the playground never writes into an agent.
type Agent struct {
	ID   string
	Type int

	Pos         Vec2i
	Dir         Direction
	Battery     int
	Carrying    bool
	FieldOfView int

	view [][]ViewCell

	// Belief. Known orbs and holes keep discovery order: ties between
	// equally distant targets resolve to the earliest discovery.
	KnownOrbs   []Vec2i
	KnownHoles  []Vec2i
	KnownFilled map[Vec2i]bool
	FilledByMe  map[Vec2i]bool
	Visited     map[Vec2i]bool

	Target       *Vec2i
	RandomTarget bool

	// Team mode state. Empty/unused unless the controller wires teammates.
	teammates []*Agent
	locked    []Vec2i

	rng *rand.Rand
}

// AgentOptions configures a new agent. Zero values fall back to defaults
// matching the reference behavior: fov 3, battery 30, a fresh UUID id.
type AgentOptions struct {
	ID          string
	Type        int
	FieldOfView int
	Battery     int
}

func NewAgent(pos Vec2i, opts AgentOptions, rng *rand.Rand) *Agent {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	fov := opts.FieldOfView
	if fov < 1 {
		fov = 3
	}
	if fov%2 == 0 {
		fov++
	}
	battery := opts.Battery
	if battery == 0 {
		battery = 30
	}
	typ := opts.Type
	if typ == 0 {
		typ = 1
	}
	return &Agent{
		ID:          id,
		Type:        typ,
		Pos:         pos,
		Dir:         DirUp,
		Battery:     battery,
		FieldOfView: fov,
		KnownFilled: map[Vec2i]bool{},
		FilledByMe:  map[Vec2i]bool{},
		Visited:     map[Vec2i]bool{pos: true},
		rng:         rng,
	}
}

// Score is the number of filled holes this agent has observed. It is the
// agent's own count, not a global tally.
func (a *Agent) Score() int { return len(a.KnownFilled) }

// OwnScore is the number of holes this agent filled itself.
func (a *Agent) OwnScore() int { return len(a.FilledByMe) }

// See stores the latest observed view. The view is consumed by the next Act.
func (a *Agent) See(view [][]ViewCell) *Agent {
	a.view = view
	return a
}

// Act runs one decision tick: perceive, interact-first, retarget, move.
func (a *Agent) Act(p *Playground) {
	a.updateItemPositions()
	if a.interact(p) {
		// The interaction changed the agent's own cell; refresh the view
		// center and re-scan before ending the turn.
		a.reperceiveCenter(p)
		a.updateItemPositions()
		return
	}

	a.updateTarget(p)
	if a.Target == nil {
		// Exploration exhausted: hold position for the round.
		return
	}

	a.faceTarget()
	a.stepForward(p)

	if a.Target != nil && *a.Target == a.Pos {
		a.clearTarget()
	}
}

// updateItemPositions scans the current view and folds newly visible orbs,
// holes and filled holes into belief, converting view indices to absolute
// grid positions.
func (a *Agent) updateItemPositions() {
	if len(a.view) == 0 {
		return
	}
	half := a.FieldOfView / 2
	for i, row := range a.view {
		for j, vc := range row {
			if vc.OutOfBounds {
				continue
			}
			abs := Vec2i{a.Pos.X - half + j, a.Pos.Y - half + i}
			switch vc.Terrain {
			case TerrainOrb:
				if !containsVec(a.KnownOrbs, abs) {
					a.KnownOrbs = append(a.KnownOrbs, abs)
					a.shareItems(shareOrb, true, abs)
				}
			case TerrainHole:
				if !containsVec(a.KnownHoles, abs) {
					a.KnownHoles = append(a.KnownHoles, abs)
					a.shareItems(shareHole, true, abs)
				}
			case TerrainFilledHole:
				if !a.KnownFilled[abs] {
					a.KnownFilled[abs] = true
					a.shareItems(shareFilled, true, abs)
				}
				a.KnownHoles = removeVec(a.KnownHoles, abs)
			case TerrainEmpty:
				// Team mode: a believed orb observed gone (picked by a
				// teammate, or drifted away) is pruned so nobody chases it.
				if len(a.teammates) > 0 && containsVec(a.KnownOrbs, abs) {
					a.KnownOrbs = removeVec(a.KnownOrbs, abs)
					a.shareItems(shareOrb, false, abs)
				}
			}
		}
	}
}

// interact applies the interact-first policy. A successful pick or deposit
// ends the agent's turn without moving.
func (a *Agent) interact(p *Playground) bool {
	cell := p.CellState(a.Pos)

	if a.Carrying && cell.Terrain == TerrainHole {
		if p.PlaceOrb(a.Pos, a) {
			a.Carrying = false
			a.KnownHoles = removeVec(a.KnownHoles, a.Pos)
			a.KnownFilled[a.Pos] = true
			a.FilledByMe[a.Pos] = true
			a.shareItems(shareFilled, true, a.Pos)
			a.unlock(a.Pos)
			if a.Target != nil && *a.Target == a.Pos {
				a.clearTarget()
			}
		}
		return true
	}
	if !a.Carrying && cell.Terrain == TerrainOrb {
		if p.PickOrb(a.Pos) {
			a.Carrying = true
			a.KnownOrbs = removeVec(a.KnownOrbs, a.Pos)
			a.shareItems(shareOrb, false, a.Pos)
			a.unlock(a.Pos)
			if a.Target != nil && *a.Target == a.Pos {
				a.clearTarget()
			}
		}
		return true
	}

	if a.Target != nil && *a.Target == a.Pos {
		a.unlock(a.Pos)
		a.clearTarget()
	}
	return false
}

func (a *Agent) reperceiveCenter(p *Playground) {
	if len(a.view) == 0 {
		return
	}
	half := a.FieldOfView / 2
	cell := p.CellState(a.Pos)
	vc := ViewCell{Terrain: cell.Terrain}
	if len(cell.Occupants) > 0 {
		vc.Occupants = cell.Occupants
	}
	a.view[half][half] = vc
}

// updateTarget keeps a non-random target, otherwise picks the nearest known
// candidate (holes when carrying, orbs otherwise). The choice is consumed
// from the belief list. With no candidates, a random unvisited position
// becomes a fallback target; a fully visited grid leaves the agent idle.
func (a *Agent) updateTarget(p *Playground) {
	if a.Target != nil && !a.RandomTarget {
		return
	}

	candidates := a.KnownHoles
	if !a.Carrying {
		candidates = a.KnownOrbs
	}
	if len(a.locked) > 0 {
		filtered := make([]Vec2i, 0, len(candidates))
		for _, c := range candidates {
			if !containsVec(a.locked, c) {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	if len(candidates) > 0 {
		nearest := a.nearest(candidates)
		if a.Carrying {
			a.KnownHoles = removeVec(a.KnownHoles, nearest)
		} else {
			a.KnownOrbs = removeVec(a.KnownOrbs, nearest)
		}
		a.Target = &nearest
		a.RandomTarget = false
		a.lock(nearest)
		return
	}

	if !a.RandomTarget {
		if pos, ok := a.randomUnvisited(p); ok {
			a.Target = &pos
			a.RandomTarget = true
		} else {
			a.Target = nil
			a.RandomTarget = false
		}
	}
}

// nearest returns the Manhattan-closest candidate; ties keep the earliest
// list entry (discovery order).
func (a *Agent) nearest(candidates []Vec2i) Vec2i {
	best := candidates[0]
	bestDist := Manhattan(a.Pos, best)
	for _, c := range candidates[1:] {
		if d := Manhattan(a.Pos, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// randomUnvisited samples uniformly from the complement of the visited set.
// Sampling the complement directly bounds the work; there is no retry loop.
func (a *Agent) randomUnvisited(p *Playground) (Vec2i, bool) {
	unvisited := make([]Vec2i, 0, p.Width()*p.Height())
	for y := 0; y < p.Height(); y++ {
		for x := 0; x < p.Width(); x++ {
			pos := Vec2i{x, y}
			if !a.Visited[pos] {
				unvisited = append(unvisited, pos)
			}
		}
	}
	if len(unvisited) == 0 {
		return Vec2i{}, false
	}
	return unvisited[a.rng.Intn(len(unvisited))], true
}

// faceTarget rotates clockwise until the agent faces its target, resolving
// the x axis before the y axis (agents dogleg, never move diagonally).
func (a *Agent) faceTarget() {
	t := *a.Target
	switch {
	case a.Pos.X < t.X:
		a.turnTo(DirRight)
	case a.Pos.X > t.X:
		a.turnTo(DirLeft)
	case a.Pos.Y < t.Y:
		a.turnTo(DirDown)
	case a.Pos.Y > t.Y:
		a.turnTo(DirUp)
	}
}

func (a *Agent) turnTo(d Direction) {
	for a.Dir != d {
		a.Dir = a.Dir.Clockwise()
	}
}

// stepForward attempts one step in the facing direction. Battery is spent on
// the attempt whether or not the move succeeds.
func (a *Agent) stepForward(p *Playground) {
	a.Battery--

	next := a.Pos.Add(a.Dir.Delta())
	if p.AgentEnterCell(next, a) {
		a.Pos = next
		a.Visited[next] = true
		a.shareItems(shareVisited, true, next)
	}
}

func (a *Agent) clearTarget() {
	a.Target = nil
	a.RandomTarget = false
}

// --- team mode -------------------------------------------------------------

type shareKind uint8

const (
	shareOrb shareKind = iota
	shareHole
	shareFilled
	shareVisited
	shareLock
)

// AddTeammates wires same-team agents for knowledge sharing. The agent
// itself and duplicates are skipped.
func (a *Agent) AddTeammates(agents []*Agent) {
	for _, other := range agents {
		if other.ID == a.ID {
			continue
		}
		dup := false
		for _, t := range a.teammates {
			if t.ID == other.ID {
				dup = true
				break
			}
		}
		if !dup {
			a.teammates = append(a.teammates, other)
		}
	}
}

func (a *Agent) shareItems(kind shareKind, add bool, pos Vec2i) {
	for _, t := range a.teammates {
		t.receive(kind, add, pos)
	}
}

func (a *Agent) receive(kind shareKind, add bool, pos Vec2i) {
	switch kind {
	case shareOrb:
		if add {
			if !containsVec(a.KnownOrbs, pos) {
				a.KnownOrbs = append(a.KnownOrbs, pos)
			}
		} else {
			a.KnownOrbs = removeVec(a.KnownOrbs, pos)
		}
	case shareHole:
		if add && !containsVec(a.KnownHoles, pos) {
			a.KnownHoles = append(a.KnownHoles, pos)
		}
	case shareFilled:
		if add {
			a.KnownHoles = removeVec(a.KnownHoles, pos)
			a.KnownFilled[pos] = true
		}
	case shareVisited:
		if add {
			a.Visited[pos] = true
		}
	case shareLock:
		if add {
			if !containsVec(a.locked, pos) {
				a.locked = append(a.locked, pos)
			}
		} else {
			a.locked = removeVec(a.locked, pos)
		}
	}
}

// lock reserves a chosen target so teammates skip it while this agent is en
// route. No-op without teammates, and random fallbacks are never locked.
func (a *Agent) lock(pos Vec2i) {
	if len(a.teammates) == 0 {
		return
	}
	if !containsVec(a.locked, pos) {
		a.locked = append(a.locked, pos)
	}
	a.shareItems(shareLock, true, pos)
}

func (a *Agent) unlock(pos Vec2i) {
	if !containsVec(a.locked, pos) {
		return
	}
	a.locked = removeVec(a.locked, pos)
	a.shareItems(shareLock, false, pos)
}

func containsVec(list []Vec2i, v Vec2i) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}

func removeVec(list []Vec2i, v Vec2i) []Vec2i {
	for i, e := range list {
		if e == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

package world

import "fmt"

// Debug helpers give tests deterministic preconditions without going through
// random placement. Not for use by the simulation itself.

// DebugSetTerrain forces the terrain token at pos, keeping the orb registry
// in sync with the mutation.
func (p *Playground) DebugSetTerrain(pos Vec2i, t Terrain) error {
	if !p.IsValidPosition(pos) {
		return fmt.Errorf("invalid position (%d,%d)", pos.X, pos.Y)
	}
	old := p.cells[pos.Y][pos.X].Terrain
	if old == TerrainOrb {
		delete(p.orbs, pos)
	}
	p.cells[pos.Y][pos.X].Terrain = t
	if t == TerrainOrb {
		p.orbs[pos] = true
	}
	return nil
}

// DebugSetAgentPos teleports an agent, updating occupancy on both cells.
func (c *Controller) DebugSetAgentPos(id string, pos Vec2i) bool {
	for _, a := range c.agents {
		if a.ID != id {
			continue
		}
		if !c.playground.AgentEnterCell(pos, a) {
			return false
		}
		a.Pos = pos
		a.Visited[pos] = true
		return true
	}
	return false
}

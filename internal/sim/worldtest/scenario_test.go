package worldtest

import (
	"testing"

	"github.com/GhanbarT/ball-and-hole/internal/sim/world"
)

// Full collect-and-deposit cycle on a 5x1 strip: discover the orb, walk to
// it, pick it up, discover the hole, walk there, deposit.
func TestScenario_CollectAndDeposit(t *testing.T) {
	h := NewHarness(t, world.Config{
		Width: 5, Height: 1,
		Agents: []world.AgentSpec{
			{ID: "a1", Start: &world.Vec2i{X: 0, Y: 0}, FieldOfView: 5},
		},
		Seed: 1,
	})
	h.SetTerrain(world.Vec2i{X: 2, Y: 0}, world.TerrainOrb)
	h.SetTerrain(world.Vec2i{X: 4, Y: 0}, world.TerrainHole)

	a := h.Agent("a1")

	h.StepN(2)
	if a.Pos != (world.Vec2i{X: 2, Y: 0}) {
		t.Fatalf("after 2 rounds: pos %v, want (2,0)", a.Pos)
	}

	h.Step() // pick up
	if !a.Carrying {
		t.Fatalf("round 3: expected pickup")
	}

	h.StepN(2)
	if a.Pos != (world.Vec2i{X: 4, Y: 0}) {
		t.Fatalf("after 5 rounds: pos %v, want (4,0)", a.Pos)
	}

	f := h.Step() // deposit
	if a.Carrying {
		t.Fatalf("round 6: expected deposit")
	}
	if f.FilledHoles != 1 || f.Orbs != 0 {
		t.Fatalf("frame counts: filled=%d orbs=%d", f.FilledHoles, f.Orbs)
	}
	if a.OwnScore() != 1 {
		t.Errorf("own score: got %d, want 1", a.OwnScore())
	}
}

// A deposit shakes the remaining orbs; without a deposit they never move.
func TestScenario_DepositTriggersDrift(t *testing.T) {
	h := NewHarness(t, world.Config{
		Width: 9, Height: 9,
		Agents: []world.AgentSpec{
			{ID: "a1", Start: &world.Vec2i{X: 0, Y: 0}, FieldOfView: 3},
		},
		RedistributePermille: 1000,
		Seed:                 2,
	})
	// A far-away orb the agent will not reach, a hole next to the agent.
	h.SetTerrain(world.Vec2i{X: 7, Y: 7}, world.TerrainOrb)
	h.SetTerrain(world.Vec2i{X: 1, Y: 0}, world.TerrainHole)

	a := h.Agent("a1")
	a.Carrying = true

	h.StepN(2) // walk onto the hole, deposit
	if a.Carrying {
		t.Fatalf("expected deposit within 2 rounds")
	}

	got := h.C.Playground().OrbPositions()
	if len(got) != 1 {
		t.Fatalf("orb count: got %d, want 1", len(got))
	}
	if got[0] == (world.Vec2i{X: 7, Y: 7}) {
		t.Errorf("deposit with permille 1000 should have drifted the orb")
	}
}

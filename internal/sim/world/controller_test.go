package world

import "testing"

func start(x, y int) *Vec2i { return &Vec2i{x, y} }

func mustController(t *testing.T, cfg Config) *Controller {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsStartCollision(t *testing.T) {
	_, err := New(Config{
		Width: 5, Height: 5,
		Agents: []AgentSpec{
			{ID: "a1", Start: start(2, 2)},
			{ID: "a2", Start: start(2, 2)},
		},
		Seed: 1,
	})
	if err == nil {
		t.Fatalf("expected setup error for colliding starts")
	}
}

func TestNew_RandomStartsAreDistinct(t *testing.T) {
	c := mustController(t, Config{
		Width: 3, Height: 3,
		Agents: []AgentSpec{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}, {ID: "a4"}},
		Seed:   5,
	})
	seen := map[Vec2i]bool{}
	for _, a := range c.Agents() {
		if seen[a.Pos] {
			t.Errorf("duplicate random start %v", a.Pos)
		}
		seen[a.Pos] = true
	}
}

func TestMaxScore(t *testing.T) {
	c := mustController(t, Config{
		Width: 8, Height: 8, NumHoles: 3, NumOrbs: 5,
		Agents: []AgentSpec{{ID: "a1", Start: start(0, 0)}},
		Seed:   1,
	})
	if got := c.MaxScore(); got != 3 {
		t.Errorf("max score: got %d, want 3", got)
	}
}

func TestScenario_Pickup(t *testing.T) {
	c := mustController(t, Config{
		Width: 5, Height: 5,
		Agents: []AgentSpec{{ID: "a1", Start: start(0, 0), FieldOfView: 3}},
		Seed:   1,
	})
	if err := c.Playground().DebugSetTerrain(Vec2i{1, 0}, TerrainOrb); err != nil {
		t.Fatal(err)
	}

	f1 := c.StepRound()
	a := c.Agents()[0]
	if a.Pos != (Vec2i{1, 0}) {
		t.Fatalf("round 1 pos: got %v, want (1,0)", a.Pos)
	}
	if a.Carrying {
		t.Fatalf("round 1: pickup happens on the next tick, not while moving in")
	}
	if f1.Orbs != 1 {
		t.Errorf("round 1 frame orbs: got %d, want 1", f1.Orbs)
	}

	f2 := c.StepRound()
	if !a.Carrying {
		t.Fatalf("round 2: expected pickup")
	}
	if f2.Orbs != 0 {
		t.Errorf("round 2 frame orbs: got %d, want 0", f2.Orbs)
	}
	if f2.Grid[0][1].Terrain != TerrainEmpty {
		t.Errorf("picked cell should be empty in the frame")
	}
}

func TestStepRound_SkipsExhaustedAgents(t *testing.T) {
	c := mustController(t, Config{
		Width: 9, Height: 9,
		Agents: []AgentSpec{{ID: "a1", Start: start(4, 4), Battery: 2}},
		Seed:   3,
	})
	a := c.Agents()[0]

	want := []int{1, 0, -1}
	for i, w := range want {
		c.StepRound()
		if a.Battery != w {
			t.Fatalf("round %d battery: got %d, want %d", i+1, a.Battery, w)
		}
	}
	if !c.Done() {
		t.Fatalf("single exhausted agent: Done should report true")
	}

	pos := a.Pos
	c.StepRound()
	if a.Battery != -1 || a.Pos != pos {
		t.Errorf("exhausted agent must be skipped entirely")
	}
}

func TestStepRound_DeterministicDigests(t *testing.T) {
	cfg := Config{
		Width: 10, Height: 10, NumHoles: 4, NumOrbs: 6,
		Agents: []AgentSpec{
			{ID: "a1"},
			{ID: "a2"},
		},
		Seed: 1234,
	}
	c1 := mustController(t, cfg)
	c2 := mustController(t, cfg)

	for r := 0; r < 15; r++ {
		f1, f2 := c1.StepRound(), c2.StepRound()
		if f1.Digest != f2.Digest {
			t.Fatalf("round %d: digests diverged", r+1)
		}
	}

	c3 := mustController(t, Config{
		Width: 10, Height: 10, NumHoles: 4, NumOrbs: 6,
		Agents: []AgentSpec{{ID: "a1"}, {ID: "a2"}},
		Seed:   4321,
	})
	if c3.StepRound().Digest == c1.Snapshot().Digest {
		t.Errorf("different seeds should not share digests")
	}
}

func TestStrategy_SequentialVsSimultaneousVisibility(t *testing.T) {
	build := func(s Strategy) *Controller {
		c := mustController(t, Config{
			Width: 7, Height: 7,
			Agents: []AgentSpec{
				{ID: "a1", Start: start(2, 2), FieldOfView: 3},
				{ID: "a2", Start: start(4, 2), FieldOfView: 5},
			},
			Strategy: s,
			Seed:     1,
		})
		// Orb under a1: a1 picks it up on its first tick.
		if err := c.Playground().DebugSetTerrain(Vec2i{2, 2}, TerrainOrb); err != nil {
			t.Fatal(err)
		}
		return c
	}

	// Sequential: a1 acts first, so a2 observes the already emptied cell and
	// never learns about the orb.
	seq := build(Sequential)
	seq.StepRound()
	a2 := seq.Agents()[1]
	if a2.Target != nil && *a2.Target == (Vec2i{2, 2}) && !a2.RandomTarget {
		t.Errorf("sequential: a2 targeted an orb it could not have seen")
	}
	if containsVec(a2.KnownOrbs, Vec2i{2, 2}) {
		t.Errorf("sequential: a2 learned a picked orb")
	}

	// Simultaneous: views snapshot the pre-round state, so a2 chases the orb
	// even though a1 removes it in the same round.
	sim := build(Simultaneous)
	sim.StepRound()
	a2 = sim.Agents()[1]
	if a2.Target == nil || *a2.Target != (Vec2i{2, 2}) || a2.RandomTarget {
		t.Errorf("simultaneous: a2 should target the pre-round orb, got %v", a2.Target)
	}
}

func TestSnapshot_IsDetachedFromLiveState(t *testing.T) {
	c := mustController(t, Config{
		Width: 4, Height: 4, NumOrbs: 2, NumHoles: 1,
		Agents: []AgentSpec{{ID: "a1", Start: start(0, 0)}},
		Seed:   9,
	})
	f := c.Snapshot()
	f.Grid[3][3].Terrain = TerrainObstacle
	f.Grid[0][0].Occupants = append(f.Grid[0][0].Occupants, "ghost")

	if c.Playground().CellState(Vec2i{3, 3}).Terrain == TerrainObstacle {
		t.Errorf("frame mutation leaked into the playground")
	}
	if c.Playground().CellState(Vec2i{0, 0}).HasOccupant("ghost") {
		t.Errorf("frame occupant mutation leaked into the playground")
	}
}

func TestTeamMode_WiresSameTypeOnly(t *testing.T) {
	c := mustController(t, Config{
		Width: 9, Height: 9,
		Agents: []AgentSpec{
			{ID: "a1", Start: start(0, 0), Type: 1},
			{ID: "a2", Start: start(8, 8), Type: 1},
			{ID: "b1", Start: start(0, 8), Type: 2},
		},
		TeamMode: true,
		Seed:     1,
	})
	agents := c.Agents()
	if len(agents[0].teammates) != 1 || agents[0].teammates[0].ID != "a2" {
		t.Errorf("a1 teammates wrong: %d", len(agents[0].teammates))
	}
	if len(agents[2].teammates) != 0 {
		t.Errorf("b1 should have no teammates")
	}
}

func TestFrame_TerrainRowAndCounts(t *testing.T) {
	c := mustController(t, Config{
		Width: 3, Height: 2,
		Agents: []AgentSpec{{ID: "a1", Start: start(0, 0)}},
		Seed:   1,
	})
	p := c.Playground()
	p.DebugSetTerrain(Vec2i{1, 0}, TerrainOrb)
	p.DebugSetTerrain(Vec2i{2, 1}, TerrainFilledHole)

	f := c.Snapshot()
	row := f.TerrainRow(0)
	want := []uint16{uint16(TerrainEmpty), uint16(TerrainOrb), uint16(TerrainEmpty)}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("row[%d]: got %d, want %d", i, row[i], want[i])
		}
	}
	if f.Orbs != 1 || f.FilledHoles != 1 {
		t.Errorf("counts: orbs=%d filled=%d, want 1/1", f.Orbs, f.FilledHoles)
	}
	if f.Digest == "" {
		t.Errorf("frame digest missing")
	}
}

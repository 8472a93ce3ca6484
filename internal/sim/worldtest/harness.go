package worldtest

import (
	"testing"

	"github.com/GhanbarT/ball-and-hole/internal/sim/world"
)

// Harness is a small black-box helper for driving a simulation through its
// exported APIs plus the Debug* helpers for deterministic preconditions. It
// intentionally avoids touching controller internals so tests can live
// outside the world package.
type Harness struct {
	T *testing.T
	C *world.Controller
}

func NewHarness(t *testing.T, cfg world.Config) *Harness {
	t.Helper()
	c, err := world.New(cfg)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return &Harness{T: t, C: c}
}

func (h *Harness) Step() world.Frame {
	h.T.Helper()
	return h.C.StepRound()
}

func (h *Harness) StepN(n int) world.Frame {
	h.T.Helper()
	var f world.Frame
	for i := 0; i < n; i++ {
		f = h.C.StepRound()
	}
	return f
}

func (h *Harness) SetTerrain(pos world.Vec2i, t world.Terrain) {
	h.T.Helper()
	if err := h.C.Playground().DebugSetTerrain(pos, t); err != nil {
		h.T.Fatalf("DebugSetTerrain: %v", err)
	}
}

func (h *Harness) SetAgentPos(id string, pos world.Vec2i) {
	h.T.Helper()
	if ok := h.C.DebugSetAgentPos(id, pos); !ok {
		h.T.Fatalf("DebugSetAgentPos returned false")
	}
}

func (h *Harness) Agent(id string) *world.Agent {
	h.T.Helper()
	for _, a := range h.C.Agents() {
		if a.ID == id {
			return a
		}
	}
	h.T.Fatalf("unknown agent id: %q", id)
	return nil
}

// CarriedCount reports how many agents are holding an orb.
func (h *Harness) CarriedCount() int {
	n := 0
	for _, a := range h.C.Agents() {
		if a.Carrying {
			n++
		}
	}
	return n
}

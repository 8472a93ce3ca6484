package framelog

import (
	"testing"

	"github.com/GhanbarT/ball-and-hole/internal/protocol"
	"github.com/GhanbarT/ball-and-hole/internal/sim/world"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	c, err := world.New(world.Config{
		Width: 6, Height: 6, NumHoles: 2, NumOrbs: 3,
		Agents: []world.AgentSpec{{ID: "a1"}, {ID: "a2"}},
		Seed:   77,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	header := RunHeader{
		RunID: "t1",
		Width: 6, Height: 6, NumHoles: 2, NumOrbs: 3,
		Strategy: "SEQUENTIAL",
		Seed:     77,
	}
	for _, a := range c.Agents() {
		header.Agents = append(header.Agents, RunAgent{
			ID: a.ID, Type: a.Type,
			StartX: a.Pos.X, StartY: a.Pos.Y,
			FieldOfView: a.FieldOfView, Battery: a.Battery,
		})
	}

	w, err := NewWriter(dir, header)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	var digests []string
	for i := 0; i < 5; i++ {
		f := c.StepRound()
		digests = append(digests, f.Digest)
		if err := w.WriteFrame(protocol.BuildFrame("t1", f)); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	gotHeader, frames, err := Read(Path(dir, "t1"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if gotHeader.RunID != "t1" || gotHeader.Seed != 77 || len(gotHeader.Agents) != 2 {
		t.Errorf("header: %+v", gotHeader)
	}
	if gotHeader.CreatedAt == "" || gotHeader.ProtocolVersion == "" {
		t.Errorf("writer should stamp created_at and protocol version")
	}
	if len(frames) != 5 {
		t.Fatalf("frames: got %d, want 5", len(frames))
	}
	for i, f := range frames {
		if f.Round != uint64(i+1) {
			t.Errorf("frame %d round: got %d", i, f.Round)
		}
		if f.Digest != digests[i] {
			t.Errorf("frame %d digest mismatch", i)
		}
	}
}

func TestWrite_AfterCloseFails(t *testing.T) {
	w, err := NewWriter(t.TempDir(), RunHeader{RunID: "x"})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.WriteFrame(protocol.FrameMsg{}); err == nil {
		t.Fatalf("write after close should fail")
	}
}

func TestRead_RejectsMissingHeader(t *testing.T) {
	if _, _, err := Read(Path(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

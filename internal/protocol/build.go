package protocol

import (
	"github.com/GhanbarT/ball-and-hole/internal/sim/encoding"
	"github.com/GhanbarT/ball-and-hole/internal/sim/world"
)

// BuildFrame converts a simulation frame into its wire form, compressing each
// terrain row with RLE.
func BuildFrame(runID string, f world.Frame) FrameMsg {
	terrain := make([]string, f.Height)
	for y := 0; y < f.Height; y++ {
		terrain[y] = encoding.EncodeRLE(f.TerrainRow(y))
	}

	agents := make([]FrameAgent, 0, len(f.Agents))
	for _, a := range f.Agents {
		agents = append(agents, FrameAgent{
			ID:       a.ID,
			Type:     a.Type,
			X:        a.Pos.X,
			Y:        a.Pos.Y,
			Dir:      a.Dir,
			Battery:  a.Battery,
			Carrying: a.Carrying,
			Score:    a.Score,
			OwnScore: a.OwnScore,
		})
	}

	return FrameMsg{
		Type:            TypeFrame,
		ProtocolVersion: Version,
		RunID:           runID,
		Round:           f.Round,
		Width:           f.Width,
		Height:          f.Height,
		Terrain:         terrain,
		Agents:          agents,
		Orbs:            f.Orbs,
		FilledHoles:     f.FilledHoles,
		Digest:          f.Digest,
	}
}

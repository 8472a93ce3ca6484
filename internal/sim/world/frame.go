package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// AgentSummary is the read-only per-agent view exposed to external
// consumers after each round.
type AgentSummary struct {
	ID       string `json:"id"`
	Type     int    `json:"type"`
	Pos      Vec2i  `json:"pos"`
	Target   *Vec2i `json:"target,omitempty"`
	Dir      string `json:"dir"`
	Battery  int    `json:"battery"`
	Carrying bool   `json:"carrying"`
	Score    int    `json:"score"`
	OwnScore int    `json:"own_score"`
}

// Frame is the immutable snapshot produced after every round: a deep copy of
// the grid plus agent summaries. The digest covers all simulation state so
// two runs of the same seed and roster can be compared round by round.
type Frame struct {
	Round  uint64   `json:"round"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Grid   [][]Cell `json:"grid"`

	Agents []AgentSummary `json:"agents"`

	Orbs        int `json:"orbs"`
	FilledHoles int `json:"filled_holes"`

	Digest string `json:"digest"`
}

// TerrainRow returns the terrain ids of row y, for wire encoding.
func (f Frame) TerrainRow(y int) []uint16 {
	row := make([]uint16, f.Width)
	for x := 0; x < f.Width; x++ {
		row[x] = uint16(f.Grid[y][x].Terrain)
	}
	return row
}

func (f Frame) digest() string {
	h := sha256.New()
	writeU64(h, f.Round)
	writeU64(h, uint64(f.Width))
	writeU64(h, uint64(f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := f.Grid[y][x]
			h.Write([]byte{byte(c.Terrain)})
			for _, id := range c.Occupants {
				h.Write([]byte(id))
				h.Write([]byte{0})
			}
			h.Write([]byte{0xFF})
		}
	}
	for _, a := range f.Agents {
		h.Write([]byte(a.ID))
		writeU64(h, uint64(int64(a.Pos.X)))
		writeU64(h, uint64(int64(a.Pos.Y)))
		h.Write([]byte(a.Dir))
		writeU64(h, uint64(int64(a.Battery)))
		if a.Carrying {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
		if a.Target != nil {
			writeU64(h, uint64(int64(a.Target.X)))
			writeU64(h, uint64(int64(a.Target.Y)))
		}
		writeU64(h, uint64(a.Score))
		writeU64(h, uint64(a.OwnScore))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeU64(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}

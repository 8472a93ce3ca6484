package framelog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/GhanbarT/ball-and-hole/internal/protocol"
)

// RunHeader is the first line of every frame log. It carries everything a
// replay needs to rebuild the run: the full configuration including the seed
// and the resolved agent roster with their start positions.
type RunHeader struct {
	Type            string `json:"type"` // always "RUN"
	ProtocolVersion string `json:"protocol_version"`
	RunID           string `json:"run_id"`
	CreatedAt       string `json:"created_at"`

	Width    int    `json:"width"`
	Height   int    `json:"height"`
	NumHoles int    `json:"num_holes"`
	NumOrbs  int    `json:"num_orbs"`
	Strategy string `json:"strategy"`
	TeamMode bool   `json:"team_mode"`

	RedistributePermille int   `json:"redistribute_permille"`
	Seed                 int64 `json:"seed"`

	Agents []RunAgent `json:"agents"`
}

type RunAgent struct {
	ID     string `json:"id"`
	Type   int    `json:"type"`
	StartX int    `json:"start_x"`
	StartY int    `json:"start_y"`
	// RandomStart marks a start that was drawn from the seeded generator.
	// Replays must re-draw it rather than pin the recorded position, or the
	// random stream shifts and every digest after setup diverges.
	RandomStart bool `json:"random_start,omitempty"`
	FieldOfView int  `json:"field_of_view"`
	Battery     int  `json:"battery"`
}

// Writer appends one run's frames to a zstd-compressed JSONL file: the RUN
// header first, then one FRAME line per round.
type Writer struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

func Path(baseDir, runID string) string {
	return filepath.Join(baseDir, fmt.Sprintf("run-%s.jsonl.zst", runID))
}

func NewWriter(baseDir string, header RunHeader) (*Writer, error) {
	if header.RunID == "" {
		return nil, fmt.Errorf("empty run id")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(Path(baseDir, header.RunID), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w := &Writer{
		f:   f,
		enc: enc,
		w:   bufio.NewWriterSize(enc, 128*1024),
	}

	header.Type = "RUN"
	if header.ProtocolVersion == "" {
		header.ProtocolVersion = protocol.Version
	}
	if header.CreatedAt == "" {
		header.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if err := w.writeLine(header); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) WriteFrame(msg protocol.FrameMsg) error {
	return w.writeLine(msg)
}

func (w *Writer) writeLine(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return fmt.Errorf("writer closed")
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

// Read loads a full run log back into memory.
func Read(path string) (RunHeader, []protocol.FrameMsg, error) {
	var header RunHeader

	f, err := os.Open(path)
	if err != nil {
		return header, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return header, nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 1<<20), 64<<20)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return header, nil, err
		}
		return header, nil, fmt.Errorf("empty frame log")
	}
	if err := json.Unmarshal(sc.Bytes(), &header); err != nil {
		return header, nil, fmt.Errorf("run header: %w", err)
	}
	if header.Type != "RUN" {
		return header, nil, fmt.Errorf("first line is %q, want RUN", header.Type)
	}

	var frames []protocol.FrameMsg
	for sc.Scan() {
		var msg protocol.FrameMsg
		if err := json.Unmarshal(sc.Bytes(), &msg); err != nil {
			return header, frames, fmt.Errorf("frame %d: %w", len(frames)+1, err)
		}
		frames = append(frames, msg)
	}
	return header, frames, sc.Err()
}

package protocol

// HelloMsg is the observer's opening message.
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ObserverName    string `json:"observer_name,omitempty"`
}

// WelcomeMsg answers a HELLO with the run parameters, so an observer can lay
// out the grid before the first frame arrives.
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RunID           string `json:"run_id"`
	Round           uint64 `json:"round"`

	RunParams RunParams `json:"run_params"`
}

type RunParams struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	NumHoles int    `json:"num_holes"`
	NumOrbs  int    `json:"num_orbs"`
	MaxScore int    `json:"max_score"`
	Strategy string `json:"strategy"`
	TeamMode bool   `json:"team_mode"`
	Seed     int64  `json:"seed"`
}

// FrameMsg carries one round's snapshot. Terrain travels as one RLE string
// per row; occupancy is reconstructed from the agent list.
type FrameMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RunID           string `json:"run_id"`
	Round           uint64 `json:"round"`

	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Terrain []string `json:"terrain"` // one RLE row per grid row

	Agents []FrameAgent `json:"agents"`

	Orbs        int `json:"orbs"`
	FilledHoles int `json:"filled_holes"`

	Digest string `json:"digest"`
}

type FrameAgent struct {
	ID       string `json:"id"`
	Type     int    `json:"type"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Dir      string `json:"dir"`
	Battery  int    `json:"battery"`
	Carrying bool   `json:"carrying"`
	Score    int    `json:"score"`
	OwnScore int    `json:"own_score"`
}

// ErrorMsg reports a rejected request with a stable machine code.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

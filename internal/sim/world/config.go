package world

// Strategy selects how a round delivers views to agents.
type Strategy uint8

const (
	// Sequential lets each agent observe the consequences of earlier
	// agents' actions in the same round. Default.
	Sequential Strategy = iota
	// Simultaneous snapshots every eligible agent's view before any agent
	// acts, so all decisions are made against the pre-round state.
	Simultaneous
)

func (s Strategy) String() string {
	if s == Simultaneous {
		return "SIMULTANEOUS"
	}
	return "SEQUENTIAL"
}

func StrategyFromString(v string) Strategy {
	if v == "SIMULTANEOUS" {
		return Simultaneous
	}
	return Sequential
}

// AgentSpec describes one agent to create during setup. A nil Start places
// the agent at a random unclaimed position. Zero option fields use defaults.
type AgentSpec struct {
	ID          string
	Type        int
	Start       *Vec2i
	FieldOfView int
	Battery     int
}

// Config describes a full simulation run.
type Config struct {
	Width  int
	Height int

	NumHoles int
	NumOrbs  int

	Agents []AgentSpec

	Strategy Strategy
	TeamMode bool

	// RedistributePermille is the per-orb drift probability applied after a
	// successful deposit, in permille. Zero means the 100 permille default.
	RedistributePermille int

	Seed int64
}

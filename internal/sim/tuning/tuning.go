package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the run configuration loaded from tuning.yaml. Zero values are
// normalized to defaults so a partial file stays valid.
type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	NumHoles int `yaml:"num_holes"`
	NumOrbs  int `yaml:"num_orbs"`

	Agents []AgentTuning `yaml:"agents"`
	// NumAgents adds that many default agents when the Agents list is empty.
	NumAgents int `yaml:"num_agents"`

	FieldOfView int `yaml:"field_of_view"`
	Battery     int `yaml:"battery"`

	Strategy string `yaml:"strategy"` // SEQUENTIAL or SIMULTANEOUS
	TeamMode bool   `yaml:"team_mode"`

	RedistributePermille int `yaml:"redistribute_permille"`

	Seed       int64 `yaml:"seed"`
	RoundLimit int   `yaml:"round_limit"`

	RoundRateHz int `yaml:"round_rate_hz"`
}

type AgentTuning struct {
	ID          string `yaml:"id"`
	Type        int    `yaml:"type"`
	Start       []int  `yaml:"start,omitempty"` // [x, y]; absent means random
	FieldOfView int    `yaml:"field_of_view"`
	Battery     int    `yaml:"battery"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		Width:           10,
		Height:          10,
		NumHoles:        5,
		NumOrbs:         5,
		NumAgents:       2,
		FieldOfView:     3,
		Battery:         30,
		Strategy:        "SEQUENTIAL",
		RoundLimit:      200,
		RoundRateHz:     5,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.normalize()
	if err := t.validate(); err != nil {
		return t, err
	}
	return t, nil
}

func (t *Tuning) normalize() {
	d := Defaults()
	if t.ProtocolVersion == "" {
		t.ProtocolVersion = d.ProtocolVersion
	}
	if t.Width <= 0 {
		t.Width = d.Width
	}
	if t.Height <= 0 {
		t.Height = d.Height
	}
	if t.NumAgents <= 0 && len(t.Agents) == 0 {
		t.NumAgents = d.NumAgents
	}
	if t.FieldOfView <= 0 {
		t.FieldOfView = d.FieldOfView
	}
	if t.Battery <= 0 {
		t.Battery = d.Battery
	}
	if t.Strategy == "" {
		t.Strategy = d.Strategy
	}
	if t.RoundLimit <= 0 {
		t.RoundLimit = d.RoundLimit
	}
	if t.RoundRateHz <= 0 {
		t.RoundRateHz = d.RoundRateHz
	}
}

func (t Tuning) validate() error {
	if t.NumHoles < 0 || t.NumOrbs < 0 {
		return fmt.Errorf("num_holes and num_orbs must be >= 0")
	}
	if t.Strategy != "SEQUENTIAL" && t.Strategy != "SIMULTANEOUS" {
		return fmt.Errorf("strategy: unknown value %q", t.Strategy)
	}
	if t.RedistributePermille < 0 || t.RedistributePermille > 1000 {
		return fmt.Errorf("redistribute_permille out of range: %d", t.RedistributePermille)
	}
	for i, a := range t.Agents {
		if len(a.Start) != 0 && len(a.Start) != 2 {
			return fmt.Errorf("agents[%d].start: want [x, y]", i)
		}
	}
	return nil
}

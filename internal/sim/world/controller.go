package world

import (
	"fmt"
	"math/rand"
)

// Controller owns the playground and the agent roster and drives rounds.
// It is single-threaded: callers serialize access (one goroutine, or an
// outer mutex).
type Controller struct {
	cfg Config

	playground *Playground
	agents     []*Agent

	round uint64

	rng *rand.Rand
}

// New builds the playground and roster from cfg. Setup fails when an
// explicit start position collides with an already placed agent, or when no
// free start remains for a random placement.
func New(cfg Config) (*Controller, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))

	p := NewPlayground(cfg.Width, cfg.Height, cfg.NumHoles, cfg.NumOrbs, rng)
	if cfg.RedistributePermille > 0 {
		p.SetRedistributePermille(cfg.RedistributePermille)
	}

	c := &Controller{
		cfg:        cfg,
		playground: p,
		rng:        rng,
	}

	for i, spec := range cfg.Agents {
		if _, err := c.addAgent(spec); err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
	}

	p.PlaceHolesAndOrbs()

	if cfg.TeamMode {
		c.introduceTeammates()
	}
	return c, nil
}

func (c *Controller) addAgent(spec AgentSpec) (*Agent, error) {
	var pos Vec2i
	if spec.Start != nil {
		pos = *spec.Start
	} else {
		free, ok := c.playground.RandomFreeStart()
		if !ok {
			return nil, fmt.Errorf("no free start position")
		}
		pos = free
	}

	a := NewAgent(pos, AgentOptions{
		ID:          spec.ID,
		Type:        spec.Type,
		FieldOfView: spec.FieldOfView,
		Battery:     spec.Battery,
	}, c.rng)

	if !c.playground.AddAgent(a) {
		return nil, fmt.Errorf("start position (%d,%d) already taken", pos.X, pos.Y)
	}
	c.agents = append(c.agents, a)
	return a, nil
}

// introduceTeammates wires knowledge sharing between agents of the same type.
func (c *Controller) introduceTeammates() {
	byType := map[int][]*Agent{}
	for _, a := range c.agents {
		byType[a.Type] = append(byType[a.Type], a)
	}
	for _, a := range c.agents {
		a.AddTeammates(byType[a.Type])
	}
}

func (c *Controller) Playground() *Playground { return c.playground }
func (c *Controller) Agents() []*Agent        { return c.agents }
func (c *Controller) CurrentRound() uint64    { return c.round }

// MaxScore is the best achievable fill count: every orb can fill at most one
// hole and vice versa.
func (c *Controller) MaxScore() int {
	if c.cfg.NumHoles < c.cfg.NumOrbs {
		return c.cfg.NumHoles
	}
	return c.cfg.NumOrbs
}

// Done reports whether every agent has exhausted its battery.
func (c *Controller) Done() bool {
	for _, a := range c.agents {
		if a.Battery >= 0 {
			return false
		}
	}
	return true
}

// StepRound executes one round over the roster in registration order and
// returns the resulting immutable frame. Agents with battery < 0 are
// skipped permanently.
func (c *Controller) StepRound() Frame {
	c.round++

	switch c.cfg.Strategy {
	case Simultaneous:
		// Collect all views against the pre-round state first.
		views := make(map[string][][]ViewCell, len(c.agents))
		for _, a := range c.agents {
			if a.Battery < 0 {
				continue
			}
			views[a.ID] = c.playground.SurroundingCells(a.Pos, a.FieldOfView)
		}
		for _, a := range c.agents {
			v, ok := views[a.ID]
			if !ok {
				continue
			}
			a.See(v).Act(c.playground)
		}
	default:
		for _, a := range c.agents {
			if a.Battery < 0 {
				continue
			}
			view := c.playground.SurroundingCells(a.Pos, a.FieldOfView)
			a.See(view).Act(c.playground)
		}
	}

	return c.Snapshot()
}

// Snapshot builds a read-only frame of the current state: a deep grid copy
// plus per-agent summaries. Safe to hand to concurrent readers.
func (c *Controller) Snapshot() Frame {
	summaries := make([]AgentSummary, 0, len(c.agents))
	for _, a := range c.agents {
		s := AgentSummary{
			ID:       a.ID,
			Type:     a.Type,
			Pos:      a.Pos,
			Dir:      a.Dir.String(),
			Battery:  a.Battery,
			Carrying: a.Carrying,
			Score:    a.Score(),
			OwnScore: a.OwnScore(),
		}
		if a.Target != nil {
			t := *a.Target
			s.Target = &t
		}
		summaries = append(summaries, s)
	}

	f := Frame{
		Round:       c.round,
		Width:       c.playground.Width(),
		Height:      c.playground.Height(),
		Grid:        c.playground.SnapshotGrid(),
		Agents:      summaries,
		Orbs:        c.playground.OrbCount(),
		FilledHoles: c.playground.FilledHoleCount(),
	}
	f.Digest = f.digest()
	return f
}

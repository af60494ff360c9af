// Package models provides a small library of atomic models (a periodic
// generator, a buffer and a processor), the BP and GBP networks built from
// them, and a YAML network description that assembles arbitrary trees of
// these models.
package models

import (
	"fmt"

	"github.com/inference-sim/devsim/sim"
)

// GeneratorOut is the generator's only state and the job token it emits.
const GeneratorOut = "out"

// Generator emits GeneratorOut on its output port every Interval.
type Generator struct {
	sim.AtomicBase
	Out      *sim.Port
	Interval sim.Time
}

// NewGenerator returns a generator with output port GEN_outport.
func NewGenerator(name string, interval sim.Time) *Generator {
	g := &Generator{AtomicBase: sim.NewAtomicBase(name), Interval: interval}
	g.Out = g.AddOutPort("GEN_outport")
	return g
}

func (g *Generator) InitialState() sim.State { return GeneratorOut }

func (g *Generator) TimeAdvance(s sim.State) (sim.Time, error) {
	if s != GeneratorOut {
		return 0, unknownState(s)
	}
	return g.Interval, nil
}

func (g *Generator) Output(s sim.State) (sim.Outputs, error) {
	if s != GeneratorOut {
		return nil, unknownState(s)
	}
	return sim.Outputs{{Port: g.Out, Value: GeneratorOut}}, nil
}

func (g *Generator) InternalTransition(s sim.State) (sim.State, error) {
	if s != GeneratorOut {
		return nil, unknownState(s)
	}
	return GeneratorOut, nil
}

// ExternalTransition ignores input; the generator has no input ports.
func (g *Generator) ExternalTransition(s sim.State, _ sim.Time, _ sim.Bag) (sim.State, error) {
	if s != GeneratorOut {
		return nil, unknownState(s)
	}
	return s, nil
}

func unknownState(s sim.State) error {
	return fmt.Errorf("unknown state <%v>", s)
}

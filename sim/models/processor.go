package models

import (
	"github.com/inference-sim/devsim/sim"
)

// Processor states. The processor also announces ProcessorFree on its
// output port each time it finishes a job.
const (
	ProcessorFree = "F"
	ProcessorBusy = "B"
)

// Processor serves one job at a time for ServiceTime.
type Processor struct {
	sim.AtomicBase
	In          *sim.Port
	Out         *sim.Port
	ServiceTime sim.Time
}

// NewProcessor returns a processor with ports PROC_inport and PRCO_outport.
func NewProcessor(name string, serviceTime sim.Time) *Processor {
	p := &Processor{AtomicBase: sim.NewAtomicBase(name), ServiceTime: serviceTime}
	p.In = p.AddInPort("PROC_inport")
	p.Out = p.AddOutPort("PRCO_outport")
	return p
}

func (p *Processor) InitialState() sim.State { return ProcessorFree }

func (p *Processor) TimeAdvance(s sim.State) (sim.Time, error) {
	switch s {
	case ProcessorFree:
		return sim.Infinity, nil
	case ProcessorBusy:
		return p.ServiceTime, nil
	}
	return 0, unknownState(s)
}

func (p *Processor) Output(sim.State) (sim.Outputs, error) {
	return sim.Outputs{{Port: p.Out, Value: ProcessorFree}}, nil
}

func (p *Processor) InternalTransition(s sim.State) (sim.State, error) {
	if s != ProcessorBusy {
		return nil, unknownState(s)
	}
	return ProcessorFree, nil
}

// ExternalTransition starts a job on every GeneratorOut token.
func (p *Processor) ExternalTransition(s sim.State, _ sim.Time, inputs sim.Bag) (sim.State, error) {
	if s != ProcessorFree && s != ProcessorBusy {
		return nil, unknownState(s)
	}
	for _, msg := range inputs.Get(p.In) {
		if msg != GeneratorOut {
			return nil, unknownState(s)
		}
	}
	return ProcessorBusy, nil
}

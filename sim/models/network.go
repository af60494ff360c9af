package models

import (
	"github.com/inference-sim/devsim/sim"
)

// Defaults of the reference generator-buffer-processor network.
const (
	DefaultInterval    sim.Time = 2
	DefaultCapacity             = 4
	DefaultServiceTime sim.Time = 4
	DefaultHorizon     sim.Time = 80
)

// GBPConfig parameterizes NewGBP. Capacity 0 means an unbounded buffer.
type GBPConfig struct {
	Interval    sim.Time
	Capacity    int
	ServiceTime sim.Time
}

// DefaultGBPConfig returns the reference parameters.
func DefaultGBPConfig() GBPConfig {
	return GBPConfig{
		Interval:    DefaultInterval,
		Capacity:    DefaultCapacity,
		ServiceTime: DefaultServiceTime,
	}
}

// BP is a buffer feeding a processor, with the processor's completion
// notice fed back to the buffer.
type BP struct {
	Model     *sim.Coupled
	Buffer    *Buffer
	Processor *Processor
	In        *sim.Port // BP_inport
	Out       *sim.Port // BP_ouport
}

// NewBP builds a BP coupled model. When the buffer and the processor are
// imminent together the processor goes first.
func NewBP(name string, capacity int, serviceTime sim.Time) (*BP, error) {
	bp := &BP{
		Model:     sim.NewCoupled(name),
		Buffer:    NewBuffer("BUF", capacity),
		Processor: NewProcessor("PROC", serviceTime),
	}
	bp.In = bp.Model.AddInPort("BP_inport")
	bp.Out = bp.Model.AddOutPort("BP_ouport")
	if err := bp.Model.AddChild(bp.Buffer, bp.Processor); err != nil {
		return nil, err
	}
	couplings := [][2]*sim.Port{
		{bp.In, bp.Buffer.In},
		{bp.Buffer.Out, bp.Processor.In},
		{bp.Processor.Out, bp.Out},
		{bp.Processor.Out, bp.Buffer.Response},
	}
	for _, c := range couplings {
		if err := bp.Model.Connect(c[0], c[1]); err != nil {
			return nil, err
		}
	}
	bp.Model.SetSelect(sim.Priority("PROC", "BUF"))
	return bp, nil
}

// GBP is a generator feeding a BP.
type GBP struct {
	Model     *sim.Coupled
	Generator *Generator
	BP        *BP
}

// NewGBP builds a GBP coupled model. When the generator and the BP are
// imminent together the BP goes first.
func NewGBP(name string, cfg GBPConfig) (*GBP, error) {
	bp, err := NewBP("BP", cfg.Capacity, cfg.ServiceTime)
	if err != nil {
		return nil, err
	}
	g := &GBP{
		Model:     sim.NewCoupled(name),
		Generator: NewGenerator("GEN", cfg.Interval),
		BP:        bp,
	}
	if err := g.Model.AddChild(g.Generator, bp.Model); err != nil {
		return nil, err
	}
	if err := g.Model.Connect(g.Generator.Out, bp.In); err != nil {
		return nil, err
	}
	g.Model.SetSelect(sim.Priority("BP", "GEN"))
	return g, nil
}

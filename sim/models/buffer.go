package models

import (
	"fmt"

	"github.com/inference-sim/devsim/sim"
)

// BufferState is the buffer's view of the world: jobs waiting and the
// processor's last known state.
type BufferState struct {
	N    int
	Proc string // ProcessorFree or ProcessorBusy
	Full bool
}

func (s BufferState) String() string {
	return fmt.Sprintf("[%d %s]", s.N, s.Proc)
}

// Buffer queues jobs and releases one to the processor whenever it is
// known to be free. Capacity 0 means unbounded; arrivals beyond the
// capacity are dropped.
type Buffer struct {
	sim.AtomicBase
	In       *sim.Port
	Response *sim.Port
	Out      *sim.Port
	Capacity int
}

// NewBuffer returns a buffer with ports BUF_inport, BUF_response_inport and
// BUF_outport.
func NewBuffer(name string, capacity int) *Buffer {
	b := &Buffer{AtomicBase: sim.NewAtomicBase(name), Capacity: capacity}
	b.In = b.AddInPort("BUF_inport")
	b.Response = b.AddInPort("BUF_response_inport")
	b.Out = b.AddOutPort("BUF_outport")
	return b
}

func (b *Buffer) InitialState() sim.State {
	return BufferState{N: 0, Proc: ProcessorFree}
}

func (b *Buffer) TimeAdvance(s sim.State) (sim.Time, error) {
	st, ok := s.(BufferState)
	if !ok {
		return 0, unknownState(s)
	}
	switch {
	case st.N == 0 || st.Proc == ProcessorBusy:
		return sim.Infinity, nil
	case st.Proc == ProcessorFree:
		return 0, nil
	}
	return 0, unknownState(s)
}

func (b *Buffer) Output(sim.State) (sim.Outputs, error) {
	return sim.Outputs{{Port: b.Out, Value: GeneratorOut}}, nil
}

// InternalTransition hands one job to the processor.
func (b *Buffer) InternalTransition(s sim.State) (sim.State, error) {
	st, ok := s.(BufferState)
	if !ok {
		return nil, unknownState(s)
	}
	return BufferState{N: st.N - 1, Proc: ProcessorBusy, Full: false}, nil
}

// ExternalTransition counts arrivals on BUF_inport, then applies a
// processor-free notice from BUF_response_inport. Both may arrive in one bag.
func (b *Buffer) ExternalTransition(s sim.State, _ sim.Time, inputs sim.Bag) (sim.State, error) {
	st, ok := s.(BufferState)
	if !ok {
		return nil, unknownState(s)
	}
	if !inputs.Has(b.In) && !inputs.Has(b.Response) {
		return nil, unknownState(s)
	}
	for _, msg := range inputs.Get(b.In) {
		// Full is never set, so this guard never rejects an arrival.
		if msg != GeneratorOut || st.Full {
			continue
		}
		if b.Capacity <= 0 || st.N < b.Capacity {
			st.N++
		}
	}
	for _, msg := range inputs.Get(b.Response) {
		if msg == ProcessorFree {
			st.Proc = ProcessorFree
		}
	}
	return st, nil
}

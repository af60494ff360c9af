package sim

import (
	"fmt"
	"slices"
)

// testModel is an atomic model whose behavior is supplied per test.
// Defaults: passive (ta = Infinity), no output, transitions keep the state.
type testModel struct {
	AtomicBase
	In  *Port
	Out *Port

	init  State
	taFn  func(s State) (Time, error)
	outFn func(s State) Outputs
	intFn func(s State) (State, error)
	extFn func(s State, elapsed Time, inputs Bag) (State, error)
}

func newTestModel(name string) *testModel {
	m := &testModel{AtomicBase: NewAtomicBase(name)}
	m.In = m.AddInPort("in")
	m.Out = m.AddOutPort("out")
	return m
}

func (m *testModel) InitialState() State { return m.init }

func (m *testModel) TimeAdvance(s State) (Time, error) {
	if m.taFn == nil {
		return Infinity, nil
	}
	return m.taFn(s)
}

func (m *testModel) Output(s State) (Outputs, error) {
	if m.outFn == nil {
		return nil, nil
	}
	return m.outFn(s), nil
}

func (m *testModel) InternalTransition(s State) (State, error) {
	if m.intFn == nil {
		return s, nil
	}
	return m.intFn(s)
}

func (m *testModel) ExternalTransition(s State, elapsed Time, inputs Bag) (State, error) {
	if m.extFn == nil {
		return s, nil
	}
	return m.extFn(s, elapsed, inputs)
}

// newTicker fires every period, emitting "<name><n>" on Out for its n-th firing.
// Its state is the number of firings so far.
func newTicker(name string, period Time) *testModel {
	m := newTestModel(name)
	m.init = 0
	m.taFn = func(State) (Time, error) { return period, nil }
	m.outFn = func(s State) Outputs {
		return Outputs{{Port: m.Out, Value: fmt.Sprintf("%s%d", name, s.(int)+1)}}
	}
	m.intFn = func(s State) (State, error) { return s.(int) + 1, nil }
	return m
}

// sinkState is the log a sink builds from what it receives.
type sinkState struct {
	Got      []Message
	Elapsed  []Time
	External int
}

// newSink is passive and logs every message (in bag order) with the elapsed
// time reported to it.
func newSink(name string) *testModel {
	m := newTestModel(name)
	m.init = sinkState{}
	m.extFn = func(s State, elapsed Time, inputs Bag) (State, error) {
		st := s.(sinkState)
		next := sinkState{
			Got:      append(slices.Clone(st.Got), inputs.Get(m.In)...),
			Elapsed:  append(slices.Clone(st.Elapsed), elapsed),
			External: st.External + 1,
		}
		return next, nil
	}
	return m
}

// relayState drives the same-instant ping-pong used for chain tests.
// hops < 0 means passive.
type relayState struct {
	hops  int
	delay Time
}

// newRelay forwards hops-1 to its partner at zero delay until hops reaches 0.
// If endless is set it forwards the same count forever.
func newRelay(name string, hops int, delay Time, endless bool) *testModel {
	m := newTestModel(name)
	m.init = relayState{hops: hops, delay: delay}
	m.taFn = func(s State) (Time, error) {
		r := s.(relayState)
		if r.hops < 0 {
			return Infinity, nil
		}
		return r.delay, nil
	}
	m.outFn = func(s State) Outputs {
		r := s.(relayState)
		if r.hops > 0 {
			return Outputs{{Port: m.Out, Value: r.hops}}
		}
		return nil
	}
	m.intFn = func(State) (State, error) { return relayState{hops: -1}, nil }
	m.extFn = func(_ State, _ Time, inputs Bag) (State, error) {
		h := inputs.Get(m.In)[0].(int)
		if endless {
			return relayState{hops: h}, nil
		}
		return relayState{hops: h - 1}, nil
	}
	return m
}

func mustAdd(c *Coupled, children ...Component) *Coupled {
	if err := c.AddChild(children...); err != nil {
		panic(err)
	}
	return c
}

func mustConnect(c *Coupled, from, to *Port) {
	if err := c.Connect(from, to); err != nil {
		panic(err)
	}
}

func runConfig(horizon Time) SimConfig {
	cfg := DefaultSimConfig()
	cfg.Horizon = horizon
	return cfg
}

// sim/simulator.go
package sim

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/devsim/sim/trace"
)

// Emission is a message that left the root model through one of its output ports.
type Emission struct {
	Time  Time
	Port  *Port
	Value Message
}

// Simulator drives one Classic DEVS run over a root coupled model. It holds
// the simulated clock and the state of every atomic model; nothing is
// global, so independent simulators may coexist in one process.
//
// A Simulator is not safe for concurrent use.
type Simulator struct {
	Clock   Time
	Horizon Time
	Metrics *Metrics
	// Trace is nil unless SimConfig.Trace enables it.
	Trace *trace.SimulationTrace

	root       *Coupled
	maxChained int
	leaves     []*leaf
	byModel    map[Atomic]*leaf
	schedule   *leafHeap
	inputs     *inputQueue
	routes     *routeTable
	emitted    []Emission
	nextSeq    uint64

	started    bool // at least one step has run
	chained    int  // steps run at Clock after the first one
	terminated bool
	err        error
}

// NewSimulator validates the hierarchy under root, initializes every atomic
// model at t=0 and returns a simulator ready to Run.
func NewSimulator(root *Coupled, cfg SimConfig) (*Simulator, error) {
	if root == nil {
		return nil, configErrorf("", "root model is nil")
	}
	if root.parent != nil {
		return nil, configErrorf(Path(root), "root model is nested inside %s", Path(root.parent))
	}
	if math.IsNaN(float64(cfg.Horizon)) || cfg.Horizon < 0 {
		return nil, configErrorf(Path(root), "horizon %v must be a nonnegative time or Infinity", cfg.Horizon)
	}
	if err := checkPortNames(root); err != nil {
		return nil, err
	}
	routes := newRouteTable(root)
	if err := routes.check(); err != nil {
		return nil, err
	}

	s := &Simulator{
		Clock:      0,
		Horizon:    cfg.Horizon,
		Metrics:    NewMetrics(),
		root:       root,
		maxChained: cfg.chainBound(),
		byModel:    make(map[Atomic]*leaf),
		schedule:   newLeafHeap(),
		inputs:     &inputQueue{},
		routes:     routes,
	}
	if cfg.Trace.Enabled() {
		s.Trace = trace.NewSimulationTrace(cfg.Trace)
		s.Trace.Root = Path(root)
	}

	s.collectLeaves(root)
	for _, l := range s.leaves {
		l.state = l.model.InitialState()
		ta, err := s.timeAdvance(l, 0)
		if err != nil {
			return nil, err
		}
		l.tLast = 0
		l.tNext = ta
		s.schedule.Schedule(l)
		s.recordTransition(l, trace.KindInit, 0)
	}
	return s, nil
}

func (s *Simulator) collectLeaves(c *Coupled) {
	for _, child := range c.children {
		switch m := child.(type) {
		case *Coupled:
			s.collectLeaves(m)
		case Atomic:
			l := &leaf{model: m, path: Path(m), order: len(s.leaves), heapIdx: -1}
			s.leaves = append(s.leaves, l)
			s.byModel[m] = l
		}
	}
}

// Run steps the simulation until it terminates, fails, or ctx is done.
// Cancellation is honored between steps; a step in progress always completes.
func (s *Simulator) Run(ctx context.Context) error {
	logrus.Infof("[t=%v] Simulation started: root=%s, %d atomic models, horizon=%v",
		s.Clock, Path(s.root), len(s.leaves), s.Horizon)
	for {
		if err := ctx.Err(); err != nil {
			logrus.Warnf("[t=%v] Simulation cancelled after %d steps", s.Clock, s.Metrics.Steps)
			return err
		}
		more, err := s.Step()
		if err != nil {
			logrus.Errorf("[t=%v] Simulation aborted: %v", s.Clock, err)
			return err
		}
		if !more {
			break
		}
	}
	logrus.Infof("[t=%v] Simulation ended after %d steps", s.Clock, s.Metrics.Steps)
	return nil
}

// Step runs one scheduler step: compute the next event time, fire every
// imminent leaf (output, then internal transition), route all produced
// messages, then apply external transitions. It returns false once the run
// has terminated. After an error every further call returns the same error.
func (s *Simulator) Step() (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.terminated {
		return false, nil
	}

	tNext := min(s.schedule.NextTime(), s.inputs.NextTime())
	if tNext.IsInfinite() {
		s.terminate("every model is passive and no input is pending")
		return false, nil
	}
	if tNext > s.Horizon {
		s.terminate(fmt.Sprintf("next event at t=%v is beyond the horizon", tNext))
		return false, nil
	}

	if s.started && tNext == s.Clock {
		s.chained++
		if s.maxChained >= 0 && s.chained > s.maxChained {
			return false, s.fail(configErrorf(Path(s.root),
				"more than %d chained steps at t=%v: couplings keep re-triggering within one instant", s.maxChained, tNext))
		}
		s.Metrics.MaxChainedSteps = max(s.Metrics.MaxChainedSteps, s.chained)
	} else {
		s.chained = 0
	}
	s.started = true
	s.Clock = tNext
	s.Metrics.Steps++

	if err := s.step(tNext); err != nil {
		return false, s.fail(err)
	}
	return true, nil
}

func (s *Simulator) step(t Time) error {
	// Firing: every leaf due at t, in select order.
	var due []*leaf
	for s.schedule.Len() > 0 && s.schedule.NextTime() == t {
		due = append(due, s.schedule.PopNext())
	}
	fired, err := s.orderImminent(due, t)
	if err != nil {
		return err
	}

	var produced Outputs
	for _, ev := range s.inputs.PopDue(t) {
		produced = append(produced, Output{Port: ev.port, Value: ev.msg})
		s.Metrics.MessagesInjected++
		s.recordMessage(t, trace.MessageInject, ev.port, ev.msg)
	}
	for _, l := range fired {
		out, err := l.model.Output(l.state)
		if err != nil {
			return s.stateError(l, "output", l.state, t, err)
		}
		for _, o := range out {
			if o.Port == nil || o.Port.host != Component(l.model) || o.Port.dir != Out {
				return configErrorf(l.path, "output function wrote to %v, which is not one of its output ports", o.Port)
			}
			produced = append(produced, o)
			s.recordMessage(t, trace.MessageOutput, o.Port, o.Value)
		}
		next, err := l.model.InternalTransition(l.state)
		if err != nil {
			return s.stateError(l, "internalTransition", l.state, t, err)
		}
		l.state = next
		l.fired = true
	}

	// Routing: every bag is complete before any external transition runs.
	var receivers []*leaf
	for _, o := range produced {
		dests, err := s.routes.destinations(o.Port)
		if err != nil {
			return err
		}
		for _, d := range dests {
			if d.host == Component(s.root) {
				s.emitted = append(s.emitted, Emission{Time: t, Port: d, Value: o.Value})
				s.Metrics.MessagesEmitted++
				s.recordMessage(t, trace.MessageEmit, d, o.Value)
				continue
			}
			r := s.byModel[d.host.(Atomic)]
			if r.bag == nil {
				r.bag = make(Bag)
				receivers = append(receivers, r)
			}
			r.bag[d] = append(r.bag[d], o.Value)
			s.Metrics.MessagesRouted++
		}
	}
	logrus.Debugf("[t=%v] step %d: %d imminent, %d messages, %d receivers",
		t, s.Metrics.Steps, len(fired), len(produced), len(receivers))

	// External transitions. A receiver that already fired this instant is
	// confluent: internal first (done above), then external with elapsed 0.
	for _, r := range receivers {
		elapsed := t - r.tLast
		if r.fired {
			elapsed = 0
		}
		next, err := r.model.ExternalTransition(r.state, elapsed, r.bag)
		if err != nil {
			return s.stateError(r, "externalTransition", r.state, t, err)
		}
		r.state = next
	}

	for _, l := range fired {
		kind := trace.KindInternal
		if l.bag != nil {
			kind = trace.KindConfluent
		}
		if err := s.commit(l, t, kind, 0); err != nil {
			return err
		}
	}
	for _, r := range receivers {
		if r.fired {
			continue
		}
		if err := s.commit(r, t, trace.KindExternal, t-r.tLast); err != nil {
			return err
		}
	}
	for _, l := range fired {
		l.fired, l.bag = false, nil
	}
	for _, r := range receivers {
		r.fired, r.bag = false, nil
	}
	return nil
}

// commit stamps a transitioned leaf with t and reschedules it.
func (s *Simulator) commit(l *leaf, t Time, kind trace.Kind, elapsed Time) error {
	ta, err := s.timeAdvance(l, t)
	if err != nil {
		return err
	}
	l.tLast = t
	l.tNext = t + ta
	s.schedule.Reschedule(l)

	ms := s.Metrics.model(l.path)
	switch kind {
	case trace.KindInternal:
		s.Metrics.InternalTransitions++
		ms.Internal++
	case trace.KindExternal:
		s.Metrics.ExternalTransitions++
		ms.External++
	case trace.KindConfluent:
		s.Metrics.ConfluentTransitions++
		ms.Confluent++
	}
	logrus.Debugf("[t=%v] %s %s -> <%v>, next at %v", t, kind, l.path, l.state, l.tNext)
	s.recordTransition(l, kind, elapsed)
	return nil
}

func (s *Simulator) orderImminent(due []*leaf, t Time) ([]*leaf, error) {
	if len(due) == 0 {
		return nil, nil
	}
	marked := make(map[Component]bool)
	for _, l := range due {
		marked[l.model] = true
		for p := l.model.Parent(); p != nil && !marked[p]; p = p.Parent() {
			marked[p] = true
		}
	}
	models, err := orderImminent(s.root, marked, t, make([]Atomic, 0, len(due)))
	if err != nil {
		return nil, err
	}
	ordered := make([]*leaf, len(models))
	for i, m := range models {
		ordered[i] = s.byModel[m]
	}
	return ordered, nil
}

func (s *Simulator) timeAdvance(l *leaf, t Time) (Time, error) {
	ta, err := l.model.TimeAdvance(l.state)
	if err != nil {
		return 0, s.stateError(l, "timeAdvance", l.state, t, err)
	}
	if !ta.valid() {
		return 0, s.stateError(l, "timeAdvance", l.state, t, fmt.Errorf("time advance %v is negative or NaN", ta))
	}
	return ta, nil
}

func (s *Simulator) stateError(l *leaf, op string, st State, t Time, err error) error {
	return &StateError{Model: l.path, Op: op, State: st, Time: t, Err: err}
}

func (s *Simulator) fail(err error) error {
	s.err = err
	s.Metrics.SimEndedTime = s.Clock
	return err
}

func (s *Simulator) terminate(reason string) {
	s.terminated = true
	s.Metrics.SimEndedTime = s.Clock
	logrus.Debugf("[t=%v] Terminating: %s", s.Clock, reason)
}

func (s *Simulator) recordTransition(l *leaf, kind trace.Kind, elapsed Time) {
	if s.Trace == nil {
		return
	}
	s.Trace.RecordTransition(trace.TransitionRecord{
		Clock:   float64(l.tLast),
		Model:   l.path,
		Kind:    kind,
		Elapsed: float64(elapsed),
		State:   fmt.Sprint(l.state),
		Next:    l.tNext.String(),
	})
}

func (s *Simulator) recordMessage(t Time, kind trace.MessageKind, p *Port, msg Message) {
	if s.Trace == nil {
		return
	}
	s.Trace.RecordMessage(trace.MessageRecord{
		Clock:   float64(t),
		Kind:    kind,
		Port:    p.String(),
		Message: fmt.Sprint(msg),
	})
}

// Inject schedules msg to arrive on one of the root's input ports at time
// at. Injections at the same time are delivered in call order, ahead of
// any output produced at that instant. A run that has ended accepts no
// further input.
func (s *Simulator) Inject(p *Port, at Time, msg Message) error {
	if p == nil || p.host != Component(s.root) || p.dir != In {
		return configErrorf(Path(s.root), "cannot inject on %v: not an input port of the root", p)
	}
	if math.IsNaN(float64(at)) || at.IsInfinite() || at < s.Clock {
		return configErrorf(Path(s.root), "cannot inject at t=%v (clock is %v)", at, s.Clock)
	}
	if s.terminated || s.err != nil {
		return configErrorf(Path(s.root), "cannot inject at t=%v: the run has already ended", at)
	}
	s.nextSeq++
	heap.Push(s.inputs, &inputEvent{time: at, seq: s.nextSeq, port: p, msg: msg})
	return nil
}

// Root returns the model being simulated.
func (s *Simulator) Root() *Coupled { return s.root }

// Terminated reports whether the run has reached its termination condition.
func (s *Simulator) Terminated() bool { return s.terminated }

// StateOf returns the current state of an atomic model in this run.
func (s *Simulator) StateOf(m Atomic) (State, bool) {
	l, ok := s.byModel[m]
	if !ok {
		return nil, false
	}
	return l.state, true
}

// LastEventTime returns the time of m's last transition (0 before any).
func (s *Simulator) LastEventTime(m Atomic) Time {
	if l, ok := s.byModel[m]; ok {
		return l.tLast
	}
	return Infinity
}

// TimeNext returns the next event time of c: the leaf's own schedule for an
// atomic model, the minimum over its children for a coupled one.
func (s *Simulator) TimeNext(c Component) Time {
	switch m := c.(type) {
	case *Coupled:
		t := Infinity
		for _, child := range m.children {
			t = min(t, s.TimeNext(child))
		}
		return t
	case Atomic:
		if l, ok := s.byModel[m]; ok {
			return l.tNext
		}
	}
	return Infinity
}

// Emitted returns every message that left the root so far, in order.
func (s *Simulator) Emitted() []Emission {
	return append([]Emission(nil), s.emitted...)
}

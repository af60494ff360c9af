package sim

import "strings"

// State is the opaque state of an atomic model. The kernel stores it and
// hands it back to the model's own functions; it never inspects it.
type State any

// Component is anything that can sit in a model hierarchy: an atomic model
// (embedding AtomicBase) or a *Coupled.
type Component interface {
	Name() string
	InPorts() []*Port
	OutPorts() []*Port
	Parent() *Coupled
	base() *ComponentBase
}

// Atomic is a leaf model. All four functions must be pure given their
// arguments: the kernel owns the state value and the model returns the
// successor instead of mutating itself.
type Atomic interface {
	Component

	// InitialState returns the state the model starts in at t=0.
	InitialState() State

	// TimeAdvance returns how long the model stays in s absent input:
	// a nonnegative time or Infinity.
	TimeAdvance(s State) (Time, error)

	// Output is called once per firing, with the pre-transition state.
	Output(s State) (Outputs, error)

	// InternalTransition returns the state after a scheduled firing.
	InternalTransition(s State) (State, error)

	// ExternalTransition returns the state after receiving inputs,
	// elapsed time units after the model's last transition.
	ExternalTransition(s State, elapsed Time, inputs Bag) (State, error)
}

// ComponentBase carries the name, ports and parent link shared by every
// component. Embed it through AtomicBase; Coupled embeds it directly.
type ComponentBase struct {
	name   string
	in     []*Port
	out    []*Port
	parent *Coupled
	self   Component
}

func (b *ComponentBase) Name() string      { return b.name }
func (b *ComponentBase) InPorts() []*Port  { return b.in }
func (b *ComponentBase) OutPorts() []*Port { return b.out }
func (b *ComponentBase) Parent() *Coupled  { return b.parent }
func (b *ComponentBase) base() *ComponentBase {
	return b
}

// AddInPort declares a new input port.
func (b *ComponentBase) AddInPort(name string) *Port {
	p := &Port{name: name, dir: In, host: b.self}
	b.in = append(b.in, p)
	return p
}

// AddOutPort declares a new output port.
func (b *ComponentBase) AddOutPort(name string) *Port {
	p := &Port{name: name, dir: Out, host: b.self}
	b.out = append(b.out, p)
	return p
}

// port looks a port up by name in either direction.
func (b *ComponentBase) port(name string) *Port {
	for _, p := range b.in {
		if p.name == name {
			return p
		}
	}
	for _, p := range b.out {
		if p.name == name {
			return p
		}
	}
	return nil
}

// duplicatePort returns the first port name declared twice, in either
// direction, or "" if every name is distinct.
func (b *ComponentBase) duplicatePort() string {
	seen := make(map[string]bool, len(b.in)+len(b.out))
	for _, ports := range [][]*Port{b.in, b.out} {
		for _, p := range ports {
			if seen[p.name] {
				return p.name
			}
			seen[p.name] = true
		}
	}
	return ""
}

// bind records the outer component and re-homes ports declared before it
// was known.
func (b *ComponentBase) bind(self Component) {
	b.self = self
	for _, p := range b.in {
		p.host = self
	}
	for _, p := range b.out {
		p.host = self
	}
}

// AtomicBase is embedded by atomic model implementations.
//
//	type Generator struct {
//		sim.AtomicBase
//		Out *sim.Port
//	}
type AtomicBase struct {
	ComponentBase
}

// NewAtomicBase returns a base for an atomic model called name.
func NewAtomicBase(name string) AtomicBase {
	return AtomicBase{ComponentBase: ComponentBase{name: name}}
}

// Path returns the dotted path of c from the root of its hierarchy.
func Path(c Component) string {
	if c == nil {
		return ""
	}
	names := []string{c.Name()}
	for p := c.Parent(); p != nil; p = p.Parent() {
		names = append(names, p.Name())
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, ".")
}

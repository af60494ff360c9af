// Package trace provides run-trace recording for DEVS simulations.
// This package has no dependencies on sim/: it stores pure data types.
package trace

// Kind names the transition a model went through.
type Kind string

const (
	KindInit      Kind = "init"
	KindInternal  Kind = "internal"
	KindExternal  Kind = "external"
	KindConfluent Kind = "confluent"
)

// MessageKind names where a routed message came from or went to.
type MessageKind string

const (
	MessageOutput MessageKind = "output" // produced by an atomic output function
	MessageInject MessageKind = "inject" // injected onto a root input port
	MessageEmit   MessageKind = "emit"   // left the hierarchy through a root output port
)

// TransitionRecord captures one state change of one atomic model.
type TransitionRecord struct {
	Clock   float64 `yaml:"clock" json:"clock"`
	Model   string  `yaml:"model" json:"model"`
	Kind    Kind    `yaml:"kind" json:"kind"`
	Elapsed float64 `yaml:"elapsed,omitempty" json:"elapsed,omitempty"` // external transitions only
	State   string  `yaml:"state" json:"state"`                         // state after the transition
	Next    string  `yaml:"next" json:"next"`                           // next event time after the transition, "inf" when passive
}

// MessageRecord captures one message crossing a port.
type MessageRecord struct {
	Clock   float64     `yaml:"clock" json:"clock"`
	Kind    MessageKind `yaml:"kind" json:"kind"`
	Port    string      `yaml:"port" json:"port"`
	Message string      `yaml:"message" json:"message"`
}

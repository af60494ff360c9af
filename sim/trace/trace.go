package trace

import "github.com/google/uuid"

// TraceLevel controls the verbosity of run tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelTransitions captures every atomic state transition.
	TraceLevelTransitions TraceLevel = "transitions"
	// TraceLevelMessages captures transitions plus every routed message.
	TraceLevelMessages TraceLevel = "messages"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:        true,
	TraceLevelTransitions: true,
	TraceLevelMessages:    true,
	"":                    true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether the config records anything at all.
func (c TraceConfig) Enabled() bool {
	return c.Level != TraceLevelNone && c.Level != ""
}

// SimulationTrace collects records during one simulation run.
type SimulationTrace struct {
	RunID       string             `yaml:"run_id" json:"run_id"`
	Root        string             `yaml:"root" json:"root"`
	Config      TraceConfig        `yaml:"-" json:"-"`
	Transitions []TransitionRecord `yaml:"transitions" json:"transitions"`
	Messages    []MessageRecord    `yaml:"messages,omitempty" json:"messages,omitempty"`
}

// NewSimulationTrace creates a SimulationTrace ready for recording, stamped
// with a fresh run ID so traces of concurrent runs can be told apart.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		RunID:       uuid.NewString(),
		Config:      config,
		Transitions: make([]TransitionRecord, 0),
		Messages:    make([]MessageRecord, 0),
	}
}

// RecordTransition appends a transition record.
func (st *SimulationTrace) RecordTransition(record TransitionRecord) {
	st.Transitions = append(st.Transitions, record)
}

// RecordMessage appends a message record if the level asks for messages.
func (st *SimulationTrace) RecordMessage(record MessageRecord) {
	if st.Config.Level != TraceLevelMessages {
		return
	}
	st.Messages = append(st.Messages, record)
}

// ForModel returns the transitions of a single model, in order.
func (st *SimulationTrace) ForModel(model string) []TransitionRecord {
	var out []TransitionRecord
	for _, r := range st.Transitions {
		if r.Model == model {
			out = append(out, r)
		}
	}
	return out
}

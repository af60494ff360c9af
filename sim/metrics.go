// Tracks run-wide and per-model kernel statistics.

package sim

import (
	"fmt"
	"io"
	"sort"
)

// ModelStats counts the transitions of one atomic model.
type ModelStats struct {
	Internal  int `json:"internal"`
	External  int `json:"external"`
	Confluent int `json:"confluent"`
}

// Metrics aggregates statistics about a run for final reporting.
type Metrics struct {
	Steps                int  // Scheduler steps executed
	InternalTransitions  int  // Firings without input at the same instant
	ExternalTransitions  int  // Input deliveries to models that did not fire
	ConfluentTransitions int  // Firings that also received input
	MessagesRouted       int  // Messages delivered to leaf input ports
	MessagesInjected     int  // Messages injected on root input ports
	MessagesEmitted      int  // Messages that left through root output ports
	MaxChainedSteps      int  // Longest chain of extra steps at one instant
	SimEndedTime         Time // Clock when the run terminated

	PerModel map[string]*ModelStats // model path -> counts
}

func NewMetrics() *Metrics {
	return &Metrics{PerModel: make(map[string]*ModelStats)}
}

func (m *Metrics) model(path string) *ModelStats {
	ms, ok := m.PerModel[path]
	if !ok {
		ms = &ModelStats{}
		m.PerModel[path] = ms
	}
	return ms
}

// Print writes the aggregated metrics to w at the end of a run.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Simulation ended at   : %v\n", m.SimEndedTime)
	fmt.Fprintf(w, "Steps                 : %d\n", m.Steps)
	fmt.Fprintf(w, "Internal transitions  : %d\n", m.InternalTransitions)
	fmt.Fprintf(w, "External transitions  : %d\n", m.ExternalTransitions)
	fmt.Fprintf(w, "Confluent transitions : %d\n", m.ConfluentTransitions)
	fmt.Fprintf(w, "Messages routed       : %d\n", m.MessagesRouted)
	if m.MessagesInjected > 0 || m.MessagesEmitted > 0 {
		fmt.Fprintf(w, "Messages injected     : %d\n", m.MessagesInjected)
		fmt.Fprintf(w, "Messages emitted      : %d\n", m.MessagesEmitted)
	}
	fmt.Fprintf(w, "Max chained steps     : %d\n", m.MaxChainedSteps)

	paths := make([]string, 0, len(m.PerModel))
	for p := range m.PerModel {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		ms := m.PerModel[p]
		fmt.Fprintf(w, "  %-24s int=%d ext=%d conf=%d\n", p, ms.Internal, ms.External, ms.Confluent)
	}
}

package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalTransitions int
	ByKind           map[Kind]int
	PerModel         map[string]int // model path → transition count, init excluded
	Messages         map[MessageKind]int
	LastClock        float64
	UniqueInstants   int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ByKind:   make(map[Kind]int),
		PerModel: make(map[string]int),
		Messages: make(map[MessageKind]int),
	}
	if st == nil {
		return summary
	}

	instants := make(map[float64]bool)
	for _, r := range st.Transitions {
		summary.ByKind[r.Kind]++
		if r.Kind == KindInit {
			continue
		}
		summary.TotalTransitions++
		summary.PerModel[r.Model]++
		instants[r.Clock] = true
		if r.Clock > summary.LastClock {
			summary.LastClock = r.Clock
		}
	}
	for _, m := range st.Messages {
		summary.Messages[m.Kind]++
	}
	summary.UniqueInstants = len(instants)

	return summary
}

package trace

import "testing"

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)

	if summary.TotalTransitions != 0 || summary.UniqueInstants != 0 {
		t.Error("expected zero counts for nil trace")
	}
	if summary.PerModel == nil || summary.ByKind == nil {
		t.Error("maps must be non-nil")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with init, internal, external and confluent records
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelMessages})
	st.RecordTransition(TransitionRecord{Clock: 0, Model: "GEN", Kind: KindInit})
	st.RecordTransition(TransitionRecord{Clock: 0, Model: "PROC", Kind: KindInit})
	st.RecordTransition(TransitionRecord{Clock: 2, Model: "GEN", Kind: KindInternal})
	st.RecordTransition(TransitionRecord{Clock: 2, Model: "PROC", Kind: KindExternal})
	st.RecordTransition(TransitionRecord{Clock: 6, Model: "PROC", Kind: KindConfluent})
	st.RecordMessage(MessageRecord{Clock: 2, Kind: MessageOutput})
	st.RecordMessage(MessageRecord{Clock: 6, Kind: MessageEmit})

	// WHEN summarized
	summary := Summarize(st)

	// THEN init records are counted by kind but not as transitions
	if summary.TotalTransitions != 3 {
		t.Errorf("expected 3 transitions, got %d", summary.TotalTransitions)
	}
	if summary.ByKind[KindInit] != 2 {
		t.Errorf("expected 2 init records, got %d", summary.ByKind[KindInit])
	}
	if summary.PerModel["PROC"] != 2 || summary.PerModel["GEN"] != 1 {
		t.Errorf("per-model counts wrong: %v", summary.PerModel)
	}
	if summary.UniqueInstants != 2 {
		t.Errorf("expected 2 instants, got %d", summary.UniqueInstants)
	}
	if summary.LastClock != 6 {
		t.Errorf("expected last clock 6, got %v", summary.LastClock)
	}
	if summary.Messages[MessageOutput] != 1 || summary.Messages[MessageEmit] != 1 {
		t.Errorf("message counts wrong: %v", summary.Messages)
	}
}

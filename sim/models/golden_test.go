package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/devsim/sim"
	"github.com/inference-sim/devsim/sim/internal/testutil"
)

// TestGBP_GoldenDataset validates that the library network reproduces the
// expected counters and processor activity of every golden case.
func TestGBP_GoldenDataset(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Tests)

	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			g, err := NewGBP("GBP", GBPConfig{
				Interval:    sim.Time(tc.Interval),
				Capacity:    tc.Capacity,
				ServiceTime: sim.Time(tc.ServiceTime),
			})
			require.NoError(t, err)

			s, obs := stepGBP(t, g, sim.Time(tc.Horizon))
			want := tc.Metrics
			m := s.Metrics

			assert.Equal(t, want.Steps, m.Steps, "steps")
			assert.Equal(t, want.InternalTransitions, m.InternalTransitions, "internal transitions")
			assert.Equal(t, want.ExternalTransitions, m.ExternalTransitions, "external transitions")
			assert.Equal(t, want.ConfluentTransitions, m.ConfluentTransitions, "confluent transitions")
			assert.Equal(t, want.MessagesRouted, m.MessagesRouted, "messages routed")
			assert.Equal(t, want.MaxChainedSteps, m.MaxChainedSteps, "max chained steps")
			assert.Equal(t, want.MaxQueue, obs.maxQueue, "max queue")
			buf, _ := s.StateOf(g.BP.Buffer)
			assert.Equal(t, want.FinalQueue, buf.(BufferState).N, "final queue")
			assert.Len(t, obs.busyAt, want.ProcBusyCount, "processor starts")
			if want.ProcBusyAt != nil {
				assert.Equal(t, toTimes(want.ProcBusyAt), obs.busyAt)
			}
			if want.ProcFreeAt != nil {
				assert.Equal(t, toTimes(want.ProcFreeAt), obs.freeAt)
			}
			testutil.AssertFloat64Equal(t, "sim_ended_time", want.SimEndedTime, float64(m.SimEndedTime), 1e-9)
		})
	}
}

func toTimes(vs []float64) []sim.Time {
	ts := make([]sim.Time, len(vs))
	for i, v := range vs {
		ts[i] = sim.Time(v)
	}
	return ts
}

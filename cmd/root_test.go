package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/devsim/sim"
	"github.com/inference-sim/devsim/sim/models"
	"github.com/inference-sim/devsim/sim/trace"
)

func defaultOptions() runOptions {
	return runOptions{
		Horizon:         -1,
		MaxChainedSteps: sim.DefaultMaxChainedSteps,
		TraceLevel:      string(trace.TraceLevelNone),
		GBP:             models.DefaultGBPConfig(),
	}
}

func TestRunSimulation_BuiltInNetwork_PrintsMetrics(t *testing.T) {
	// GIVEN the default flags
	var buf bytes.Buffer

	// WHEN the built-in network is run
	s, err := runSimulation(context.Background(), defaultOptions(), &buf)

	// THEN it runs to the default horizon and the metrics report is written
	require.NoError(t, err)
	assert.Equal(t, models.DefaultHorizon, s.Clock)
	assert.Contains(t, buf.String(), "=== Simulation Metrics ===")
	assert.NotContains(t, buf.String(), "Trace Summary")
}

func TestRunSimulation_HorizonFlagOverrides(t *testing.T) {
	opts := defaultOptions()
	opts.Horizon = 10

	s, err := runSimulation(context.Background(), opts, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, sim.Time(10), s.Clock)
}

func TestRunSimulation_NetworkFile_WithTraceExport(t *testing.T) {
	// GIVEN the built-in network written out as a spec file and a trace destination
	dir := t.TempDir()
	specPath := filepath.Join(dir, "gbp.yaml")
	spec := models.GBPSpec("GBP", models.DefaultGBPConfig())
	h := 20.0
	spec.Horizon = &h
	writeYAML(t, specPath, spec)

	opts := defaultOptions()
	opts.NetworkPath = specPath
	opts.TraceLevel = string(trace.TraceLevelTransitions)
	opts.TraceOutput = filepath.Join(dir, "trace.json")

	// WHEN run
	var buf bytes.Buffer
	s, err := runSimulation(context.Background(), opts, &buf)
	require.NoError(t, err)

	// THEN the spec's horizon applies and the saved trace matches the in-memory one
	assert.Equal(t, sim.Time(20), s.Clock)
	assert.Contains(t, buf.String(), "=== Trace Summary ===")
	loaded, err := trace.LoadFile(opts.TraceOutput)
	require.NoError(t, err)
	assert.Equal(t, s.Trace.RunID, loaded.RunID)
	assert.Equal(t, s.Trace.Transitions, loaded.Transitions)
}

func TestRunSimulation_NetworkFileWithoutHorizon_UsesDefault(t *testing.T) {
	// GIVEN a network file holding a lone generator and no horizon
	path := filepath.Join(t.TempDir(), "gen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`version: "1"
root:
  name: R
  kind: coupled
  children:
    - name: GEN
      kind: generator
      interval: 2
`), 0644))
	opts := defaultOptions()
	opts.NetworkPath = path

	// WHEN the horizon is resolved
	_, horizon, err := buildNetwork(opts)

	// THEN the default horizon applies instead of running forever
	require.NoError(t, err)
	assert.Equal(t, models.DefaultHorizon, horizon)

	s, err := runSimulation(context.Background(), opts, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultHorizon, s.Clock)
	assert.True(t, s.Terminated())
}

func TestRunSimulation_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*runOptions)
		wantErr string
	}{
		{"unknown trace level", func(o *runOptions) { o.TraceLevel = "verbose" }, "unknown trace level"},
		{"trace output without trace", func(o *runOptions) { o.TraceOutput = "t.yaml" }, "--trace-output"},
		{"missing network file", func(o *runOptions) { o.NetworkPath = "/nonexistent/net.yaml" }, "reading network spec"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := defaultOptions()
			tc.mutate(&opts)
			_, err := runSimulation(context.Background(), opts, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRunSimulation_InvalidSpecFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root:\n  name: R\n  kind: generator\n  interval: 1\n"), 0644))

	opts := defaultOptions()
	opts.NetworkPath = path
	_, err := runSimulation(context.Background(), opts, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid network spec")
}

func TestRunCmd_FlagDefaults(t *testing.T) {
	flags := runCmd.Flags()
	for name, want := range map[string]string{
		"horizon":           "-1",
		"max-chained-steps": "10000",
		"log":               "error",
		"trace":             "none",
		"capacity":          "4",
		"interval":          "2",
		"service-time":      "4",
	} {
		f := flags.Lookup(name)
		require.NotNil(t, f, "flag --%s", name)
		assert.Equal(t, want, f.DefValue, "flag --%s", name)
	}
	assert.NotNil(t, sweepCmd.Flags().Lookup("capacities"))
	assert.NotNil(t, sweepCmd.Flags().Lookup("parallel"))
}

// Package testutil provides shared test infrastructure for the devsim kernel.
// It holds the golden dataset types and assertion helpers used across the
// sim/ and sim/models/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase represents a single generator-buffer-processor run.
type GoldenTestCase struct {
	Name        string        `json:"name"`
	Interval    float64       `json:"interval"`
	Capacity    int           `json:"capacity"` // 0 = unbounded
	ServiceTime float64       `json:"service_time"`
	Horizon     float64       `json:"horizon"`
	Metrics     GoldenMetrics `json:"metrics"`
}

// GoldenMetrics represents the expected outcome of a golden test case.
type GoldenMetrics struct {
	// Exact match counters
	Steps                int `json:"steps"`
	InternalTransitions  int `json:"internal_transitions"`
	ExternalTransitions  int `json:"external_transitions"`
	ConfluentTransitions int `json:"confluent_transitions"`
	MessagesRouted       int `json:"messages_routed"`
	MaxChainedSteps      int `json:"max_chained_steps"`

	// Queue length observed after every step
	MaxQueue   int `json:"max_queue"`
	FinalQueue int `json:"final_queue"`

	// Processor activity
	ProcBusyCount int       `json:"proc_busy_count"`
	ProcBusyAt    []float64 `json:"proc_busy_at,omitempty"` // optional: exact start times
	ProcFreeAt    []float64 `json:"proc_free_at,omitempty"`

	SimEndedTime float64 `json:"sim_ended_time"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

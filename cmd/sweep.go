package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/devsim/sim"
	"github.com/inference-sim/devsim/sim/models"
)

var (
	sweepCapacities []int // Buffer capacities to compare
	sweepParallel   int   // Maximum concurrent runs
)

// SweepResult is the outcome of one run of a capacity sweep.
type SweepResult struct {
	Capacity    int
	Steps       int
	Transitions int
	BusyStarts  int // external transitions of the processor
	FinalQueue  int
	EndedAt     sim.Time
}

// sweepCmd runs the built-in GBP network once per buffer capacity
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the built-in network across several buffer capacities",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		opts := currentRunOptions()
		results, err := runSweep(ctx, opts, sweepCapacities, sweepParallel)
		if err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		printSweep(os.Stdout, results)
	},
}

// runSweep runs one independent simulation per capacity, at most parallel
// at a time. Results come back in the order of capacities.
func runSweep(ctx context.Context, opts runOptions, capacities []int, parallel int) ([]SweepResult, error) {
	if len(capacities) == 0 {
		return nil, fmt.Errorf("at least one capacity is required")
	}
	if parallel < 1 {
		return nil, fmt.Errorf("--parallel must be at least 1, got %d", parallel)
	}
	for _, capacity := range capacities {
		if capacity < 0 {
			return nil, fmt.Errorf("capacity must be non-negative, got %d", capacity)
		}
	}
	horizon := models.DefaultHorizon
	if opts.Horizon >= 0 {
		horizon = sim.Time(opts.Horizon)
	}

	results := make([]SweepResult, len(capacities))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, capacity := range capacities {
		g.Go(func() error {
			cfg := opts.GBP
			cfg.Capacity = capacity
			net, err := models.NewGBP("GBP", cfg)
			if err != nil {
				return err
			}
			s, err := sim.NewSimulator(net.Model, sim.SimConfig{Horizon: horizon, MaxChainedSteps: opts.MaxChainedSteps})
			if err != nil {
				return err
			}
			if err := s.Run(ctx); err != nil {
				return fmt.Errorf("capacity %d: %w", capacity, err)
			}
			buf, _ := s.StateOf(net.BP.Buffer)
			procPath := sim.Path(net.BP.Processor)
			results[i] = SweepResult{
				Capacity:    capacity,
				Steps:       s.Metrics.Steps,
				Transitions: s.Metrics.InternalTransitions + s.Metrics.ExternalTransitions + s.Metrics.ConfluentTransitions,
				BusyStarts:  s.Metrics.PerModel[procPath].External,
				FinalQueue:  buf.(models.BufferState).N,
				EndedAt:     s.Metrics.SimEndedTime,
			}
			logrus.Debugf("capacity %d done: %d steps", capacity, s.Metrics.Steps)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printSweep(w io.Writer, results []SweepResult) {
	fmt.Fprintln(w, "=== Capacity Sweep ===")
	fmt.Fprintf(w, "%-10s %8s %12s %12s %12s %8s\n", "capacity", "steps", "transitions", "busy starts", "final queue", "ended")
	for _, r := range results {
		capacity := fmt.Sprint(r.Capacity)
		if r.Capacity == 0 {
			capacity = "unbounded"
		}
		fmt.Fprintf(w, "%-10s %8d %12d %12d %12d %8v\n", capacity, r.Steps, r.Transitions, r.BusyStarts, r.FinalQueue, r.EndedAt)
	}
}

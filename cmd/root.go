package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/devsim/sim"
	"github.com/inference-sim/devsim/sim/models"
	"github.com/inference-sim/devsim/sim/trace"
)

var (
	// CLI flags for the run itself
	networkPath       string  // YAML network spec; empty runs the built-in GBP network
	simulationHorizon float64 // Termination time (inclusive); negative = the network's own, else models.DefaultHorizon
	maxChainedSteps   int     // Bound on same-instant chained steps
	logLevel          string  // Log verbosity level
	traceLevel        string  // Trace verbosity: none, transitions, messages
	traceOutput       string  // Trace export path (.yaml or .json)

	// CLI flags for the built-in GBP network
	genInterval    float64 // Generator interval
	bufferCapacity int     // Buffer capacity (0 = unbounded)
	serviceTime    float64 // Processor service time
)

// runOptions is the resolved form of the run flags.
type runOptions struct {
	NetworkPath     string
	Horizon         float64 // < 0 = not set
	MaxChainedSteps int
	TraceLevel      string
	TraceOutput     string
	GBP             models.GBPConfig
}

func currentRunOptions() runOptions {
	return runOptions{
		NetworkPath:     networkPath,
		Horizon:         simulationHorizon,
		MaxChainedSteps: maxChainedSteps,
		TraceLevel:      traceLevel,
		TraceOutput:     traceOutput,
		GBP: models.GBPConfig{
			Interval:    sim.Time(genInterval),
			Capacity:    bufferCapacity,
			ServiceTime: sim.Time(serviceTime),
		},
	}
}

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "devsim",
	Short: "Hierarchical Classic DEVS simulator",
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a DEVS simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		startTime := time.Now()
		if _, err := runSimulation(ctx, currentRunOptions(), os.Stdout); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// buildNetwork returns the root model to simulate and the horizon to use.
func buildNetwork(opts runOptions) (*sim.Coupled, sim.Time, error) {
	horizon := models.DefaultHorizon
	var root *sim.Coupled
	if opts.NetworkPath != "" {
		spec, err := models.LoadNetworkSpec(opts.NetworkPath)
		if err != nil {
			return nil, 0, err
		}
		if err := spec.Validate(); err != nil {
			return nil, 0, fmt.Errorf("invalid network spec %s: %w", opts.NetworkPath, err)
		}
		if root, err = spec.Build(); err != nil {
			return nil, 0, err
		}
		horizon = spec.HorizonOr(models.DefaultHorizon)
	} else {
		g, err := models.NewGBP("GBP", opts.GBP)
		if err != nil {
			return nil, 0, err
		}
		root = g.Model
	}
	if opts.Horizon >= 0 {
		horizon = sim.Time(opts.Horizon)
	}
	return root, horizon, nil
}

// runSimulation builds the network, runs it and writes the metrics report
// (and trace summary, if tracing) to w.
func runSimulation(ctx context.Context, opts runOptions, w io.Writer) (*sim.Simulator, error) {
	if !trace.IsValidTraceLevel(opts.TraceLevel) {
		return nil, fmt.Errorf("unknown trace level %q; valid: none, transitions, messages", opts.TraceLevel)
	}
	traceCfg := trace.TraceConfig{Level: trace.TraceLevel(opts.TraceLevel)}
	if opts.TraceOutput != "" && !traceCfg.Enabled() {
		return nil, fmt.Errorf("--trace-output requires --trace transitions or messages")
	}
	root, horizon, err := buildNetwork(opts)
	if err != nil {
		return nil, err
	}

	cfg := sim.SimConfig{
		Horizon:         horizon,
		MaxChainedSteps: opts.MaxChainedSteps,
		Trace:           traceCfg,
	}
	logrus.Infof("Starting simulation of %s, horizon=%v, max chained steps=%d", sim.Path(root), horizon, opts.MaxChainedSteps)

	s, err := sim.NewSimulator(root, cfg)
	if err != nil {
		return nil, err
	}
	runErr := s.Run(ctx)
	s.Metrics.Print(w)
	if runErr != nil {
		return s, runErr
	}

	if s.Trace != nil {
		printTraceSummary(w, trace.Summarize(s.Trace))
		if opts.TraceOutput != "" {
			if err := s.Trace.SaveFile(opts.TraceOutput); err != nil {
				return s, err
			}
			logrus.Infof("Trace written to %s", opts.TraceOutput)
		}
	}
	return s, nil
}

func printTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Trace Summary ===")
	fmt.Fprintf(w, "Transitions       : %d\n", ts.TotalTransitions)
	fmt.Fprintf(w, "Distinct instants : %d\n", ts.UniqueInstants)
	fmt.Fprintf(w, "Last transition   : %v\n", ts.LastClock)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, sweepCmd} {
		c.Flags().Float64Var(&simulationHorizon, "horizon", -1, "Simulation horizon, inclusive (default: the network's own, else 80)")
		c.Flags().IntVar(&maxChainedSteps, "max-chained-steps", sim.DefaultMaxChainedSteps, "Maximum chained steps at one instant (negative disables the check)")
		c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

		// Built-in GBP network
		c.Flags().Float64Var(&genInterval, "interval", float64(models.DefaultInterval), "Generator interval")
		c.Flags().Float64Var(&serviceTime, "service-time", float64(models.DefaultServiceTime), "Processor service time")
	}

	runCmd.Flags().StringVar(&networkPath, "network", "", "Path to a YAML network spec (default: built-in GBP network)")
	runCmd.Flags().IntVar(&bufferCapacity, "capacity", models.DefaultCapacity, "Buffer capacity of the built-in network (0 = unbounded)")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Trace level (none, transitions, messages)")
	runCmd.Flags().StringVar(&traceOutput, "trace-output", "", "Write the trace to this file (.json for JSON, YAML otherwise)")

	sweepCmd.Flags().IntSliceVar(&sweepCapacities, "capacities", []int{1, 2, 4, 8, 0}, "Buffer capacities to sweep (0 = unbounded)")
	sweepCmd.Flags().IntVar(&sweepParallel, "parallel", 4, "Maximum simulations run at once")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
}

package sim

import "github.com/inference-sim/devsim/sim/trace"

// DefaultMaxChainedSteps bounds how many extra steps may run at one
// simulated instant before the network is declared unstable.
const DefaultMaxChainedSteps = 10000

// SimConfig groups the run parameters for NewSimulator.
type SimConfig struct {
	// Horizon is the termination time. Events at exactly Horizon still run;
	// the run stops once the next event lies beyond it. Infinity means run
	// to exhaustion.
	Horizon Time

	// MaxChainedSteps bounds the steps that may follow the first step of a
	// single simulated instant (zero-time-advance chains). 0 selects
	// DefaultMaxChainedSteps; a negative value disables the check.
	MaxChainedSteps int

	// Trace controls transition/message recording. Level none disables it.
	Trace trace.TraceConfig
}

// DefaultSimConfig runs to exhaustion with the default chain bound and no trace.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Horizon:         Infinity,
		MaxChainedSteps: DefaultMaxChainedSteps,
		Trace:           trace.TraceConfig{Level: trace.TraceLevelNone},
	}
}

func (c SimConfig) chainBound() int {
	if c.MaxChainedSteps == 0 {
		return DefaultMaxChainedSteps
	}
	return c.MaxChainedSteps
}

package sim

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every error returned by the kernel matches exactly
// one of them under errors.Is.
var (
	// ErrState marks a transition, output or time-advance function that
	// was handed a state or input combination it does not recognize.
	ErrState = errors.New("state error")

	// ErrConfiguration marks a structural fault in the model network:
	// bad couplings, a broken select policy, or unbounded same-instant
	// re-triggering.
	ErrConfiguration = errors.New("configuration error")
)

// StateError reports a model function failing on its own state.
type StateError struct {
	Model string // full path of the offending atomic model
	Op    string // "timeAdvance", "output", "internalTransition", "externalTransition"
	State State  // state the function was invoked with
	Time  Time   // simulated time of the failure
	Err   error  // error returned by the model, if any
}

func (e *StateError) Error() string {
	msg := fmt.Sprintf("state error: model %s: %s in state <%v> at t=%v", e.Model, e.Op, e.State, e.Time)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes every StateError match ErrState.
func (e *StateError) Is(target error) bool {
	return target == ErrState
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a structural fault in a model network.
type ConfigurationError struct {
	Model  string // full path of the coupled (or atomic) model at fault
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: model %s: %s", e.Model, e.Reason)
}

// Is makes every ConfigurationError match ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErrorf(model string, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Model: model, Reason: fmt.Sprintf(format, args...)}
}

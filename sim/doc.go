// Package sim provides a hierarchical Classic DEVS simulation kernel.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - model.go: the Atomic contract (time advance, output, internal and external transitions)
//   - coupled.go: Coupled models, their children and port couplings
//   - simulator.go: the scheduler loop (fire imminent leaves, route, apply inputs)
//
// # Architecture
//
// The sim package holds the kernel; everything domain-specific lives in
// sub-packages:
//   - sim/models/: library models (generator, buffer, processor) and YAML network specs
//   - sim/trace/: transition and message trace recording and export
//
// # Step Semantics
//
// Each Step takes the earliest next-event time T over all atomic models and
// pending injections. Every atomic model due at T fires: its output function
// sees the pre-transition state, then its internal transition runs. Firing
// order comes from the select policy of each coupled model on the path,
// applied level by level. Messages are then routed through the couplings
// into per-model bags; only once every bag is complete do external
// transitions run. A model that both fired and received input is confluent
// and sees its external transition with elapsed 0.
//
// # Key Interfaces
//   - Atomic: a leaf model; embed AtomicBase to get ports and naming
//   - Component: anything that can be a child of a Coupled
//   - SelectFunc: tie-break among imminent children (see Priority)
package sim

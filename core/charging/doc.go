// Package charging allocates hourly charging energy to a fleet of electric
// vehicles.
//
// A Policy orders the hours a vehicle is plugged in. Allocate walks that
// order at constant power until the energy need is met or the hours run out.
// Aggregate and LoadAccumulator sum per-vehicle draws into a 24 hour fleet
// load curve, and ComputeMetrics reduces a run to summary statistics. The
// Simulator ties these together for a whole fleet and can spread the
// per-vehicle work over several goroutines.
package charging

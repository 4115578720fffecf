// Package spread implements the ensemble grid-propagation fire spread
// engine: a deterministic cellular-automaton simulator driven many times
// with seed-perturbed weather inputs, reduced into probability, intensity,
// and uncertainty rasters plus a compass spread-direction field.
//
// The engine is pure numeric array work over pre-aligned grids. It performs
// no I/O, retains no state across calls, and the only coupling between
// ensemble members is the deterministic seed offset and the final reduction,
// which makes the member loop embarrassingly parallel.
package spread

// Package pipeline chains the stages of a figure: a solver produces the
// accepted trajectory (optionally through an event corrector), a mapper
// turns each accepted state into a scene frame.
//
// Run materializes everything at once. Step and Stream advance one grid
// instant at a time from an explicit SimulationState, so nothing about a
// run lives outside the values the caller holds.
package pipeline

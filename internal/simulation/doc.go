// Package simulation runs the Monte Carlo comparison of delivery models.
//
// For every origin, in registration order, the Engine composes one run per
// transport model: each step draws N samples and the samples are summed
// trial by trial, so index i of every step belongs to the same simulated
// trip. Each run is reduced to a Summary immediately and its samples are
// dropped, so memory stays at O(N) per active worker.
//
// Draw order is fixed. In sequential mode (Workers <= 1) a single generator
// seeded with Config.Seed serves the whole run. In parallel mode each origin
// gets its own generator seeded with Seed+originIndex; results are then
// reproducible across parallel runs but differ from sequential output.
//
// Usage:
//
//	eng, err := simulation.NewEngine(simulation.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	summaries, err := eng.Run(ctx)
package simulation

// Package forward runs forward-time Wright-Fisher simulations that record
// their genealogy in node and edge tables.
//
// A population of constant size evolves for a number of discrete steps. In
// every step each individual dies with a fixed probability and is replaced by
// the offspring of two parents drawn uniformly from the population. The
// offspring's genome is a mosaic of its parents' genomes, switching parent at
// Poisson-distributed crossover positions.
//
// The tables would grow without bound, so every SimplifyInterval steps (and
// after the last step) they are simplified to the genealogy of the living
// individuals:
//
//	params := forward.DefaultParameters()
//	params.Seed = 42
//	res, err := forward.Run(ctx, params)
//	// res.Tables holds the genealogy of res.Alive
package forward

// Package perturb corrupts point clouds to synthesize registration pairs.
//
// Every function takes the random source explicitly so that a seeded
// *rand.Rand reproduces the same output.
package perturb

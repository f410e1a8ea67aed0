// Package dataset composes raw point sources into classification,
// registration and scene flow samples.
//
// Samples are built on every Get call. Randomness is taken from the
// *rand.Rand given by the caller, so concurrent callers must use separate
// random sources.
package dataset

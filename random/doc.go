// Package random supplies the random bytes for the Cxkk instruction.
//
// A Random seeded with a non-zero value always returns the same sequence.
// A zero seed draws from a base seed taken at start up, unless ZeroSeed is
// set. ZeroSeed is useful for tests that need predictable values.
package random

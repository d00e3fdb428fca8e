// Package dice provides the random number sources used by combat resolution.
//
// All miss, critical, variance, and selection rolls in the core draw from a
// single Source so that tests can substitute a scripted stream.
package dice

// Source produces uniformly distributed random values.
type Source interface {
	// Intn returns a random int in [0, n). Panics if n <= 0.
	Intn(n int) int
	// Float64 returns a random float64 in [0.0, 1.0).
	Float64() float64
}

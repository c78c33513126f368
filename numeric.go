package nlo

// numeric.go: small numeric helpers built on gonum/floats, used wherever this
// package needs a dot product rather than a hand-rolled summation loop.

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// dotSlices returns the dot product of two equal-length slices.
func dotSlices(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return floats.Dot(a, b)
}

func isNegInf(v float64) bool { return math.IsInf(v, -1) }
func isPosInf(v float64) bool { return math.IsInf(v, 1) }

// sortInts sorts s ascending in place; used when writing linear-map entries
// so the NL file's column order is deterministic.
func sortInts(s []int) {
	sort.Ints(s)
}

package forward

import (
	"math"
	"math/rand/v2"
	"slices"
)

// Transmission is a genome interval a child inherits from one parent.
// Parent is an index into the living population.
type Transmission struct {
	Left, Right int64
	Parent      int
}

// poissonChunk bounds the mean handed to Knuth's method; larger means are
// drawn as sums of smaller Poisson variates.
const poissonChunk = 30.0

// poisson draws a Poisson(mean) variate.
func poisson(rng *rand.Rand, mean float64) int {
	n := 0
	for mean > poissonChunk {
		n += knuthPoisson(rng, poissonChunk)
		mean -= poissonChunk
	}
	return n + knuthPoisson(rng, mean)
}

func knuthPoisson(rng *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}
	limit := math.Exp(-mean)
	k := 0
	for p := rng.Float64(); p > limit; p *= rng.Float64() {
		k++
	}
	return k
}

// crossoverPositions returns 0, n sorted positions uniform in [1, L), and L.
// A genome of length 1 has no crossover positions.
func crossoverPositions(rng *rand.Rand, genomeLength int64, n int, out []int64) []int64 {
	out = append(out[:0], 0)
	if genomeLength > 1 {
		for range n {
			out = append(out, 1+rng.Int64N(genomeLength-1))
		}
	}
	slices.Sort(out[1:])
	return append(out, genomeLength)
}

// fillTransmissions splits [crossovers[0], crossovers[last]) between two
// parents, starting with p1 and switching at every position that occurs an
// odd number of times. Positions occurring an even number of times cancel.
func fillTransmissions(p1, p2 int, crossovers []int64, out []Transmission) []Transmission {
	out = out[:0]
	left := crossovers[0]
	for i := 1; i < len(crossovers); {
		right := crossovers[i]
		n := 1
		for i+n < len(crossovers) && crossovers[i+n] == right {
			n++
		}
		if n%2 != 0 {
			out = append(out, Transmission{Left: left, Right: right, Parent: p1})
			left = right
			p1, p2 = p2, p1
		}
		i += n
	}
	return out
}

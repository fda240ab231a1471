// Package mixer synthesizes artificial mixed samples by merging pairs of real
// sequences collected close together in time.
package mixer

import (
	"math"

	"github.com/carbocation/snpmix/mfsl"
)

const secondsPerDay = 24 * 60 * 60

// Pair is an ordered pair of samples. (a, b) and (b, a) are distinct pairs
// and produce different mixes because of the position-parity tie-break.
type Pair struct {
	Sam1 mfsl.Sample
	Sam2 mfsl.Sample
}

type pairIndex struct {
	i, j int
}

// GeneratePairs returns every ordered pair from the full cross product of
// samples whose collection dates are less than days apart and whose sequences
// differ. Samples with unparsable headers never pair. This is O(n²).
func GeneratePairs(samples []mfsl.Sample, days float64) []Pair {
	idx := eligiblePairs(samples, days)

	out := make([]Pair, 0, len(idx))
	for _, p := range idx {
		out = append(out, Pair{Sam1: samples[p.i], Sam2: samples[p.j]})
	}

	return out
}

func eligiblePairs(samples []mfsl.Sample, days float64) []pairIndex {
	window := days * secondsPerDay

	out := make([]pairIndex, 0)
	for i, sam1 := range samples {
		if sam1.ParseErr != nil {
			continue
		}
		for j, sam2 := range samples {
			if sam2.ParseErr != nil {
				continue
			}
			if math.Abs(float64(sam1.EpochTime-sam2.EpochTime)) >= window {
				continue
			}
			if sam1.Sequence == sam2.Sequence {
				continue
			}
			out = append(out, pairIndex{i: i, j: j})
		}
	}

	return out
}

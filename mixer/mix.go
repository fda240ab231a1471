package mixer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/carbocation/snpmix/mfsl"
)

// ErrLengthMismatch is returned when sequences that must be aligned position
// by position have different lengths.
var ErrLengthMismatch = errors.New("mixer: sequences differ in length")

func isCanonical(b byte) bool {
	switch b {
	case 'A', 'C', 'G', 'T':
		return true
	}
	return false
}

// Mix merges the two samples of a pair. Where both parents carry different
// canonical bases the mix gets an N. Everywhere else the base is taken from
// parent 1 at even positions and parent 2 at odd positions.
func Mix(pair Pair) (mfsl.Sample, error) {
	sam1, sam2 := pair.Sam1, pair.Sam2
	if len(sam1.Sequence) != len(sam2.Sequence) {
		return mfsl.Sample{}, fmt.Errorf("%w: %s has %d bases, %s has %d", ErrLengthMismatch, sam1.Name, len(sam1.Sequence), sam2.Name, len(sam2.Sequence))
	}

	var newSeq strings.Builder
	newSeq.Grow(len(sam1.Sequence))

	countMixtureNs := 0
	for i := 0; i < len(sam1.Sequence); i++ {
		base1, base2 := sam1.Sequence[i], sam2.Sequence[i]
		switch {
		case isCanonical(base1) && isCanonical(base2) && base1 != base2:
			newSeq.WriteByte('N')
			countMixtureNs++
		case i%2 == 0:
			newSeq.WriteByte(base1)
		default:
			newSeq.WriteByte(base2)
		}
	}

	name := sam1.Name + "+" + sam2.Name

	return mfsl.Sample{
		Header:    ">" + name,
		Sequence:  newSeq.String(),
		Name:      name,
		EpochTime: (sam1.EpochTime + sam2.EpochTime) / 2,
		IsMixed:   true,
		Parent1:   sam1.Name,
		Parent2:   sam2.Name,

		CountNsMixture: countMixtureNs,

		// Approximations: the mix is not re-masked, so these are the parents'
		// average rather than a recount.
		CountNsRandom:        (sam1.CountNsRandom + sam2.CountNsRandom) / 2,
		CountNsPrimerDropout: (sam1.CountNsPrimerDropout + sam2.CountNsPrimerDropout) / 2,
	}, nil
}

package mixer

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrTooManyPrimerGaps is returned when more primer gaps are requested than
// the amplicon scheme defines.
var ErrTooManyPrimerGaps = errors.New("mixer: more primer gaps requested than available")

// InsertRandomNs replaces min(n, #canonical bases) canonical positions, chosen
// without replacement, with N. The result depends only on rng's state.
func InsertRandomNs(rng *rand.Rand, sequence string, n int) (string, int) {
	candidates := make([]int, 0, len(sequence))
	for i := 0; i < len(sequence); i++ {
		if isCanonical(sequence[i]) {
			candidates = append(candidates, i)
		}
	}

	if n > len(candidates) {
		n = len(candidates)
	}
	if n <= 0 {
		return sequence, 0
	}

	// Partial Fisher-Yates: the first n entries become the sample.
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}

	newSeq := []byte(sequence)
	for _, pos := range candidates[:n] {
		newSeq[pos] = 'N'
	}

	return string(newSeq), n
}

// Range is a half-open interval [Start, End) of sequence positions.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// PrimerGaps is the immutable list of regions that drop out when one
// amplicon fails. Build it with DerivePrimerGaps.
type PrimerGaps struct {
	gaps []Range
}

// DerivePrimerGaps computes the primer-gap regions of an amplicon scheme from
// its insert records (in genome order). Gap i covers the part of insert i that
// no neighbouring amplicon covers: from the end of insert i-1 to the start of
// insert i+1. The first gap starts at the start of the first insert, and the
// last gap ends at the end of the last insert.
func DerivePrimerGaps(records []BEDRecord) (PrimerGaps, error) {
	switch len(records) {
	case 0:
		return PrimerGaps{}, fmt.Errorf("mixer: no amplicon records")
	case 1:
		return PrimerGaps{gaps: []Range{{Start: records[0].Start, End: records[0].End}}}, nil
	}

	last := len(records) - 1
	gaps := make([]Range, 0, len(records))
	for i := range records {
		var r Range
		switch i {
		case 0:
			r = Range{Start: records[0].Start, End: records[1].Start}
		case last:
			r = Range{Start: records[i-1].End, End: records[i].End}
		default:
			r = Range{Start: records[i-1].End, End: records[i+1].Start}
		}
		gaps = append(gaps, r)
	}

	return PrimerGaps{gaps: gaps}, nil
}

// Len is the number of gaps.
func (p PrimerGaps) Len() int {
	return len(p.gaps)
}

// Ranges returns a copy of the gap regions.
func (p PrimerGaps) Ranges() []Range {
	return append([]Range(nil), p.gaps...)
}

// Mask chooses k gaps without replacement and sets every position inside them
// to N. It returns the masked sequence and the number of positions masked.
func (p PrimerGaps) Mask(rng *rand.Rand, sequence string, k int) (string, int, error) {
	if k <= 0 {
		return sequence, 0, nil
	}
	if k > len(p.gaps) {
		return "", 0, fmt.Errorf("%w: requested %d, scheme has %d", ErrTooManyPrimerGaps, k, len(p.gaps))
	}

	newSeq := []byte(sequence)
	count := 0
	for _, gi := range rng.Perm(len(p.gaps))[:k] {
		gap := p.gaps[gi]
		for x := gap.Start; x < gap.End && x < len(newSeq); x++ {
			if x < 0 {
				continue
			}
			newSeq[x] = 'N'
			count++
		}
	}

	return string(newSeq), count, nil
}

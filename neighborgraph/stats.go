package neighborgraph

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// Percentile returns the p-th percentile (0 ≤ p ≤ 100) of sorted, linearly
// interpolating between the two closest ranks. sorted must be ascending and
// non-empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := math.Floor(rank)
	hi := math.Ceil(rank)
	if lo == hi {
		return sorted[int(lo)]
	}

	return sorted[int(lo)] + (sorted[int(hi)]-sorted[int(lo)])*(rank-lo)
}

// CountAtMost returns how many values are ≤ t.
func CountAtMost(values []float64, t float64) int {
	n := 0
	for _, v := range values {
		if v <= t {
			n++
		}
	}
	return n
}

// describe sets the mean, sample standard deviation, percentiles and
// threshold counts of distances under the given step prefix. At least two
// distances are required; with fewer nothing is set.
func describe(rec *FeatureRecord, step string, distances []int) error {
	if len(distances) < 2 {
		return nil
	}

	values := make([]float64, len(distances))
	for i, d := range distances {
		values[i] = float64(d)
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return err
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return err
	}
	rec.Set(meanColumn(step), mean)
	rec.Set(sdColumn(step), sd)

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	for _, p := range Percentiles {
		rec.Set(percentileColumn(step, p), Percentile(sorted, float64(p)))
	}

	for t := 0; t <= MaxSNPThreshold; t++ {
		rec.Set(thresholdColumn(step, t), float64(CountAtMost(values, float64(t))))
	}

	return nil
}

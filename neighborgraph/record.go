package neighborgraph

import (
	"fmt"
	"math"
)

// FeatureRecord holds the features of one sample at one cutoff. A feature that
// could not be computed is absent rather than zero.
type FeatureRecord struct {
	SampleName string
	Mixed      bool

	values []float64
	set    []bool
}

func NewFeatureRecord(sampleName string) *FeatureRecord {
	return &FeatureRecord{
		SampleName: sampleName,
		Mixed:      IsMixedName(sampleName),
		values:     make([]float64, len(columns)),
		set:        make([]bool, len(columns)),
	}
}

// Set records a feature value. It panics on a column outside the schema,
// which is a programming error.
func (r *FeatureRecord) Set(col string, v float64) {
	i, ok := columnIndex[col]
	if !ok {
		panic(fmt.Sprintf("neighborgraph: unknown feature column %q", col))
	}
	r.values[i] = v
	r.set[i] = true
}

// Get returns the value of col and whether it is present.
func (r *FeatureRecord) Get(col string) (float64, bool) {
	i, ok := columnIndex[col]
	if !ok || !r.set[i] {
		return math.NaN(), false
	}
	return r.values[i], true
}

func (r *FeatureRecord) Has(col string) bool {
	_, ok := r.Get(col)
	return ok
}

// Complete reports whether every schema column is present.
func (r *FeatureRecord) Complete() bool {
	for _, ok := range r.set {
		if !ok {
			return false
		}
	}
	return true
}

// NeighbourCount is the 1_count_neighbours feature, or -1 when absent.
func (r *FeatureRecord) NeighbourCount() int {
	v, ok := r.Get(ColCountNeighbours)
	if !ok {
		return -1
	}
	return int(v)
}

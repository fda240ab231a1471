// Package neighborgraph derives per-sample features from a sample's SNP
// neighbourhood: descriptive statistics of its neighbour distances, of the
// pairwise distances among those neighbours, and the betweenness of the
// sample in the weighted neighbour graph.
package neighborgraph

import (
	"fmt"
	"strings"
)

// SchemaVersion identifies the feature column layout returned by Columns.
// Bump it whenever a column is added, removed or reordered.
const SchemaVersion = 1

const (
	ColSampleName = "sample_name"
	ColMixed      = "mixed"

	ColCountNeighbours      = "1_count_neighbours"
	ColCountNeighbourMatrix = "2_count_neighbour_matrix"
	ColVertexBetweenness    = "2_sample_vertex_betweenness"
	ColEdgeBetweenness      = "2_sample_edge_betweenness"
)

// Percentiles reported for each distance distribution.
var Percentiles = []int{5, 25, 50, 75, 95}

// MaxSNPThreshold is the largest t for the "distances ≤ t" counts. Counts are
// reported for every t in [0, MaxSNPThreshold].
const MaxSNPThreshold = 15

const (
	stepNeighbours = "1"
	stepPairwise   = "2"
)

func meanColumn(step string) string { return step + "_mean" }
func sdColumn(step string) string   { return step + "_sd" }

func percentileColumn(step string, p int) string {
	return fmt.Sprintf("%s_percentile_%d", step, p)
}

func thresholdColumn(step string, t int) string {
	return fmt.Sprintf("%s_neighbours_snp_%d", step, t)
}

func statColumns(step string) []string {
	out := []string{meanColumn(step), sdColumn(step)}
	for _, p := range Percentiles {
		out = append(out, percentileColumn(step, p))
	}
	for t := 0; t <= MaxSNPThreshold; t++ {
		out = append(out, thresholdColumn(step, t))
	}
	return out
}

var columns = func() []string {
	out := []string{ColCountNeighbours}
	out = append(out, statColumns(stepNeighbours)...)
	out = append(out, ColCountNeighbourMatrix)
	out = append(out, statColumns(stepPairwise)...)
	return append(out, ColVertexBetweenness, ColEdgeBetweenness)
}()

var columnIndex = func() map[string]int {
	out := make(map[string]int, len(columns))
	for i, c := range columns {
		out[c] = i
	}
	return out
}()

// Columns returns the feature columns in schema order. sample_name and mixed
// are not features and are not included.
func Columns() []string {
	return append([]string(nil), columns...)
}

// IsFeature reports whether col is a column of the current schema.
func IsFeature(col string) bool {
	_, ok := columnIndex[col]
	return ok
}

// IsMixedName reports whether a sample name denotes an artificial mix. Mixed
// names join their parents with '+' and, unlike real sample names, carry no
// ':'-separated date.
func IsMixedName(name string) bool {
	return strings.Contains(name, "+") && !strings.Contains(name, ":")
}

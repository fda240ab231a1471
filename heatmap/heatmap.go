// Package heatmap assembles the per-cutoff score tables of a sweep into a
// feature × cutoff matrix of AUC values.
package heatmap

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/carbocation/snpmix/roc"
	"github.com/gocarina/gocsv"
)

// ErrSchemaMismatch is returned when score tables do not cover the same
// features.
var ErrSchemaMismatch = errors.New("heatmap: score tables have different features")

// Table is the score table of one cutoff.
type Table struct {
	// Label names the column of this table in the matrix.
	Label  string
	Cutoff int
	Scores []roc.Score
}

// Matrix holds AUC[feature][cutoff]. Undefined AUCs are NaN.
type Matrix struct {
	Features []string
	Cutoffs  []string
	AUC      [][]float64
}

// Assemble builds the matrix with features in the order of the first table
// and one column per table, in input order.
func Assemble(tables []Table) (*Matrix, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no tables", ErrSchemaMismatch)
	}

	m := &Matrix{}
	row := make(map[string]int)
	for _, s := range tables[0].Scores {
		if _, dup := row[s.Column]; dup {
			return nil, fmt.Errorf("%w: %s lists %s twice", ErrSchemaMismatch, tables[0].Label, s.Column)
		}
		row[s.Column] = len(m.Features)
		m.Features = append(m.Features, s.Column)
	}

	m.AUC = make([][]float64, len(m.Features))
	for i := range m.AUC {
		m.AUC[i] = make([]float64, len(tables))
	}

	for j, t := range tables {
		if len(t.Scores) != len(m.Features) {
			return nil, fmt.Errorf("%w: %s has %d features, %s has %d", ErrSchemaMismatch, t.Label, len(t.Scores), tables[0].Label, len(m.Features))
		}

		seen := make(map[string]bool, len(t.Scores))
		for _, s := range t.Scores {
			i, ok := row[s.Column]
			if !ok || seen[s.Column] {
				return nil, fmt.Errorf("%w: unexpected feature %s in %s", ErrSchemaMismatch, s.Column, t.Label)
			}
			seen[s.Column] = true
			m.AUC[i][j] = s.AUC
		}

		m.Cutoffs = append(m.Cutoffs, t.Label)
	}

	return m, nil
}

// WriteTSV writes one row per feature and one column per cutoff. Undefined
// values are empty cells.
func (m *Matrix) WriteTSV(w io.Writer) error {
	tw := gocsv.DefaultCSVWriter(w)
	tw.Comma = '\t'

	if err := tw.Write(append([]string{"feature"}, m.Cutoffs...)); err != nil {
		return err
	}

	for i, feature := range m.Features {
		row := make([]string, 0, len(m.Cutoffs)+1)
		row = append(row, feature)
		for _, v := range m.AUC[i] {
			cell := ""
			if !math.IsNaN(v) {
				cell = strconv.FormatFloat(v, 'f', 6, 64)
			}
			row = append(row, cell)
		}
		if err := tw.Write(row); err != nil {
			return err
		}
	}

	tw.Flush()
	return tw.Error()
}

// Package roc measures how well each feature column separates mixed from
// non-mixed samples.
package roc

import (
	"errors"
	"fmt"
	"math"

	"github.com/carbocation/snpmix/neighborgraph"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is recorded on a Score whose column has no values from
// one of the two classes.
var ErrInsufficientData = errors.New("roc: need values from both classes")

// Point is one operating point of a ROC curve: classifying values ≥ Threshold
// as mixed yields the given rates.
type Point struct {
	FPR       float64
	TPR       float64
	Threshold float64
}

// Score is the evaluation of one feature column. When Err is set AUC and
// PearsonR are NaN.
type Score struct {
	Column   string
	AUC      float64
	PearsonR float64

	Positives int
	Negatives int

	// Curve runs from (0, 0) to (1, 1) with non-decreasing FPR.
	Curve []Point

	Err error
}

// ScoreColumn computes the ROC curve, its AUC and the Pearson correlation of
// values with the labels. values and labels must have the same length.
func ScoreColumn(column string, values []float64, labels []bool) Score {
	s := Score{Column: column, AUC: math.NaN(), PearsonR: math.NaN()}

	if len(values) != len(labels) {
		s.Err = fmt.Errorf("roc: %s: %d values but %d labels", column, len(values), len(labels))
		return s
	}

	for _, l := range labels {
		if l {
			s.Positives++
		} else {
			s.Negatives++
		}
	}
	if s.Positives == 0 || s.Negatives == 0 {
		s.Err = fmt.Errorf("%w: %s has %d mixed and %d non-mixed values", ErrInsufficientData, column, s.Positives, s.Negatives)
		return s
	}

	y := append([]float64(nil), values...)
	classes := append([]bool(nil), labels...)
	stat.SortWeightedLabeled(y, classes, nil)

	tpr, fpr, thresh := stat.ROC(nil, y, classes, nil)
	s.AUC = integrate.Trapezoidal(fpr, tpr)

	s.Curve = make([]Point, len(tpr))
	for i := range tpr {
		s.Curve[i] = Point{FPR: fpr[i], TPR: tpr[i], Threshold: thresh[i]}
	}

	indicator := make([]float64, len(labels))
	for i, l := range labels {
		if l {
			indicator[i] = 1
		}
	}
	s.PearsonR = stat.Correlation(values, indicator, nil)

	return s
}

// ScoreTable scores every column of records in the given order. A row
// lacking a column's value is left out of that column only.
func ScoreTable(records []*neighborgraph.FeatureRecord, columns []string) []Score {
	out := make([]Score, 0, len(columns))
	for _, col := range columns {
		values := make([]float64, 0, len(records))
		labels := make([]bool, 0, len(records))
		for _, rec := range records {
			v, ok := rec.Get(col)
			if !ok {
				continue
			}
			values = append(values, v)
			labels = append(labels, rec.Mixed)
		}

		out = append(out, ScoreColumn(col, values, labels))
	}

	return out
}

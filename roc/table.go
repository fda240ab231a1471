package roc

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/gocarina/gocsv"
)

// FileName is the name of a score table inside a cutoff directory.
const FileName = "roc.csv"

type scoreRow struct {
	ColName  string `csv:"col_name"`
	AUC      string `csv:"auc"`
	PearsonR string `csv:"pearsonr"`
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	if s == "" || s == "nan" || s == "NaN" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// WriteScores writes the score table with columns col_name, auc and pearsonr.
// Undefined values are written as empty cells.
func WriteScores(w io.Writer, scores []Score) error {
	rows := make([]*scoreRow, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, &scoreRow{
			ColName:  s.Column,
			AUC:      formatFloat(s.AUC),
			PearsonR: formatFloat(s.PearsonR),
		})
	}

	return gocsv.Marshal(&rows, w)
}

// ReadScores reads a comma-separated score table. Only Column, AUC and
// PearsonR are restored. Columns other than col_name, auc and pearsonr, such
// as a leading index column, are ignored.
func ReadScores(r io.Reader) ([]Score, error) {
	return ReadScoresDelimited(r, ',')
}

// ReadScoresDelimited is ReadScores for a table separated by comma.
func ReadScoresDelimited(r io.Reader, comma rune) ([]Score, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma

	rows := []*scoreRow{}
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, err
	}

	out := make([]Score, 0, len(rows))
	for _, row := range rows {
		auc, err := parseFloat(row.AUC)
		if err != nil {
			return nil, err
		}
		r, err := parseFloat(row.PearsonR)
		if err != nil {
			return nil, err
		}
		out = append(out, Score{Column: row.ColName, AUC: auc, PearsonR: r})
	}

	return out, nil
}

package neighborgraph

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
)

// ErrUnknownColumn is returned when a feature table carries a column that the
// current schema does not define.
var ErrUnknownColumn = errors.New("neighborgraph: unknown feature column")

// WriteTable writes records as CSV: sample_name, mixed, then every schema
// column in order. Absent features are empty cells.
func WriteTable(w io.Writer, records []*FeatureRecord) error {
	cw := gocsv.DefaultCSVWriter(w)

	header := append([]string{ColSampleName, ColMixed}, columns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, rec := range records {
		row[0] = rec.SampleName
		row[1] = strconv.FormatBool(rec.Mixed)
		for i, col := range columns {
			row[i+2] = ""
			if v, ok := rec.Get(col); ok {
				row[i+2] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTable reads a feature table written by WriteTable. Feature columns may
// be a subset of the schema in any order, but must all be known.
func ReadTable(r io.Reader) ([]*FeatureRecord, error) {
	rows, err := gocsv.DefaultCSVReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("neighborgraph: empty feature table")
	}

	header := rows[0]
	nameCol, mixedCol := -1, -1
	for i, col := range header {
		switch {
		case col == ColSampleName:
			nameCol = i
		case col == ColMixed:
			mixedCol = i
		case col == "":
			// Unnamed index column.
		case !IsFeature(col):
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
		}
	}
	if nameCol < 0 || mixedCol < 0 {
		return nil, fmt.Errorf("neighborgraph: feature table needs %s and %s columns", ColSampleName, ColMixed)
	}

	out := make([]*FeatureRecord, 0, len(rows)-1)
	for line, row := range rows[1:] {
		rec := NewFeatureRecord(row[nameCol])

		mixed, err := strconv.ParseBool(row[mixedCol])
		if err != nil {
			return nil, fmt.Errorf("neighborgraph: row %d: mixed: %w", line+2, err)
		}
		rec.Mixed = mixed

		for i, col := range header {
			if !IsFeature(col) || row[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				return nil, fmt.Errorf("neighborgraph: row %d: %s: %w", line+2, col, err)
			}
			rec.Set(col, v)
		}

		out = append(out, rec)
	}

	return out, nil
}

package mixer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/carbocation/pfx"
	"github.com/carbocation/snpmix/mfsl"
	"github.com/gocarina/gocsv"
)

const (
	SamplesFileName  = "mixed.fasta"
	MetadataFileName = "mixed.csv"
)

// MetadataRow is one line of the mixing metadata table.
type MetadataRow struct {
	Header               string `csv:"header"`
	Name                 string `csv:"name"`
	EpochTime            int64  `csv:"epochtime"`
	CountNsMixture       int    `csv:"count_ns_mixture"`
	CountNsRandom        int    `csv:"count_ns_random"`
	CountNsPrimerDropout int    `csv:"count_ns_primer_dropout"`
	MixParent1           string `csv:"mix_parent1"`
	MixParent2           string `csv:"mix_parent2"`
}

func metadataRow(s mfsl.Sample) *MetadataRow {
	return &MetadataRow{
		Header:               s.Header,
		Name:                 s.Name,
		EpochTime:            s.EpochTime,
		CountNsMixture:       s.CountNsMixture,
		CountNsRandom:        s.CountNsRandom,
		CountNsPrimerDropout: s.CountNsPrimerDropout,
		MixParent1:           s.Parent1,
		MixParent2:           s.Parent2,
	}
}

// WriteMetadata writes the mixing metadata table for samples.
func WriteMetadata(w io.Writer, samples []mfsl.Sample) error {
	rows := make([]*MetadataRow, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, metadataRow(s))
	}

	return gocsv.Marshal(&rows, w)
}

// ReadMetadata reads a mixing metadata table.
func ReadMetadata(r io.Reader) ([]*MetadataRow, error) {
	rows := []*MetadataRow{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}

	return rows, nil
}

// WriteOutputs writes outDir/mixed.fasta and outDir/mixed.csv.
func WriteOutputs(outDir string, samples []mfsl.Sample) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return pfx.Err(err)
	}

	write := func(name string, fn func(io.Writer) error) error {
		f, err := os.Create(filepath.Join(outDir, name))
		if err != nil {
			return pfx.Err(err)
		}
		if err := fn(f); err != nil {
			f.Close()
			return pfx.Err(fmt.Errorf("%s: %w", name, err))
		}
		return f.Close()
	}

	if err := write(SamplesFileName, func(w io.Writer) error { return mfsl.Write(w, samples) }); err != nil {
		return err
	}

	return write(MetadataFileName, func(w io.Writer) error { return WriteMetadata(w, samples) })
}

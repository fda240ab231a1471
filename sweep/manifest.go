package sweep

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/carbocation/pfx"
	"github.com/carbocation/snpmix/compileinfo"
	"github.com/carbocation/snpmix/neighborgraph"
)

const ManifestFileName = "run.json"

// Manifest summarises one sweep. It is written after every cutoff has
// finished.
type Manifest struct {
	StartedAt     time.Time             `json:"started_at"`
	FinishedAt    time.Time             `json:"finished_at"`
	SchemaVersion int                   `json:"feature_schema_version"`
	Build         compileinfo.BuildInfo `json:"build"`
	Options       Options               `json:"options"`
	Cutoffs       []CutoffSummary       `json:"cutoffs"`
}

type CutoffSummary struct {
	Cutoff   int    `json:"cutoff"`
	Dir      string `json:"dir"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Samples  int    `json:"samples"`
	Analyzed int    `json:"analyzed"`
	Failed   int    `json:"failed"`
	Kept     int    `json:"kept"`
	Mixed    int    `json:"mixed"`
	Scored   int    `json:"scored_features"`
}

func newManifest(opts Options, started time.Time, results []CutoffResult) Manifest {
	m := Manifest{
		StartedAt:     started,
		FinishedAt:    time.Now(),
		SchemaVersion: neighborgraph.SchemaVersion,
		Build:         compileinfo.Get(),
		Options:       opts,
		Cutoffs:       make([]CutoffSummary, 0, len(results)),
	}

	for _, r := range results {
		s := CutoffSummary{
			Cutoff:   r.Cutoff,
			Dir:      r.Dir,
			Status:   "ok",
			Samples:  r.Samples,
			Analyzed: r.Analyzed,
			Failed:   r.Failed,
			Kept:     r.Kept,
			Mixed:    r.Mixed,
		}
		for _, score := range r.Scores {
			if score.Err == nil {
				s.Scored++
			}
		}
		if r.Err != nil {
			s.Status = "failed"
			s.Error = r.Err.Error()
		}
		m.Cutoffs = append(m.Cutoffs, s)
	}

	return m
}

func writeManifest(outDir string, m Manifest) error {
	return writeFileAtomic(filepath.Join(outDir, ManifestFileName), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	})
}

// ReadManifest loads the manifest of a previous sweep.
func ReadManifest(outDir string) (*Manifest, error) {
	f, err := os.Open(filepath.Join(outDir, ManifestFileName))
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	m := &Manifest{}
	if err := json.NewDecoder(f).Decode(m); err != nil {
		return nil, pfx.Err(err)
	}

	return m, nil
}

package heatmap

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/snpmix"
	"github.com/carbocation/snpmix/roc"
	"go.uber.org/zap"
)

type cutoffDir struct {
	path   string
	cutoff int
}

// findCutoffDirs returns the k<cutoff> subdirectories of root by increasing
// cutoff.
func findCutoffDirs(root string) ([]cutoffDir, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, pfx.Err(err)
	}

	out := make([]cutoffDir, 0)
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "k") {
			continue
		}
		k, err := strconv.Atoi(strings.TrimPrefix(e.Name(), "k"))
		if err != nil {
			continue
		}
		out = append(out, cutoffDir{path: filepath.Join(root, e.Name()), cutoff: k})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].cutoff < out[j].cutoff })

	return out, nil
}

// LoadDirs reads <dir>/k*/roc.csv for every dir. Within a dir tables are
// ordered by cutoff. Cutoff directories without a score table, as left by a
// failed cutoff, are skipped.
func LoadDirs(dirs []string, log *zap.Logger) ([]Table, error) {
	if log == nil {
		log = zap.NewNop()
	}

	out := make([]Table, 0)
	for _, root := range dirs {
		kdirs, err := findCutoffDirs(root)
		if err != nil {
			return nil, err
		}

		for _, kd := range kdirs {
			path := filepath.Join(kd.path, roc.FileName)
			data, err := os.ReadFile(path)
			if os.IsNotExist(err) {
				log.Warn("cutoff has no score table", zap.String("dir", kd.path))
				continue
			} else if err != nil {
				return nil, pfx.Err(err)
			}

			scores, err := roc.ReadScoresDelimited(bytes.NewReader(data), snpmix.DetermineDelimiter(data))
			if err != nil {
				return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
			}

			label := filepath.Base(kd.path)
			if len(dirs) > 1 {
				label = filepath.Join(filepath.Base(filepath.Clean(root)), label)
			}

			out = append(out, Table{Label: label, Cutoff: kd.cutoff, Scores: scores})
		}
	}

	return out, nil
}

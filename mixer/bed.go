package mixer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/snpmix"
)

// Map columns in the BED file to their positions
const (
	BEDChrom int = iota
	BEDStart
	BEDEnd
	BEDName
)

// BEDRecord is one amplicon insert from an amplicon-scheme BED file such as
// SARS-CoV-2.insert.bed. Coordinates are 0-based, end-exclusive.
type BEDRecord struct {
	Chrom string
	Start int
	End   int
	Name  string
}

// ParseBED reads tab-separated BED records. Blank lines, comments and
// track/browser lines are skipped.
func ParseBED(r io.Reader) ([]BEDRecord, error) {
	scanner := bufio.NewScanner(r)

	out := make([]BEDRecord, 0)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "track") || strings.HasPrefix(text, "browser") {
			continue
		}

		cols := strings.Split(text, "\t")
		if len(cols) < BEDEnd+1 {
			return nil, fmt.Errorf("bed line %d: expected at least 3 columns, got %d", line, len(cols))
		}

		start, err := strconv.Atoi(cols[BEDStart])
		if err != nil {
			return nil, fmt.Errorf("bed line %d: start: %w", line, err)
		}
		end, err := strconv.Atoi(cols[BEDEnd])
		if err != nil {
			return nil, fmt.Errorf("bed line %d: end: %w", line, err)
		}

		rec := BEDRecord{Chrom: cols[BEDChrom], Start: start, End: end}
		if len(cols) > BEDName {
			rec.Name = cols[BEDName]
		}
		out = append(out, rec)
	}

	return out, scanner.Err()
}

// ReadBED parses a BED file from a local path or a gs:// object.
func ReadBED(ctx context.Context, path string, client *storage.Client) ([]BEDRecord, error) {
	f, err := snpmix.OpenInput(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ParseBED(f)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return records, nil
}

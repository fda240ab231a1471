package catwalk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Neighbor is a sample within the requested cutoff of another sample.
type Neighbor struct {
	Name     string
	Distance int
}

// PairwiseDistance is the SNP distance between samples A and B.
type PairwiseDistance struct {
	A        string
	B        string
	Distance int
}

func parseNeighbor(row []json.RawMessage) (Neighbor, error) {
	if len(row) < 2 {
		return Neighbor{}, fmt.Errorf("expected [name, distance], got %d fields", len(row))
	}

	var n Neighbor
	if err := json.Unmarshal(row[0], &n.Name); err != nil {
		return Neighbor{}, fmt.Errorf("name: %w", err)
	}

	d, err := parseDistance(row[1])
	if err != nil {
		return Neighbor{}, err
	}
	n.Distance = d

	return n, nil
}

func parsePairwiseDistance(row []json.RawMessage) (PairwiseDistance, error) {
	if len(row) < 3 {
		return PairwiseDistance{}, fmt.Errorf("expected [a, b, distance], got %d fields", len(row))
	}

	var p PairwiseDistance
	if err := json.Unmarshal(row[0], &p.A); err != nil {
		return PairwiseDistance{}, fmt.Errorf("first sample: %w", err)
	}
	if err := json.Unmarshal(row[1], &p.B); err != nil {
		return PairwiseDistance{}, fmt.Errorf("second sample: %w", err)
	}

	d, err := parseDistance(row[2])
	if err != nil {
		return PairwiseDistance{}, err
	}
	p.Distance = d

	return p, nil
}

// parseDistance accepts a distance encoded either as a JSON number or as a
// string holding an integer.
func parseDistance(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)

	var text string
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("distance: %w", err)
		}
	} else {
		text = string(raw)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("distance %q is not a number", text)
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, fmt.Errorf("distance %q is not a non-negative integer", text)
	}

	return int(f), nil
}

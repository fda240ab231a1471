package snpmix

import (
	"bytes"

	"github.com/csimplestring/go-csv/detector"
)

var acceptedDelimiters = []byte{',', '\t', ';'}

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in data, assuming a CSV-like file. Only comma, tab and semicolon are
// accepted; numeric columns otherwise tempt the detector into choosing '.'.
// When the detector offers none of these, the most frequent of them in the
// first line wins, and comma is the default.
func DetermineDelimiter(data []byte) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(data), '"')

	for _, candidate := range delimiters {
		if len(candidate) == 0 {
			continue
		}
		if bytes.IndexByte(acceptedDelimiters, candidate[0]) >= 0 {
			return rune(candidate[0])
		}
	}

	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}

	best, bestCount := byte(','), 0
	for _, c := range acceptedDelimiters {
		if n := bytes.Count(header, []byte{c}); n > bestCount {
			best, bestCount = c, n
		}
	}

	return rune(best)
}

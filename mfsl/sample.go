// Package mfsl reads and writes mfsl sample files: alternating header and
// sequence lines where headers look like >name:dd-mm-yyyy[:freeform].
package mfsl

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// HeaderDateLayout is the date layout of the second header field.
const HeaderDateLayout = "02-01-2006"

type Sample struct {
	Header    string
	Sequence  string
	Name      string
	EpochTime int64

	// ParseErr is set when the header could not be parsed. Such samples are
	// retained but have an empty Name and a zero EpochTime.
	ParseErr error

	IsMixed bool
	Parent1 string
	Parent2 string

	CountNsMixture       int
	CountNsRandom        int
	CountNsPrimerDropout int
}

// ParseError describes a header that does not follow >name:date[:freeform].
type ParseError struct {
	Line   int
	Header string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("mfsl: line %d: malformed header %q: %v", e.Line, e.Header, e.Err)
	}
	return fmt.Sprintf("mfsl: malformed header %q: %v", e.Header, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewSample builds a sample from a raw header and sequence. The sequence is
// upper-cased. A malformed header is not fatal: it is recorded in ParseErr.
func NewSample(header, sequence string) Sample {
	s := Sample{
		Header:   strings.TrimSpace(header),
		Sequence: strings.ToUpper(strings.TrimSpace(sequence)),
	}

	name, epoch, err := ParseHeader(s.Header)
	if err != nil {
		s.ParseErr = &ParseError{Header: s.Header, Err: err}
		return s
	}
	s.Name = name
	s.EpochTime = epoch

	return s
}

// ParseHeader extracts the sample name and the collection date (as Unix
// seconds, UTC) from a header. dd-mm-yyyy is tried first; any other
// unambiguous date is accepted with day-first preference.
func ParseHeader(header string) (name string, epoch int64, err error) {
	if !strings.HasPrefix(header, ">") {
		return "", 0, fmt.Errorf("header does not start with '>'")
	}

	elems := strings.Split(header[1:], ":")
	if len(elems) < 2 {
		return "", 0, fmt.Errorf("expected name:date, got %d field(s)", len(elems))
	}
	if elems[0] == "" {
		return "", 0, fmt.Errorf("empty sample name")
	}

	d, err := time.ParseInLocation(HeaderDateLayout, elems[1], time.UTC)
	if err != nil {
		var fallbackErr error
		d, fallbackErr = dateparse.ParseIn(elems[1], time.UTC, dateparse.PreferMonthFirst(false))
		if fallbackErr != nil {
			return "", 0, fmt.Errorf("unparsable date %q: %w", elems[1], err)
		}
	}

	return elems[0], d.Unix(), nil
}

// Format renders the sample as a two-line mfsl record.
func (s Sample) Format() string {
	return s.Header + "\n" + s.Sequence + "\n"
}

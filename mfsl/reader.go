package mfsl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/snpmix"
)

// maxLineBytes bounds one sequence line. SARS-CoV-2 genomes are ~30kb, but
// other organisms can be much longer.
const maxLineBytes = 64 << 20

type Reader struct {
	scanner *bufio.Scanner
	line    int
	err     error
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	return &Reader{scanner: scanner}
}

func (r *Reader) Err() error {
	if r.err != nil {
		return r.err
	}

	return r.scanner.Err()
}

// nextLine returns the next non-blank line.
func (r *Reader) nextLine() (string, bool) {
	for r.scanner.Scan() {
		r.line++
		if text := strings.TrimSpace(r.scanner.Text()); text != "" {
			return text, true
		}
	}

	return "", false
}

// Read returns the next sample, or nil at the end of input or on error. Check
// Err to distinguish the two. A header whose date cannot be parsed still
// yields a sample, with ParseErr set.
func (r *Reader) Read() *Sample {
	if r.err != nil {
		return nil
	}

	header, ok := r.nextLine()
	if !ok {
		return nil
	}
	headerLine := r.line

	sequence, ok := r.nextLine()
	if !ok {
		if r.scanner.Err() == nil {
			r.err = fmt.Errorf("mfsl: line %d: header %q has no sequence", headerLine, header)
		}
		return nil
	}

	s := NewSample(header, sequence)
	if pe, isParseErr := s.ParseErr.(*ParseError); isParseErr {
		pe.Line = headerLine
	}

	return &s
}

// ReadAll reads every sample from r in file order.
func ReadAll(r io.Reader) ([]Sample, error) {
	rdr := NewReader(r)

	out := make([]Sample, 0)
	for s := rdr.Read(); s != nil; s = rdr.Read() {
		out = append(out, *s)
	}

	if err := rdr.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// Parse reads all samples from a local path or a gs:// object. client may be
// nil for local paths.
func Parse(ctx context.Context, path string, client *storage.Client) ([]Sample, error) {
	f, err := snpmix.OpenInput(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	samples, err := ReadAll(f)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return samples, nil
}

// Write emits the samples as mfsl records.
func Write(w io.Writer, samples []Sample) error {
	bw := bufio.NewWriter(w)
	for _, s := range samples {
		if _, err := bw.WriteString(s.Format()); err != nil {
			return err
		}
	}

	return bw.Flush()
}

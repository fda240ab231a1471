package sweep

import (
	"io"
	"os"
	"path/filepath"

	"github.com/carbocation/pfx"
)

// stage collects files written to temporary names so that a cutoff's outputs
// appear together on commit, or not at all.
type stage struct {
	files []stagedFile
}

type stagedFile struct {
	tmp   string
	final string
}

// write creates path's temporary sibling and fills it with fn.
func (s *stage) write(path string, fn func(io.Writer) error) error {
	dir, name := filepath.Split(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return pfx.Err(err)
	}

	f, err := os.CreateTemp(dir, "."+name+".tmp*")
	if err != nil {
		return pfx.Err(err)
	}
	s.files = append(s.files, stagedFile{tmp: f.Name(), final: path})

	if err := fn(f); err != nil {
		f.Close()
		return pfx.Err(err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return pfx.Err(err)
	}

	if err := f.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// commit renames every staged file into place.
func (s *stage) commit() error {
	for i, f := range s.files {
		if err := os.Rename(f.tmp, f.final); err != nil {
			s.files = s.files[i:]
			s.discard()
			return pfx.Err(err)
		}
	}
	s.files = nil

	return nil
}

// discard removes every staged file that has not been committed.
func (s *stage) discard() {
	for _, f := range s.files {
		os.Remove(f.tmp)
	}
	s.files = nil
}

// writeFileAtomic writes path through a temporary file and a rename.
func writeFileAtomic(path string, fn func(io.Writer) error) error {
	var s stage
	if err := s.write(path, fn); err != nil {
		s.discard()
		return err
	}

	return s.commit()
}

// Package filespec reads and writes journal files, with "-" standing for
// stdin or stdout depending on context.
package filespec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ledgerfold-dev/ledgerfold/internal/ledgerfmt"
	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

// FileSpec names a file to read from or write to; "-" is stdin/stdout.
type FileSpec string

// Stdio reads stdin or writes stdout.
const Stdio FileSpec = "-"

// IsStdio reports whether the spec names the standard streams.
func (f FileSpec) IsStdio() bool { return f == Stdio }

// String renders the spec for error messages and source tags.
func (f FileSpec) String() string {
	if f.IsStdio() {
		return "<stdio>"
	}
	return string(f)
}

// Open returns a reader for the spec. The caller closes it.
func (f FileSpec) Open() (io.ReadCloser, error) {
	if f.IsStdio() {
		return io.NopCloser(os.Stdin), nil
	}
	r, err := os.Open(string(f))
	if err != nil {
		return nil, fmt.Errorf("opening %s for reading: %w", f, err)
	}
	return r, nil
}

// Write runs write against the spec's output. File output is atomic: the
// content goes to a temporary file in the same directory which is renamed
// into place, so a crash mid-write leaves any prior file intact.
func (f FileSpec) Write(write func(io.Writer) error) error {
	if f.IsStdio() {
		return write(os.Stdout)
	}

	dir := filepath.Dir(string(f))
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(string(f))+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temporary file in %s: %w", dir, err)
	}
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), string(f)); err != nil {
		return fmt.Errorf("replacing %s: %w", f, err)
	}
	tmp = nil
	return nil
}

// ReadJournal parses the journal at the spec.
func ReadJournal(f FileSpec) (*model.Journal, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ledgerfmt.Parse(r, f.String())
}

// WriteJournal writes the journal to the spec atomically.
func WriteJournal(f FileSpec, journal *model.Journal) error {
	return f.Write(func(w io.Writer) error {
		return ledgerfmt.Format(w, journal)
	})
}

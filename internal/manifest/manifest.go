// Package manifest persists the authoritative list of record identifiers
// produced by one preprocessing run.
//
// Identifiers stream into a temporary file during the run; only Finalize
// promotes it (fsync + atomic rename) to the fixed manifest name. An
// aborted run therefore never leaves a manifest behind, which is how a
// consumer tells partial output from a successful run. Any manifest left
// by a previous run in the same directory is removed at start so runs
// never mix.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the fixed manifest name the warehouse loader looks for.
const FileName = "games"

// Writer accumulates identifiers for one run. Not safe for concurrent use;
// the pipeline feeds it from a single collector goroutine.
type Writer struct {
	dir   string
	tmp   string
	f     *os.File
	w     *bufio.Writer
	count int
	done  bool
}

// NewWriter starts a fresh manifest in dir, discarding any manifest or
// temporary file from an earlier run.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	final := filepath.Join(dir, FileName)
	if err := os.Remove(final); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	tmp := final + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, err
	}
	return &Writer{dir: dir, tmp: tmp, f: f, w: bufio.NewWriter(f)}, nil
}

// Add appends one identifier, one per line.
func (m *Writer) Add(id string) error {
	if m.done {
		return fmt.Errorf("manifest: writer already closed")
	}
	if _, err := m.w.WriteString(id + "\n"); err != nil {
		return err
	}
	m.count++
	return nil
}

// Count returns the number of identifiers added so far.
func (m *Writer) Count() int {
	return m.count
}

// Path returns where the finalized manifest lives.
func (m *Writer) Path() string {
	return filepath.Join(m.dir, FileName)
}

// Finalize flushes, syncs and atomically renames the manifest into place.
// Call exactly once, only after every record of the run is durable.
func (m *Writer) Finalize() error {
	if m.done {
		return fmt.Errorf("manifest: writer already closed")
	}
	m.done = true

	if err := m.w.Flush(); err != nil {
		m.f.Close()
		return err
	}
	if err := m.f.Sync(); err != nil {
		m.f.Close()
		return err
	}
	if err := m.f.Close(); err != nil {
		return err
	}
	return os.Rename(m.tmp, m.Path())
}

// Discard drops the temporary file without publishing a manifest. Safe to
// call after Finalize; it then does nothing.
func (m *Writer) Discard() {
	if m.done {
		return
	}
	m.done = true
	m.f.Close()
	os.Remove(m.tmp)
}

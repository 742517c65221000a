// Package avrostore writes one self-describing Avro Object Container File
// per game, named by the game's identifier. Field names travel inside each
// file, so a single record is readable without any external schema.
package avrostore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	goavro "github.com/linkedin/goavro/v2"

	"github.com/freeeve/pgnavro/internal/game"
	"github.com/freeeve/pgnavro/internal/schema"
)

// ErrDuplicateID means a record file with the same identifier already
// exists. Identifiers are unique by construction, so this signals a
// generator defect rather than a condition to paper over.
var ErrDuplicateID = errors.New("avrostore: record file already exists")

// Store writes records for one run under a fixed directory and schema.
// Safe for concurrent Write calls; each call touches only its own file.
type Store struct {
	dir        string
	schemaJSON string
}

// New creates a Store writing to dir, creating it if needed. The schema is
// validated through goavro up front so a bad schema fails before the first
// record, not during it.
func New(dir string, s *schema.Schema) (*Store, error) {
	schemaJSON, err := s.AvroJSON()
	if err != nil {
		return nil, err
	}
	if _, err := goavro.NewCodec(schemaJSON); err != nil {
		return nil, fmt.Errorf("avrostore: bad schema: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, schemaJSON: schemaJSON}, nil
}

// Path returns the record file path for an identifier.
func (st *Store) Path(id string) string {
	return filepath.Join(st.dir, id+".avro")
}

// Write serializes one game to <dir>/<game_id>.avro. The file is created
// exclusively; a pre-existing file surfaces ErrDuplicateID. On any write
// failure the partial file is removed so the directory never holds a
// half-written record.
func (st *Store) Write(g *game.Game) (string, error) {
	path := st.Path(g.ID)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrDuplicateID, path)
		}
		return "", err
	}

	w, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:      f,
		Schema: st.schemaJSON,
	})
	if err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("avrostore: open writer for %s: %w", g.ID, err)
	}
	if err := w.Append([]map[string]interface{}{g.Record()}); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("avrostore: write record %s: %w", g.ID, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// ReadFile reads a single-record Avro container back into a field map.
// Used by round-trip tests and spot checks; the warehouse loader reads
// these files the same self-describing way.
func ReadFile(path string) (map[string]interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := goavro.NewOCFReader(f)
	if err != nil {
		return nil, fmt.Errorf("avrostore: open %s: %w", path, err)
	}
	if !r.Scan() {
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("avrostore: read %s: %w", path, err)
		}
		return nil, fmt.Errorf("avrostore: %s contains no records", path)
	}
	datum, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("avrostore: read %s: %w", path, err)
	}
	rec, ok := datum.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("avrostore: %s: unexpected datum type %T", path, datum)
	}
	return rec, nil
}

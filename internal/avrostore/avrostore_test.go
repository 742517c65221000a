package avrostore_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/freeeve/pgnavro/internal/avrostore"
	"github.com/freeeve/pgnavro/internal/game"
	"github.com/freeeve/pgnavro/internal/schema"
)

func newStore(t *testing.T, g *game.Game) (*avrostore.Store, string) {
	t.Helper()
	s, err := schema.Infer(g)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	dir := t.TempDir()
	st, err := avrostore.New(dir, s)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return st, dir
}

func TestWriteReadRoundTrip(t *testing.T) {
	var ids game.SeqSource
	g, err := game.Parse("[Event \"Test Game\"]\n[Site \"lichess\"]\n\n1. e4 e5 1-0", &ids)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	st, dir := newStore(t, g)

	path, err := st.Write(g)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if want := filepath.Join(dir, g.ID+".avro"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	rec, err := avrostore.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for k, v := range g.Record() {
		if rec[k] != v {
			t.Errorf("rec[%s] = %v, want %v", k, rec[k], v)
		}
	}
	if len(rec) != len(g.Record()) {
		t.Errorf("read back %d fields, want %d", len(rec), len(g.Record()))
	}
}

func TestWriteDuplicateID(t *testing.T) {
	var ids game.SeqSource
	g, err := game.Parse("[Event \"E\"]\n\n1. e4 1-0", &ids)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	st, _ := newStore(t, g)

	if _, err := st.Write(g); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if _, err := st.Write(g); !errors.Is(err, avrostore.ErrDuplicateID) {
		t.Fatalf("second Write = %v, want ErrDuplicateID", err)
	}
}

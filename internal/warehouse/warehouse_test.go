package warehouse_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freeeve/pgnavro/internal/logx"
	"github.com/freeeve/pgnavro/internal/warehouse"
)

// fakeExec records executed SQL and optionally fails.
type fakeExec struct {
	queries []string
	failOn  string
}

func (f *fakeExec) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	f.queries = append(f.queries, query)
	if f.failOn != "" && strings.Contains(query, f.failOn) {
		return nil, errors.New("boom")
	}
	return nil, nil
}

func newLoader(db warehouse.Execer, autoIngest bool) *warehouse.Loader {
	return warehouse.New(db, warehouse.Config{AutoIngest: autoIngest, Logger: logx.Nop()})
}

func TestCreateStage(t *testing.T) {
	db := &fakeExec{}
	if err := newLoader(db, false).CreateStage(context.Background()); err != nil {
		t.Fatalf("CreateStage: %v", err)
	}
	want := "CREATE OR REPLACE STAGE RAW_AVRO_STAGE FILE_FORMAT = (TYPE = 'AVRO')"
	if len(db.queries) != 1 || db.queries[0] != want {
		t.Errorf("queries = %v, want [%s]", db.queries, want)
	}
}

func TestCreatePipe(t *testing.T) {
	db := &fakeExec{}
	if err := newLoader(db, true).CreatePipe(context.Background(), "GAMES"); err != nil {
		t.Fatalf("CreatePipe: %v", err)
	}
	want := "CREATE OR REPLACE PIPE AVRO_PIPE AUTO_INGEST = TRUE AS COPY INTO GAMES FROM @RAW_AVRO_STAGE FILE_FORMAT = (TYPE = 'AVRO')"
	if len(db.queries) != 1 || db.queries[0] != want {
		t.Errorf("queries = %v, want [%s]", db.queries, want)
	}
}

func TestCreatePipeNoAutoIngest(t *testing.T) {
	db := &fakeExec{}
	if err := newLoader(db, false).CreatePipe(context.Background(), "GAMES"); err != nil {
		t.Fatalf("CreatePipe: %v", err)
	}
	if strings.Contains(db.queries[0], "AUTO_INGEST") {
		t.Errorf("query %q should not configure auto-ingest", db.queries[0])
	}
}

func TestUploadDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"aaa.avro", "bbb.avro", "ignored.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	db := &fakeExec{}
	uploaded, err := newLoader(db, false).UploadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("UploadDir: %v", err)
	}
	if len(uploaded) != 2 {
		t.Fatalf("uploaded %d files, want 2", len(uploaded))
	}
	for _, q := range db.queries {
		if !strings.HasPrefix(q, "PUT file://") || !strings.HasSuffix(q, "@RAW_AVRO_STAGE") {
			t.Errorf("unexpected PUT statement: %q", q)
		}
		if strings.Contains(q, "ignored.txt") {
			t.Errorf("non-avro file uploaded: %q", q)
		}
	}
}

func TestUploadDirFailFast(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"aaa.avro", "bbb.avro"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	db := &fakeExec{failOn: "aaa.avro"}
	uploaded, err := newLoader(db, false).UploadDir(context.Background(), dir)
	if err == nil {
		t.Fatal("UploadDir succeeded, want error")
	}
	if len(uploaded) != 0 {
		t.Errorf("uploaded = %v, want none before the failure", uploaded)
	}
}

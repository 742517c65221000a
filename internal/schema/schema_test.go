package schema_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/freeeve/pgnavro/internal/game"
	"github.com/freeeve/pgnavro/internal/schema"
)

func mustParse(t *testing.T, seg string) *game.Game {
	t.Helper()
	g, err := game.Parse(seg, game.UUIDSource{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return g
}

func TestInfer(t *testing.T) {
	g := mustParse(t, "[Event \"E\"]\n[White \"w\"]\n\n1. e4 1-0")
	s, err := schema.Infer(g)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}

	want := []string{"Event", "White", "moves", "game_id"}
	fields := s.Fields()
	if len(fields) != len(want) {
		t.Fatalf("got %d fields, want %d", len(fields), len(want))
	}
	for i, f := range fields {
		if f.Name != want[i] {
			t.Errorf("field %d = %q, want %q", i, f.Name, want[i])
		}
		if f.Type != "string" {
			t.Errorf("field %s type = %q, want string", f.Name, f.Type)
		}
	}
}

func TestInferEmpty(t *testing.T) {
	if _, err := schema.Infer(nil); !errors.Is(err, schema.ErrEmptySchema) {
		t.Fatalf("Infer(nil) = %v, want ErrEmptySchema", err)
	}
}

func TestValidate(t *testing.T) {
	first := mustParse(t, "[Event \"E\"]\n[White \"w\"]\n\n1. e4 1-0")
	s, err := schema.Infer(first)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}

	// Identical shape passes.
	same := mustParse(t, "[Event \"F\"]\n[White \"x\"]\n\n1. d4 0-1")
	if err := s.Validate(same); err != nil {
		t.Errorf("Validate(same shape): %v", err)
	}

	// Missing tag fails.
	fewer := mustParse(t, "[Event \"F\"]\n\n1. d4 0-1")
	if err := s.Validate(fewer); !errors.Is(err, schema.ErrSchemaViolation) {
		t.Errorf("Validate(fewer) = %v, want ErrSchemaViolation", err)
	}

	// Extra tag fails.
	more := mustParse(t, "[Event \"F\"]\n[White \"x\"]\n[Black \"y\"]\n\n1. d4 0-1")
	if err := s.Validate(more); !errors.Is(err, schema.ErrSchemaViolation) {
		t.Errorf("Validate(more) = %v, want ErrSchemaViolation", err)
	}

	// Same names in a different order fails.
	reordered := mustParse(t, "[White \"x\"]\n[Event \"F\"]\n\n1. d4 0-1")
	if err := s.Validate(reordered); !errors.Is(err, schema.ErrSchemaViolation) {
		t.Errorf("Validate(reordered) = %v, want ErrSchemaViolation", err)
	}
}

func TestAvroJSON(t *testing.T) {
	g := mustParse(t, "[Event \"E\"]\n\n1. e4 1-0")
	s, err := schema.Infer(g)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}

	doc, err := s.AvroJSON()
	if err != nil {
		t.Fatalf("AvroJSON: %v", err)
	}
	for _, frag := range []string{
		`"namespace":"com.example.pgn"`,
		`"type":"record"`,
		`"name":"Game"`,
		`{"name":"Event","type":"string"}`,
		`{"name":"moves","type":"string"}`,
		`{"name":"game_id","type":"string"}`,
	} {
		if !strings.Contains(doc, frag) {
			t.Errorf("schema JSON missing %s:\n%s", frag, doc)
		}
	}
	// Field order must match encounter order.
	if strings.Index(doc, `"Event"`) > strings.Index(doc, `"moves"`) {
		t.Error("Event should precede moves in schema JSON")
	}
}

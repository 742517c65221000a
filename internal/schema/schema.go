// Package schema derives the shared record schema for a preprocessing run
// and enforces it on every subsequent record.
//
// The schema is inferred exactly once, from the first parsed game of the
// run: its tag names in encounter order, then "moves", then "game_id",
// every field typed as string. A later record with a different ordered
// field set is a hard error, never a silent reconciliation.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/freeeve/pgnavro/internal/game"
)

var (
	// ErrEmptySchema means the run produced no games to infer from.
	ErrEmptySchema = errors.New("schema: no games available to infer schema")

	// ErrSchemaViolation means a record's field set differs from the
	// run's inferred schema.
	ErrSchemaViolation = errors.New("schema: record does not match inferred schema")
)

// Field is one (name, type) pair. Type is always "string" here.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema is the ordered field set shared by every record of one run.
// Immutable once inferred.
type Schema struct {
	fields []Field
}

// Infer derives the run schema from the first parsed game.
func Infer(first *game.Game) (*Schema, error) {
	if first == nil {
		return nil, ErrEmptySchema
	}
	keys := first.Keys()
	fields := make([]Field, len(keys))
	for i, k := range keys {
		fields[i] = Field{Name: k, Type: "string"}
	}
	return &Schema{fields: fields}, nil
}

// Fields returns the ordered field list.
func (s *Schema) Fields() []Field {
	return s.fields
}

// Validate checks that g exposes exactly the schema's field set, in the
// same order.
func (s *Schema) Validate(g *game.Game) error {
	keys := g.Keys()
	if len(keys) != len(s.fields) {
		return fmt.Errorf("%w: got %d fields, want %d", ErrSchemaViolation, len(keys), len(s.fields))
	}
	for i, k := range keys {
		if k != s.fields[i].Name {
			return fmt.Errorf("%w: field %d is %q, want %q", ErrSchemaViolation, i, k, s.fields[i].Name)
		}
	}
	return nil
}

// avroRecord is the JSON shape of an Avro record schema.
type avroRecord struct {
	Namespace string  `json:"namespace"`
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Fields    []Field `json:"fields"`
}

// AvroJSON renders the schema as an Avro record schema document.
func (s *Schema) AvroJSON() (string, error) {
	b, err := json.Marshal(avroRecord{
		Namespace: "com.example.pgn",
		Type:      "record",
		Name:      "Game",
		Fields:    s.fields,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

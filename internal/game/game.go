// Package game parses one raw PGN segment into a structured record.
package game

import (
	"errors"
	"regexp"
	"strings"
)

// Reserved field names appended after the header tags of every record.
const (
	MovesField = "moves"
	IDField    = "game_id"
)

// ErrMalformedGame means a segment contained no extractable header tags.
var ErrMalformedGame = errors.New("game: no header tags in segment")

// headerPattern matches one tag pair line: [Name "Value"]
var headerPattern = regexp.MustCompile(`^\[(\w+)\s+"(.*)"\]`)

// Tag is one header name/value pair.
type Tag struct {
	Name  string
	Value string
}

// Game is one parsed record: header tags in encounter order, the raw move
// text, and a run-unique identifier.
type Game struct {
	tags  []Tag
	index map[string]int
	Moves string
	ID    string
}

// Tag returns the value of a header tag by name.
func (g *Game) Tag(name string) (string, bool) {
	i, ok := g.index[name]
	if !ok {
		return "", false
	}
	return g.tags[i].Value, true
}

// Tags returns the header tags in encounter order.
func (g *Game) Tags() []Tag {
	return g.tags
}

// Keys returns the record's full ordered field set: tag names in encounter
// order, then "moves", then "game_id". This ordering is what schema
// inference and validation operate on.
func (g *Game) Keys() []string {
	keys := make([]string, 0, len(g.tags)+2)
	for _, t := range g.tags {
		keys = append(keys, t.Name)
	}
	return append(keys, MovesField, IDField)
}

// Record returns the game as an Avro-native map keyed by field name.
func (g *Game) Record() map[string]interface{} {
	rec := make(map[string]interface{}, len(g.tags)+2)
	for _, t := range g.tags {
		rec[t.Name] = t.Value
	}
	rec[MovesField] = g.Moves
	rec[IDField] = g.ID
	return rec
}

// Parse extracts one Game from a raw segment. Every `[Name "Value"]` line
// contributes a tag, later duplicates overwriting earlier values in place
// (last wins, first position kept). Move text is everything after the
// first blank line; segments without one fall back to joining the
// non-header lines in order. The identifier comes from ids, never from
// the tag set.
func Parse(segment string, ids IDSource) (*Game, error) {
	g := &Game{index: make(map[string]int)}

	for _, line := range strings.Split(segment, "\n") {
		m := headerPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		name, value := m[1], m[2]
		if i, ok := g.index[name]; ok {
			g.tags[i].Value = value
			continue
		}
		g.index[name] = len(g.tags)
		g.tags = append(g.tags, Tag{Name: name, Value: value})
	}

	if len(g.tags) == 0 {
		return nil, ErrMalformedGame
	}

	if _, after, found := strings.Cut(segment, "\n\n"); found {
		g.Moves = strings.TrimSpace(after)
	} else {
		var lines []string
		for _, line := range strings.Split(segment, "\n") {
			if !strings.HasPrefix(line, "[") {
				lines = append(lines, line)
			}
		}
		g.Moves = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	g.ID = ids.NewID()
	return g, nil
}

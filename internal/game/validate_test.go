package game_test

import (
	"testing"

	"github.com/freeeve/pgnavro/internal/game"
)

func parseMoves(t *testing.T, moves string) *game.Game {
	t.Helper()
	g, err := game.Parse("[Event \"E\"]\n\n"+moves, game.UUIDSource{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return g
}

func TestValidateMovesLegal(t *testing.T) {
	for _, moves := range []string{
		"1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 1-0",
		"1. d4 d5 1/2-1/2",
		"1. e4 { king's pawn } e5 2. Nf3 $1 Nc6 0-1",
		"1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0",
	} {
		g := parseMoves(t, moves)
		if err := g.ValidateMoves(); err != nil {
			t.Errorf("ValidateMoves(%q): %v", moves, err)
		}
	}
}

func TestValidateMovesIllegal(t *testing.T) {
	for _, moves := range []string{
		"1. e4 e4 1-0",      // black replays white's move
		"1. Nf3 Nf3 0-1",    // same square, wrong side
		"1. e4 Ke7 1/2-1/2", // king has nowhere to go yet
	} {
		g := parseMoves(t, moves)
		if err := g.ValidateMoves(); err == nil {
			t.Errorf("ValidateMoves(%q) = nil, want error", moves)
		}
	}
}

package game

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/freeeve/pgn/v3"
)

var (
	// commentPattern matches brace comments like {[%eval 0.17]}
	commentPattern = regexp.MustCompile(`\{[^}]*\}`)
	// moveNumberPattern matches move numbers like "1." or "12..."
	moveNumberPattern = regexp.MustCompile(`\d+\.+\s*`)
)

// ValidateMoves replays the record's move text from the starting position
// and reports the first illegal move. Comments, NAGs, move numbers and the
// trailing result token are ignored.
func (g *Game) ValidateMoves() error {
	cleaned := commentPattern.ReplaceAllString(g.Moves, " ")
	cleaned = moveNumberPattern.ReplaceAllString(cleaned, "")

	pos := pgn.NewStartingPosition()
	for _, san := range strings.Fields(cleaned) {
		switch san {
		case "1-0", "0-1", "1/2-1/2", "*":
			continue
		}
		if san[0] == '$' {
			continue
		}
		san = strings.TrimSuffix(san, "+")
		san = strings.TrimSuffix(san, "#")

		mv, err := pgn.ParseSAN(pos, san)
		if err != nil {
			return fmt.Errorf("game: parse move %q: %w", san, err)
		}
		if err := pgn.ApplyMove(pos, mv); err != nil {
			return fmt.Errorf("game: apply move %q: %w", san, err)
		}
	}
	return nil
}

// Package split scans decompressed PGN text and yields one raw segment per
// game at exact boundaries.
//
// A game opens at the first occurrence of the "[Event" header marker and
// closes at the nearest following terminal result token ("1-0", "0-1" or
// "1/2-1/2") appearing as a whitespace-delimited token on a line. The scan
// is deliberately a line-by-line state machine rather than one greedy
// pattern across the whole blob: boundary policy is explicit, matching
// spans newlines, and a result-like substring glued inside a larger token
// does not close a game.
package split

import (
	"bufio"
	"io"
	"strings"
)

// StartToken opens a game's header block.
const StartToken = "[Event"

// Terminal result tokens, one of which closes every well-formed game.
var terminals = []string{"1-0", "0-1", "1/2-1/2"}

// maxLine bounds a single line of PGN text. Lichess movetext lines with
// embedded eval comments run long, but nowhere near this.
const maxLine = 4 * 1024 * 1024

// Scanner yields raw game segments from decompressed PGN text, in source
// order. Usage mirrors bufio.Scanner: Scan, then Segment, then Err.
type Scanner struct {
	lines   *bufio.Scanner
	pending string // unconsumed tail of the line that closed the last game
	seg     string
	err     error
	done    bool
}

// NewScanner returns a Scanner reading decompressed text from r.
func NewScanner(r io.Reader) *Scanner {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 64*1024), maxLine)
	return &Scanner{lines: lines}
}

// Scan advances to the next complete game. It returns false at end of
// input or on error; a trailing partial game (no terminal token before
// EOF) is dropped, never emitted.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}

	var b strings.Builder
	inGame := false

	line, ok := s.nextLine()
	for ok {
		if !inGame {
			if idx := strings.Index(line, StartToken); idx >= 0 {
				inGame = true
				line = line[idx:]
				continue
			}
			line, ok = s.nextLine()
			continue
		}

		if end := terminalEnd(line); end >= 0 {
			b.WriteString(line[:end])
			s.pending = line[end:]
			s.seg = b.String()
			return true
		}

		b.WriteString(line)
		b.WriteByte('\n')
		line, ok = s.nextLine()
	}

	// EOF (or read error): anything accumulated is a partial game.
	s.done = true
	s.err = s.lines.Err()
	return false
}

// Segment returns the most recent game text. Valid until the next Scan.
func (s *Scanner) Segment() string {
	return s.seg
}

// Err returns the first error encountered while reading, if any.
func (s *Scanner) Err() error {
	return s.err
}

// nextLine returns the pending remainder of a closed game's final line, if
// any, before reading further input.
func (s *Scanner) nextLine() (string, bool) {
	if s.pending != "" {
		line := s.pending
		s.pending = ""
		return line, true
	}
	if s.lines.Scan() {
		return s.lines.Text(), true
	}
	return "", false
}

// terminalEnd returns the byte offset just past the first terminal result
// token in line, or -1. A token counts only when delimited by whitespace
// or the line boundary on both sides.
func terminalEnd(line string) int {
	for i := 0; i < len(line); {
		// skip leading whitespace
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		start := i
		for i < len(line) && line[i] != ' ' && line[i] != '\t' {
			i++
		}
		if start == i {
			break
		}
		tok := line[start:i]
		for _, t := range terminals {
			if tok == t {
				return i
			}
		}
	}
	return -1
}

package game

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource produces run-unique record identifiers. It is injectable so
// tests can use a deterministic sequence and alternative schemes
// (content-derived ids) can be swapped in without touching the parser.
type IDSource interface {
	NewID() string
}

// UUIDSource generates random RFC 4122 version 4 identifiers in canonical
// 36-character form. Safe for concurrent use.
type UUIDSource struct{}

// NewID returns a fresh random identifier.
func (UUIDSource) NewID() string {
	return uuid.NewString()
}

// SeqSource generates deterministic identifiers of canonical UUID shape
// from an incrementing counter. Intended for tests.
type SeqSource struct {
	n atomic.Uint64
}

// NewID returns the next identifier in the sequence.
func (s *SeqSource) NewID() string {
	n := s.n.Add(1)
	return fmt.Sprintf("00000000-0000-4000-8000-%012x", n)
}

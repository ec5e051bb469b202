package workflow

import "sync"

// opKind groups requests whose responses supersede each other
type opKind int

const (
	// opFiles is bumped by every upload dispatch; a session answer taken
	// before it no longer describes the server's files
	opFiles opKind = iota
	opTargets
	opIndividual
	opSession
)

// sequencer hands out increasing numbers per operation kind. A response is
// applied only if its number is still the latest dispatched for its kind.
type sequencer struct {
	mu     sync.Mutex
	latest map[opKind]uint64
}

func newSequencer() *sequencer {
	return &sequencer{latest: make(map[opKind]uint64)}
}

func (s *sequencer) next(kind opKind) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[kind]++
	return s.latest[kind]
}

func (s *sequencer) current(kind opKind, n uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[kind] == n
}

// peek returns the last number handed out for kind without taking a new one
func (s *sequencer) peek(kind opKind) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[kind]
}

package session

import "sync"

// Sequencer tags keystroke-driven product searches so late-arriving
// results of superseded requests can be discarded instead of
// overwriting newer ones. Begin hands out a tag when a search starts;
// Accept reports whether that tag is still the latest when its results
// come back.
type Sequencer struct {
	mu     sync.Mutex
	next   uint64
	latest uint64
}

// Begin registers a new in-flight search and returns its tag.
func (s *Sequencer) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.latest = s.next
	return s.next
}

// Accept reports whether the tagged search is still current. A stale
// tag means a newer search superseded it and its results must be
// dropped.
func (s *Sequencer) Accept(tag uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tag == s.latest
}

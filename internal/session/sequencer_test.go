package session

import (
	"sync"
	"testing"
)

func TestSequencerDiscardsSupersededSearches(t *testing.T) {
	var seq Sequencer

	first := seq.Begin()
	second := seq.Begin()

	if seq.Accept(first) {
		t.Error("superseded search was accepted")
	}
	if !seq.Accept(second) {
		t.Error("latest search was rejected")
	}

	// The latest tag stays acceptable until another search begins.
	if !seq.Accept(second) {
		t.Error("latest search rejected on second check")
	}

	third := seq.Begin()
	if seq.Accept(second) {
		t.Error("old latest still accepted after a newer search began")
	}
	if !seq.Accept(third) {
		t.Error("newest search rejected")
	}
}

func TestSequencerExactlyOneWinnerUnderConcurrency(t *testing.T) {
	var seq Sequencer
	const searches = 100

	tags := make([]uint64, searches)
	var wg sync.WaitGroup
	wg.Add(searches)
	for i := 0; i < searches; i++ {
		go func(i int) {
			defer wg.Done()
			tags[i] = seq.Begin()
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, tag := range tags {
		if seq.Accept(tag) {
			accepted++
		}
	}
	if accepted != 1 {
		t.Errorf("%d searches accepted, want exactly 1", accepted)
	}
}

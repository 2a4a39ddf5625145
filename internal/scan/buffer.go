package scan

import (
	"strings"
	"sync"
	"time"
)

// BufferState is the keystroke buffer's state machine position.
type BufferState int

const (
	// StateIdle means no partial scan is pending.
	StateIdle BufferState = iota
	// StateBuffering means keystrokes are accumulating toward a flush.
	StateBuffering
)

// Buffer accumulates wedge-scanner keystrokes into one scan string.
// The first keystroke moves idle→buffering and arms an idle timer;
// every further keystroke re-arms it. Enter flushes the buffer to the
// callback; the timer firing discards it, so a stale partial scan can
// never leak into a later manual search.
type Buffer struct {
	mu    sync.Mutex
	state BufferState
	buf   strings.Builder
	idle  time.Duration
	timer *time.Timer
	flush func(string)
}

// NewBuffer creates a keystroke buffer. flush is called with the
// completed scan when Enter arrives; it runs on the caller's goroutine.
func NewBuffer(idle time.Duration, flush func(string)) *Buffer {
	return &Buffer{idle: idle, flush: flush}
}

// State returns the current state machine position.
func (b *Buffer) State() BufferState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Keystroke appends one character and re-arms the idle timer.
func (b *Buffer) Keystroke(r rune) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf.WriteRune(r)
	b.state = StateBuffering

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.idle, b.discard)
}

// Enter flushes the accumulated scan and returns to idle. An Enter
// with nothing buffered is a no-op.
func (b *Buffer) Enter() {
	b.mu.Lock()
	raw := b.buf.String()
	b.reset()
	b.mu.Unlock()

	if raw != "" && b.flush != nil {
		b.flush(raw)
	}
}

// Stop cancels any pending idle timer and drops the buffer.
func (b *Buffer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

// discard is the idle-timeout transition: buffering→idle, buffer lost.
func (b *Buffer) discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *Buffer) reset() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.buf.Reset()
	b.state = StateIdle
}

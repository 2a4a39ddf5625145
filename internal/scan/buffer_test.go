package scan

import (
	"testing"
	"time"
)

func typeString(b *Buffer, s string) {
	for _, r := range s {
		b.Keystroke(r)
	}
}

func TestBufferFlushOnEnter(t *testing.T) {
	flushed := make(chan string, 1)
	b := NewBuffer(time.Second, func(raw string) { flushed <- raw })
	defer b.Stop()

	if b.State() != StateIdle {
		t.Fatalf("initial state = %v, want idle", b.State())
	}

	typeString(b, "010001234567890510ABC123")
	if b.State() != StateBuffering {
		t.Fatalf("state after keystrokes = %v, want buffering", b.State())
	}

	b.Enter()

	select {
	case raw := <-flushed:
		if raw != "010001234567890510ABC123" {
			t.Errorf("flushed %q, want full scan", raw)
		}
	default:
		t.Fatal("Enter did not flush the buffer")
	}

	if b.State() != StateIdle {
		t.Errorf("state after flush = %v, want idle", b.State())
	}
}

func TestBufferIdleTimeoutDiscards(t *testing.T) {
	flushed := make(chan string, 1)
	b := NewBuffer(20*time.Millisecond, func(raw string) { flushed <- raw })
	defer b.Stop()

	typeString(b, "0617")

	deadline := time.After(time.Second)
	for b.State() != StateIdle {
		select {
		case <-deadline:
			t.Fatal("buffer never returned to idle after the idle window")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// A flush after the discard must start from an empty buffer.
	b.Enter()
	select {
	case raw := <-flushed:
		t.Fatalf("discarded buffer leaked into a flush: %q", raw)
	default:
	}
}

func TestBufferKeystrokeReArmsTimer(t *testing.T) {
	flushed := make(chan string, 1)
	b := NewBuffer(50*time.Millisecond, func(raw string) { flushed <- raw })
	defer b.Stop()

	// Keep typing inside the idle window; the scan must survive longer
	// than one window in total.
	for i := 0; i < 5; i++ {
		b.Keystroke('1')
		time.Sleep(20 * time.Millisecond)
	}

	if b.State() != StateBuffering {
		t.Fatalf("state = %v, want buffering while keystrokes keep arriving", b.State())
	}

	b.Enter()
	select {
	case raw := <-flushed:
		if raw != "11111" {
			t.Errorf("flushed %q, want %q", raw, "11111")
		}
	default:
		t.Fatal("Enter did not flush")
	}
}

func TestBufferEmptyEnterIsNoOp(t *testing.T) {
	flushed := make(chan string, 1)
	b := NewBuffer(time.Second, func(raw string) { flushed <- raw })
	defer b.Stop()

	b.Enter()

	select {
	case raw := <-flushed:
		t.Fatalf("empty Enter flushed %q", raw)
	default:
	}
}

package serialio

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

// openPair opens both ends of a fresh loopback link. Ports left open by a
// test are closed during cleanup.
func openPair(t *testing.T) (Port, Port) {
	t.Helper()
	lb := NewLoopback()
	if err := lb.CreatePair("left", "right"); err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}
	hub := NewHub(lb)
	left, err := hub.Open("left")
	if err != nil {
		t.Fatalf("open left: %v", err)
	}
	t.Cleanup(func() { left.Close() })
	right, err := hub.Open("right")
	if err != nil {
		t.Fatalf("open right: %v", err)
	}
	t.Cleanup(func() { right.Close() })
	return left, right
}

// recvBytes waits for one delivery on ch, failing the test after two
// seconds.
func recvBytes(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return nil
	}
}

func TestPortName(t *testing.T) {
	left, right := openPair(t)
	if left.Name() != "left" || right.Name() != "right" {
		t.Errorf("Expected names left/right, got %s/%s", left.Name(), right.Name())
	}
}

func TestWriteReturnsCoercedBytes(t *testing.T) {
	left, _ := openPair(t)

	sent, err := left.Write([]int{300, 10})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !bytes.Equal(sent, []byte{44, 10}) {
		t.Errorf("Expected coerced bytes [44 10], got %v", sent)
	}
}

func TestWriteUnsupportedPayload(t *testing.T) {
	left, _ := openPair(t)

	_, err := left.Write(3.14)
	if !errors.Is(err, ErrUnsupportedPayload) {
		t.Errorf("Expected ErrUnsupportedPayload, got %v", err)
	}
}

func TestHandlerReceivesWrittenBytes(t *testing.T) {
	left, right := openPair(t)

	got := make(chan []byte, 1)
	right.OnBytes(func(data []byte) { got <- data })

	payload := []byte{0x01, 0x00, 0xFF, 'x'}
	if _, err := left.Write(payload); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if data := recvBytes(t, got); !bytes.Equal(data, payload) {
		t.Errorf("Expected %v, got %v", payload, data)
	}
}

func TestEventCarriesPortAndTime(t *testing.T) {
	left, right := openPair(t)

	events := make(chan Event, 1)
	right.OnData(func(ev Event) { events <- ev })

	before := time.Now()
	if _, err := left.Write("ping"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Port != right {
			t.Error("Event.Port is not the receiving port")
		}
		if string(ev.Data) != "ping" {
			t.Errorf("Expected ping, got %q", ev.Data)
		}
		if ev.Time.Before(before) {
			t.Errorf("Event.Time %v predates the write at %v", ev.Time, before)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

// Swapping the handler must redirect the very next delivery; the old
// handler must see nothing after the swap.
func TestHandlerSwapRedirectsDeliveries(t *testing.T) {
	left, right := openPair(t)

	first := make(chan []byte, 4)
	second := make(chan []byte, 4)

	right.OnBytes(func(data []byte) { first <- data })
	left.Write("one")
	if data := recvBytes(t, first); string(data) != "one" {
		t.Fatalf("Expected one, got %q", data)
	}

	right.OnBytes(func(data []byte) { second <- data })
	left.Write("two")
	if data := recvBytes(t, second); string(data) != "two" {
		t.Fatalf("Expected two, got %q", data)
	}

	select {
	case data := <-first:
		t.Errorf("old handler still invoked with %q after swap", data)
	default:
	}
}

// A nil handler reinstates the default, which discards. Data consumed by
// the default is gone: it must not be replayed once a real handler
// returns.
func TestNilHandlerDiscards(t *testing.T) {
	left, right := openPair(t)

	got := make(chan []byte, 4)
	right.OnBytes(func(data []byte) { got <- data })
	left.Write("seen")
	recvBytes(t, got)

	right.OnData(nil)
	left.Write("dropped")
	// No sensible completion signal exists for a discarded batch; give
	// the dispatcher time to consume it.
	time.Sleep(50 * time.Millisecond)

	right.OnBytes(func(data []byte) { got <- data })
	left.Write("seen again")

	if data := recvBytes(t, got); string(data) != "seen again" {
		t.Errorf("Expected the discarded batch to stay discarded, got %q", data)
	}
}

// A handler supplied at open time is installed before the data
// subscription starts, so the first delivery cannot fall into the
// default no-op.
func TestOpenWithInitialHandler(t *testing.T) {
	lb := NewLoopback()
	if err := lb.CreatePair("a", "b"); err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}
	hub := NewHub(lb)

	a, err := hub.Open("a")
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	defer a.Close()

	got := make(chan []byte, 1)
	b, err := hub.Open("b", WithBytesHandler(func(data []byte) { got <- data }))
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	defer b.Close()

	if _, err := a.Write("hello"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if data := recvBytes(t, got); string(data) != "hello" {
		t.Errorf("Expected hello, got %q", data)
	}
}

func TestCloseStopsDeliveries(t *testing.T) {
	left, right := openPair(t)

	got := make(chan []byte, 4)
	right.OnBytes(func(data []byte) { got <- data })

	if err := right.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// The peer write still succeeds; the bytes fall on a dead endpoint.
	if _, err := left.Write("lost"); err != nil {
		t.Fatalf("Write to open peer failed: %v", err)
	}

	select {
	case data := <-got:
		t.Errorf("handler invoked with %q after close", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCloseTwice(t *testing.T) {
	left, _ := openPair(t)

	if err := left.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := left.Close(); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Expected ErrPortClosed on second close, got %v", err)
	}
}

func TestWriteAfterClose(t *testing.T) {
	left, _ := openPair(t)

	left.Close()
	if _, err := left.Write("late"); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Expected ErrPortClosed, got %v", err)
	}
}

func TestReadAfterClose(t *testing.T) {
	left, _ := openPair(t)

	left.Close()
	if _, err := left.Read(10 * time.Millisecond); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Expected ErrPortClosed, got %v", err)
	}
}

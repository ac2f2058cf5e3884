package serialio

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// echo wires a handler on p that writes every received batch straight
// back to the peer.
func echo(p Port) {
	p.OnBytes(func(data []byte) { p.Write(data) })
}

func TestReadReceivesBatch(t *testing.T) {
	left, right := openPair(t)

	go func() {
		time.Sleep(20 * time.Millisecond)
		left.Write("reply")
	}()

	data, err := right.Read(2 * time.Second)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "reply" {
		t.Errorf("Expected reply, got %q", data)
	}
}

// A timeout is an absent result, not an error.
func TestReadTimeout(t *testing.T) {
	_, right := openPair(t)

	start := time.Now()
	data, err := right.Read(100 * time.Millisecond)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if data != nil {
		t.Errorf("Expected nil data on timeout, got %v", data)
	}
	if elapsed < 100*time.Millisecond {
		t.Errorf("Read returned after %v, before the timeout", elapsed)
	}
	if elapsed > time.Second {
		t.Errorf("Read took %v, far past the timeout", elapsed)
	}
}

func TestReadZeroTimeoutReturnsImmediately(t *testing.T) {
	_, right := openPair(t)

	start := time.Now()
	data, err := right.Read(0)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if data != nil {
		t.Errorf("Expected nil data from an empty poll, got %v", data)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("zero-timeout Read blocked for %v", elapsed)
	}
}

// Polling semantics of the wait itself: a batch already delivered to the
// cell is returned even with a zero or negative timeout, an empty cell is
// not waited on.
func TestAwaitPoll(t *testing.T) {
	cell := make(chan []byte, 1)

	if data := await(cell, 0); data != nil {
		t.Errorf("Expected nil from empty cell, got %v", data)
	}

	cell <- []byte{0xAB}
	if data := await(cell, -time.Second); !bytes.Equal(data, []byte{0xAB}) {
		t.Errorf("Expected [171], got %v", data)
	}
}

// armReply must fulfill the cell with the first batch only and drop the
// rest; restore must reinstate the snapshot exactly once.
func TestArmReplySingleBatch(t *testing.T) {
	_, right := openPair(t)
	p := right.(*port)

	var fallback [][]byte
	var mu sync.Mutex
	right.OnBytes(func(data []byte) {
		mu.Lock()
		fallback = append(fallback, data)
		mu.Unlock()
	})

	cell, restore := p.armReply()
	deliver := *p.handler.Load()
	deliver([]byte("first"))
	deliver([]byte("second"))

	if data := await(cell, 0); string(data) != "first" {
		t.Errorf("Expected first, got %q", data)
	}
	if data := await(cell, 0); data != nil {
		t.Errorf("Expected the overflow batch to be dropped, got %q", data)
	}

	restore()
	restore() // idempotent

	(*p.handler.Load())([]byte("third"))
	mu.Lock()
	defer mu.Unlock()
	if len(fallback) != 1 || string(fallback[0]) != "third" {
		t.Errorf("Expected restored handler to receive [third], got %q", fallback)
	}
}

// After a blocking read returns, by success or timeout, the previously
// installed handler must be back in place.
func TestHandlerRestoredAfterRead(t *testing.T) {
	left, right := openPair(t)

	got := make(chan []byte, 4)
	right.OnBytes(func(data []byte) { got <- data })

	go func() {
		time.Sleep(20 * time.Millisecond)
		left.Write("for read")
	}()
	if data, _ := right.Read(2 * time.Second); string(data) != "for read" {
		t.Fatalf("Read returned %q", data)
	}

	left.Write("for handler")
	if data := recvBytes(t, got); string(data) != "for handler" {
		t.Errorf("Expected for handler, got %q", data)
	}
}

func TestHandlerRestoredAfterTimeout(t *testing.T) {
	left, right := openPair(t)

	got := make(chan []byte, 4)
	right.OnBytes(func(data []byte) { got <- data })

	if data, _ := right.Read(50 * time.Millisecond); data != nil {
		t.Fatalf("Expected timeout, got %q", data)
	}

	left.Write("after timeout")
	if data := recvBytes(t, got); string(data) != "after timeout" {
		t.Errorf("Expected after timeout, got %q", data)
	}
}

func TestReadContextCancel(t *testing.T) {
	left, right := openPair(t)

	got := make(chan []byte, 4)
	right.OnBytes(func(data []byte) { got <- data })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := right.ReadContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	left.Write("after cancel")
	if data := recvBytes(t, got); string(data) != "after cancel" {
		t.Errorf("Expected after cancel, got %q", data)
	}
}

func TestReadContextDeadline(t *testing.T) {
	_, right := openPair(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := right.ReadContext(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
}

func TestReadContextReceives(t *testing.T) {
	left, right := openPair(t)

	go func() {
		time.Sleep(20 * time.Millisecond)
		left.Write([]byte{9, 8, 7})
	}()

	data, err := right.ReadContext(context.Background())
	if err != nil {
		t.Fatalf("ReadContext failed: %v", err)
	}
	if !bytes.Equal(data, []byte{9, 8, 7}) {
		t.Errorf("Expected [9 8 7], got %v", data)
	}
}

func TestExecRoundTrip(t *testing.T) {
	left, right := openPair(t)
	echo(right)

	payloads := []any{
		"AT+STATUS?",
		[]byte{0x00, 0x10, 0xFF},
		[]int{1, 2, 300},
		0x42,
	}
	expected := [][]byte{
		[]byte("AT+STATUS?"),
		{0x00, 0x10, 0xFF},
		{1, 2, 44},
		{0x42},
	}

	for i, payload := range payloads {
		resp, err := left.Exec(payload, 2*time.Second)
		if err != nil {
			t.Fatalf("Exec(%v) failed: %v", payload, err)
		}
		if !bytes.Equal(resp, expected[i]) {
			t.Errorf("Expected %v, got %v", expected[i], resp)
		}
	}
}

// The delivery handler is armed before the request bytes leave, so even
// an instant responder cannot slip the reply past the swap. Repeating the
// round trip makes a lost reply show up as a timeout.
func TestExecArmsBeforeWrite(t *testing.T) {
	left, right := openPair(t)
	echo(right)

	for i := 0; i < 50; i++ {
		resp, err := left.Exec([]byte{byte(i)}, 2*time.Second)
		if err != nil {
			t.Fatalf("Exec %d failed: %v", i, err)
		}
		if len(resp) != 1 || resp[0] != byte(i) {
			t.Fatalf("Exec %d: expected [%d], got %v", i, i, resp)
		}
	}
}

func TestExecTimeout(t *testing.T) {
	left, _ := openPair(t)

	resp, err := left.Exec("no one listening", 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if resp != nil {
		t.Errorf("Expected nil response on timeout, got %v", resp)
	}
}

// Payload coercion fails before the handler slot is touched.
func TestExecBadPayloadLeavesHandler(t *testing.T) {
	left, right := openPair(t)

	got := make(chan []byte, 4)
	left.OnBytes(func(data []byte) { got <- data })

	if _, err := left.Exec(struct{}{}, time.Second); !errors.Is(err, ErrUnsupportedPayload) {
		t.Fatalf("Expected ErrUnsupportedPayload, got %v", err)
	}

	right.Write("still routed")
	if data := recvBytes(t, got); string(data) != "still routed" {
		t.Errorf("Expected still routed, got %q", data)
	}
}

func TestExecContextRoundTrip(t *testing.T) {
	left, right := openPair(t)
	echo(right)

	resp, err := left.ExecContext(context.Background(), "hello")
	if err != nil {
		t.Fatalf("ExecContext failed: %v", err)
	}
	if string(resp) != "hello" {
		t.Errorf("Expected hello, got %q", resp)
	}
}

func TestExecContextCancel(t *testing.T) {
	left, right := openPair(t)

	got := make(chan []byte, 4)
	left.OnBytes(func(data []byte) { got <- data })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := left.ExecContext(ctx, "unanswered")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}

	right.Write("after deadline")
	if data := recvBytes(t, got); string(data) != "after deadline" {
		t.Errorf("Expected after deadline, got %q", data)
	}
}

func TestExecAfterClose(t *testing.T) {
	left, _ := openPair(t)
	left.Close()

	if _, err := left.Exec("x", time.Second); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Expected ErrPortClosed, got %v", err)
	}
	if _, err := left.ExecContext(context.Background(), "x"); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Expected ErrPortClosed, got %v", err)
	}
	if _, err := left.ReadContext(context.Background()); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Expected ErrPortClosed, got %v", err)
	}
}

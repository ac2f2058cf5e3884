package serialio

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jeffvalk/serialio/internal/logging"
)

// Event is one batch of received data delivered to a handler. Data holds
// every byte that was available when the transport signalled, in arrival
// order; batch boundaries carry no meaning.
type Event struct {
	Port Port
	Data []byte
	Time time.Time
}

// Handler consumes data events. The port invokes at most one handler call
// at a time, on a goroutine owned by the transport, so a slow handler
// delays subsequent deliveries on its port.
type Handler func(ev Event)

// Port represents an open serial endpoint. It supports two consumption
// modes over one data stream: a replaceable handler for push delivery
// (OnData, OnBytes) and bounded blocking reads that borrow the handler
// slot (Read, Exec). See the package documentation for how the two
// interact.
type Port interface {
	// Name returns the endpoint identifier the port was opened with.
	Name() string

	// Write coerces data with ToBytes and transmits it, returning the
	// coerced bytes actually submitted.
	Write(data any) ([]byte, error)

	// Read blocks until the next data batch arrives or timeout elapses.
	// An elapsed timeout is an absent result (nil, nil), not an error.
	// A timeout <= 0 polls without blocking.
	Read(timeout time.Duration) ([]byte, error)

	// ReadContext is Read bounded by a context instead of a duration.
	// Unlike Read, it reports expiry: it returns ctx.Err() when the
	// context is cancelled or its deadline passes.
	ReadContext(ctx context.Context) ([]byte, error)

	// Exec writes a request and blocks for the response batch, with
	// Read's timeout semantics.
	Exec(data any, timeout time.Duration) ([]byte, error)

	// ExecContext is Exec bounded by a context, with ReadContext's
	// expiry semantics.
	ExecContext(ctx context.Context, data any) ([]byte, error)

	// OnData atomically replaces the current handler. A nil handler
	// reinstates the default, which discards. Replacing the handler is
	// the only way to redirect the stream; data is never buffered for
	// later consumers.
	OnData(h Handler)

	// OnBytes is OnData for callbacks that only want the bytes.
	OnBytes(fn func(data []byte))

	// Close detaches the handler from the transport and releases the
	// endpoint. Closing an already-closed port returns ErrPortClosed.
	Close() error
}

// port is the concrete implementation of the Port interface
type port struct {
	name    string
	dev     Device
	handler atomic.Pointer[rawHandler]
	closed  atomic.Bool
}

// Ensure port implements Port interface at compile time
var _ Port = (*port)(nil)

// rawHandler is the installed form of a handler. OnData wraps the public
// Handler into one; the read coordinator installs its delivery functions
// directly. Exactly one rawHandler is current at any instant.
type rawHandler func(data []byte)

var noopHandler rawHandler = func([]byte) {}

// newPort wires a port onto an open device. The initial handler is
// installed before the device subscription starts so no notification can
// reach the default no-op when the caller supplied a handler up front.
func newPort(name string, dev Device, initial Handler) *port {
	p := &port{name: name, dev: dev}
	p.handler.Store(&noopHandler)
	if initial != nil {
		p.OnData(initial)
	}
	dev.Subscribe(p.dispatch)
	return p
}

// dispatch is the bridge between transport notifications and the current
// handler. It drains everything available and hands the batch to whichever
// handler is current at this instant; the handler is re-read on every
// notification rather than captured at subscription time.
func (p *port) dispatch() {
	data, err := p.dev.ReadAvailable()
	if err != nil {
		logging.Debugf("port %s: drain failed: %v", p.name, err)
		return
	}
	if len(data) == 0 {
		return
	}
	h := p.handler.Load()
	(*h)(data)
}

func (p *port) Name() string {
	return p.name
}

func (p *port) Write(data any) ([]byte, error) {
	buf, err := ToBytes(data)
	if err != nil {
		return nil, err
	}
	if p.closed.Load() {
		return nil, ErrPortClosed
	}
	if _, err := p.dev.Write(buf); err != nil {
		return nil, fmt.Errorf("write to %s failed: %w", p.name, err)
	}
	return buf, nil
}

func (p *port) OnData(h Handler) {
	if h == nil {
		p.handler.Store(&noopHandler)
		return
	}
	raw := rawHandler(func(data []byte) {
		h(Event{Port: p, Data: data, Time: time.Now()})
	})
	p.handler.Store(&raw)
}

func (p *port) OnBytes(fn func(data []byte)) {
	if fn == nil {
		p.handler.Store(&noopHandler)
		return
	}
	raw := rawHandler(fn)
	p.handler.Store(&raw)
}

// Close deregisters the data subscription before releasing the endpoint,
// so no handler invocation can start on a device that is going away.
func (p *port) Close() error {
	if p.closed.Swap(true) {
		return ErrPortClosed
	}
	p.dev.Unsubscribe()
	if err := p.dev.Close(); err != nil {
		return fmt.Errorf("close of %s failed: %w", p.name, err)
	}
	logging.Debugf("port %s: closed", p.name)
	return nil
}

package serialio

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Loopback is an in-memory Transport made of cross-wired endpoint pairs:
// bytes written to one endpoint of a pair become readable on the other.
// Pairs behave like real serial links, including exclusive opens and
// strict mode validation, which makes a Loopback a stand-in for hardware
// in tests and a way to ship virtual links inside a process.
type Loopback struct {
	mu        sync.Mutex
	endpoints map[string]*loopEndpoint
}

var _ Transport = (*Loopback)(nil)

// NewLoopback returns a Loopback with no endpoints.
func NewLoopback() *Loopback {
	return &Loopback{endpoints: make(map[string]*loopEndpoint)}
}

// CreatePair adds two endpoints wired back to back under the given
// identifiers. It fails if either identifier already exists.
func (l *Loopback) CreatePair(a, b string) error {
	if a == b {
		return fmt.Errorf("loopback pair needs two distinct identifiers, got %q twice", a)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range []string{a, b} {
		if _, ok := l.endpoints[id]; ok {
			return fmt.Errorf("loopback endpoint %q already exists", id)
		}
	}
	ea := &loopEndpoint{id: a}
	eb := &loopEndpoint{id: b}
	ea.peer = eb
	eb.peer = ea
	l.endpoints[a] = ea
	l.endpoints[b] = eb
	return nil
}

// ListPorts returns all endpoint identifiers in sorted order.
func (l *Loopback) ListPorts() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]string, 0, len(l.endpoints))
	for id := range l.endpoints {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Open acquires an endpoint exclusively. The timeout is ignored; loopback
// acquisition never blocks.
func (l *Loopback) Open(id string, _ time.Duration) (Device, error) {
	l.mu.Lock()
	ep, ok := l.endpoints[id]
	l.mu.Unlock()
	if !ok {
		return nil, ErrUnknownPort
	}
	return ep.open()
}

// loopEndpoint is one persistent end of a pair. It survives open/close
// cycles; the loopDevice is the per-open session.
type loopEndpoint struct {
	id   string
	peer *loopEndpoint

	mu  sync.Mutex
	dev *loopDevice
}

func (ep *loopEndpoint) open() (Device, error) {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	if ep.dev != nil {
		return nil, fmt.Errorf("%w: endpoint %q is held by another connection", ErrPortBusy, ep.id)
	}
	d := &loopDevice{
		ep:     ep,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	ep.dev = d
	go d.run()
	return d, nil
}

// deliver hands bytes to whatever device currently holds this endpoint.
// Bytes arriving while the endpoint is closed are dropped, like a line
// with nothing attached.
func (ep *loopEndpoint) deliver(p []byte) {
	ep.mu.Lock()
	dev := ep.dev
	ep.mu.Unlock()
	if dev != nil {
		dev.receive(p)
	}
}

// loopDevice is one open session on an endpoint. A dedicated goroutine
// turns queued receive tokens into data-available callbacks, so callbacks
// run on a goroutine the transport owns and never on a writer's.
type loopDevice struct {
	ep     *loopEndpoint
	notify chan struct{}
	done   chan struct{}

	mu     sync.Mutex
	buf    bytes.Buffer
	cb     func()
	mode   Mode
	closed bool
}

var _ Device = (*loopDevice)(nil)

func (d *loopDevice) run() {
	for {
		select {
		case <-d.done:
			return
		case <-d.notify:
			d.mu.Lock()
			cb := d.cb
			d.mu.Unlock()
			if cb != nil {
				cb()
			}
		}
	}
}

func (d *loopDevice) receive(p []byte) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.buf.Write(p)
	d.mu.Unlock()
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

// Configure validates the mode strictly, mirroring what a real device
// would accept, so tests exercise the same rejection paths hardware
// produces.
func (d *loopDevice) Configure(mode Mode) error {
	if !validBaudRate(mode.BaudRate) {
		return fmt.Errorf("%w: baud rate %d", ErrUnsupportedParameters, mode.BaudRate)
	}
	if mode.DataBits < 5 || mode.DataBits > 8 {
		return fmt.Errorf("%w: data bits %d", ErrUnsupportedParameters, mode.DataBits)
	}
	if mode.StopBits != 1 && mode.StopBits != 2 {
		return fmt.Errorf("%w: stop bits %d", ErrUnsupportedParameters, mode.StopBits)
	}
	if mode.Parity < ParityNone || mode.Parity > ParitySpace {
		return fmt.Errorf("%w: parity %d", ErrUnsupportedParameters, int(mode.Parity))
	}
	d.mu.Lock()
	d.mode = mode
	d.mu.Unlock()
	return nil
}

func (d *loopDevice) Subscribe(fn func()) {
	d.mu.Lock()
	d.cb = fn
	pending := d.buf.Len() > 0
	d.mu.Unlock()
	if pending {
		select {
		case d.notify <- struct{}{}:
		default:
		}
	}
}

func (d *loopDevice) Unsubscribe() {
	d.mu.Lock()
	d.cb = nil
	d.mu.Unlock()
}

func (d *loopDevice) ReadAvailable() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrTransportClosed
	}
	if d.buf.Len() == 0 {
		return nil, nil
	}
	data := make([]byte, d.buf.Len())
	copy(data, d.buf.Bytes())
	d.buf.Reset()
	return data, nil
}

func (d *loopDevice) Write(p []byte) (int, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return 0, ErrTransportClosed
	}
	d.ep.peer.deliver(p)
	return len(p), nil
}

func (d *loopDevice) Close() error {
	d.ep.mu.Lock()
	if d.ep.dev == d {
		d.ep.dev = nil
	}
	d.ep.mu.Unlock()

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrTransportClosed
	}
	d.closed = true
	d.cb = nil
	d.buf.Reset()
	d.mu.Unlock()
	close(d.done)
	return nil
}

// validBaudRate reports whether the rate is one of the standard line
// speeds.
func validBaudRate(rate int) bool {
	switch rate {
	case 50, 75, 110, 134, 150, 200, 300, 600,
		1200, 1800, 2400, 4800, 9600, 19200, 38400,
		57600, 115200, 230400, 460800, 500000, 576000,
		921600, 1000000, 1152000, 1500000, 2000000,
		2500000, 3000000, 3500000, 4000000:
		return true
	default:
		return false
	}
}

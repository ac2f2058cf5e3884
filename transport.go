package serialio

import "time"

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

// String returns the conventional single-letter name of the parity mode.
func (p Parity) String() string {
	switch p {
	case ParityOdd:
		return "O"
	case ParityEven:
		return "E"
	case ParityMark:
		return "M"
	case ParitySpace:
		return "S"
	default:
		return "N"
	}
}

// Mode is the line format requested from a transport device.
type Mode struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   Parity
}

// Transport abstracts the platform layer that enumerates and opens serial
// endpoints. The library ships two implementations, SystemTransport (real
// devices) and Loopback (in-memory pairs); callers may provide their own.
//
// Implementations report failures using the package sentinel errors, wrapped
// with any transport-specific detail: ErrUnknownPort for identifiers they do
// not recognize, ErrPortBusy for endpoints already held elsewhere, and
// ErrUnsupportedParameters for line modes they cannot satisfy.
type Transport interface {
	// ListPorts enumerates the endpoint identifiers the transport can open.
	// The order must be deterministic.
	ListPorts() ([]string, error)

	// Open acquires exclusive access to an endpoint. Implementations that
	// cannot bound the acquisition natively should enforce timeout
	// themselves and must not leak a connection that completes late.
	Open(id string, timeout time.Duration) (Device, error)
}

// Device is one open transport connection. The library drives it from a
// single Port; implementations do not need to support concurrent Configure
// or Close calls, but Write, ReadAvailable and the subscribed callback may
// run concurrently with each other.
type Device interface {
	// Configure applies the line mode, replacing any previous mode.
	Configure(mode Mode) error

	// Subscribe registers fn to be called whenever received data becomes
	// available, replacing any previous callback. The callback runs on a
	// goroutine owned by the transport; at most one invocation runs at a
	// time. If data is already pending when Subscribe is called the
	// callback fires for it.
	Subscribe(fn func())

	// Unsubscribe removes the callback. No new invocations start after
	// it returns; an invocation already in flight may complete.
	Unsubscribe()

	// ReadAvailable drains and returns all bytes received so far without
	// blocking. It returns an empty slice when nothing is pending.
	ReadAvailable() ([]byte, error)

	// Write transmits the given bytes.
	Write(p []byte) (int, error)

	// Close releases the endpoint. The identifier becomes openable again.
	Close() error
}

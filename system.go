package serialio

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/jeffvalk/serialio/internal/logging"
)

// readPollInterval bounds how long the read pump blocks in one kernel
// read, so it notices closure even on platforms where Close does not
// interrupt a blocked read.
const readPollInterval = 100 * time.Millisecond

// NewSystemTransport returns the Transport backed by the operating
// system's serial devices.
func NewSystemTransport() Transport {
	return systemTransport{}
}

type systemTransport struct{}

var _ Transport = systemTransport{}

func (systemTransport) ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerating serial ports: %w", err)
	}
	return filterPorts(ports), nil
}

// filterPorts drops pseudo-entries the OS enumerates but no one wires
// serial hardware to, and fixes the order.
func filterPorts(ports []string) []string {
	out := make([]string, 0, len(ports))
	for _, p := range ports {
		if strings.Contains(p, "Bluetooth") || strings.Contains(p, "debug-console") {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Open acquires the device inside a goroutine so a wedged driver cannot
// block the caller past the timeout. A late successful open is closed
// rather than leaked.
func (systemTransport) Open(id string, timeout time.Duration) (Device, error) {
	type openResult struct {
		port serial.Port
		err  error
	}
	resultCh := make(chan openResult, 1)
	go func() {
		port, err := serial.Open(id, &serial.Mode{
			BaudRate: 9600,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		})
		resultCh <- openResult{port, err}
	}()

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case res := <-resultCh:
		if res.err != nil {
			return nil, mapPortError(res.err)
		}
		return newSystemDevice(id, res.port), nil
	case <-timeoutCh:
		go func() {
			if res := <-resultCh; res.err == nil {
				res.port.Close()
				logging.Debugf("system transport: discarded late open of %s", id)
			}
		}()
		return nil, fmt.Errorf("%w: device acquisition did not complete within %s", ErrPortBusy, timeout)
	}
}

// mapPortError translates go.bug.st/serial error codes into the package
// taxonomy. Opening a path that does not exist surfaces as a plain
// PathError rather than a coded port error, so that case is mapped
// separately. Errors without a known code pass through unchanged.
func mapPortError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrUnknownPort
	}
	var pe *serial.PortError
	if !errors.As(err, &pe) {
		return err
	}
	switch pe.Code() {
	case serial.PortNotFound:
		return ErrUnknownPort
	case serial.PortBusy:
		return ErrPortBusy
	case serial.PermissionDenied:
		return ErrPermissionDenied
	case serial.InvalidSpeed:
		return fmt.Errorf("%w: baud rate", ErrUnsupportedParameters)
	case serial.InvalidDataBits:
		return fmt.Errorf("%w: data bits", ErrUnsupportedParameters)
	case serial.InvalidParity:
		return fmt.Errorf("%w: parity", ErrUnsupportedParameters)
	case serial.InvalidStopBits:
		return fmt.Errorf("%w: stop bits", ErrUnsupportedParameters)
	case serial.PortClosed:
		return ErrTransportClosed
	default:
		return err
	}
}

// systemDevice wraps an open kernel device. A pump goroutine converts the
// blocking read interface into data-available callbacks: it reads with a
// short poll timeout, buffers what arrived and signals the subscriber.
type systemDevice struct {
	name string
	port serial.Port

	mu     sync.Mutex
	buf    bytes.Buffer
	cb     func()
	closed bool

	// cbMu serializes callback invocations across the pump and the
	// flush Subscribe schedules for data that arrived before it.
	cbMu sync.Mutex
}

var _ Device = (*systemDevice)(nil)

func newSystemDevice(name string, port serial.Port) *systemDevice {
	d := &systemDevice{name: name, port: port}
	if err := port.SetReadTimeout(readPollInterval); err != nil {
		logging.Warnf("system transport: %s: set read timeout: %v", name, err)
	}
	go d.pump()
	return d
}

func (d *systemDevice) pump() {
	buf := make([]byte, 4096)
	for {
		n, err := d.port.Read(buf)
		if err != nil {
			if !d.isClosed() {
				logging.Debugf("system transport: read pump on %s stopped: %v", d.name, err)
			}
			return
		}
		if n == 0 {
			if d.isClosed() {
				return
			}
			continue
		}
		d.mu.Lock()
		d.buf.Write(buf[:n])
		cb := d.cb
		d.mu.Unlock()
		if cb != nil {
			d.invoke(cb)
		}
	}
}

func (d *systemDevice) invoke(cb func()) {
	d.cbMu.Lock()
	cb()
	d.cbMu.Unlock()
}

func (d *systemDevice) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *systemDevice) Configure(mode Mode) error {
	m, err := systemMode(mode)
	if err != nil {
		return err
	}
	if err := d.port.SetMode(m); err != nil {
		return mapPortError(err)
	}
	return nil
}

// systemMode converts the library mode into go.bug.st/serial's, rejecting
// values the kernel API cannot express.
func systemMode(mode Mode) (*serial.Mode, error) {
	m := &serial.Mode{
		BaudRate: mode.BaudRate,
		DataBits: mode.DataBits,
	}
	switch mode.Parity {
	case ParityNone:
		m.Parity = serial.NoParity
	case ParityOdd:
		m.Parity = serial.OddParity
	case ParityEven:
		m.Parity = serial.EvenParity
	case ParityMark:
		m.Parity = serial.MarkParity
	case ParitySpace:
		m.Parity = serial.SpaceParity
	default:
		return nil, fmt.Errorf("%w: parity %d", ErrUnsupportedParameters, int(mode.Parity))
	}
	switch mode.StopBits {
	case 1:
		m.StopBits = serial.OneStopBit
	case 2:
		m.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("%w: stop bits %d", ErrUnsupportedParameters, mode.StopBits)
	}
	return m, nil
}

func (d *systemDevice) Subscribe(fn func()) {
	d.mu.Lock()
	d.cb = fn
	pending := d.buf.Len() > 0
	d.mu.Unlock()
	if pending {
		go d.invoke(fn)
	}
}

func (d *systemDevice) Unsubscribe() {
	d.mu.Lock()
	d.cb = nil
	d.mu.Unlock()
}

func (d *systemDevice) ReadAvailable() ([]byte, error) {
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

func (d *systemDevice) Write(p []byte) (int, error) {
	if d.isClosed() {
		return 0, ErrTransportClosed
	}
	n, err := d.port.Write(p)
	if err != nil {
		return n, mapPortError(err)
	}
	return n, nil
}

func (d *systemDevice) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrTransportClosed
	}
	d.closed = true
	d.cb = nil
	d.mu.Unlock()
	if err := d.port.Close(); err != nil {
		return mapPortError(err)
	}
	return nil
}

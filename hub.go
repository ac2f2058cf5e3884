package serialio

import (
	"errors"
	"fmt"

	"github.com/jeffvalk/serialio/internal/logging"
)

// Hub binds one Transport to one Registry and is the entry point for
// listing and opening ports. The package-level functions operate on a
// default hub over the system transport; construct separate hubs to work
// against other transports (a Loopback, a test double) without touching
// process-wide state.
type Hub struct {
	transport Transport
	registry  *Registry
}

// NewHub returns a hub over the given transport with an empty registry.
func NewHub(t Transport) *Hub {
	return &Hub{transport: t, registry: NewRegistry()}
}

// Transport returns the hub's transport.
func (h *Hub) Transport() Transport {
	return h.transport
}

// Registry returns the hub's registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// AvailablePorts lists endpoint identifiers. A non-empty registry is
// authoritative and suppresses discovery; otherwise the transport
// enumerates.
func (h *Hub) AvailablePorts() ([]string, error) {
	if ids, ok := h.registry.Ports(); ok {
		return ids, nil
	}
	return h.transport.ListPorts()
}

// AddPorts registers endpoint identifiers, returning the full registered
// set. Registration is idempotent.
func (h *Hub) AddPorts(ids ...string) []string {
	return h.registry.Add(ids...)
}

// ResetPorts clears the registry and returns what transport discovery
// reports afterwards.
func (h *Hub) ResetPorts() ([]string, error) {
	h.registry.Reset()
	return h.transport.ListPorts()
}

// Open acquires the endpoint, applies the line mode and returns a ready
// Port with its data subscription active. Failures are distinguishable
// with errors.Is: ErrUnknownPort (the transport does not recognize the
// identifier), ErrPortBusy (held elsewhere) and ErrUnsupportedParameters
// (the device rejected the mode; the message carries the requested baud).
// If the mode is rejected after acquisition the device is closed before
// returning.
func (h *Hub) Open(id string, opts ...Option) (Port, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	dev, err := h.transport.Open(id, config.OpenTimeout)
	if err != nil {
		if errors.Is(err, ErrUnknownPort) {
			return nil, fmt.Errorf("open %q: %w (use AddPorts to register endpoints the transport cannot discover)", id, err)
		}
		return nil, fmt.Errorf("open %q: %w", id, err)
	}

	if err := dev.Configure(config.mode()); err != nil {
		if cerr := dev.Close(); cerr != nil {
			logging.Debugf("hub: closing %s after rejected mode: %v", id, cerr)
		}
		return nil, fmt.Errorf("configure %q at %d baud: %w", id, config.BaudRate, err)
	}

	logging.Debugf("hub: opened %s at %d baud (%d%s%d)",
		id, config.BaudRate, config.DataBits, config.Parity, config.StopBits)
	return newPort(id, dev, config.Handler), nil
}

// Use opens the port, runs fn and closes the port whether or not fn
// succeeds. It returns fn's error, or the close error if fn succeeded.
func (h *Hub) Use(id string, fn func(p Port) error, opts ...Option) (err error) {
	p, err := h.Open(id, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(p)
}

var defaultHub = NewHub(NewSystemTransport())

// Default returns the process-wide hub backing the package-level
// functions.
func Default() *Hub {
	return defaultHub
}

// Open opens a port on the default hub.
func Open(id string, opts ...Option) (Port, error) {
	return defaultHub.Open(id, opts...)
}

// Use opens a port on the default hub, runs fn and always closes the port.
func Use(id string, fn func(p Port) error, opts ...Option) error {
	return defaultHub.Use(id, fn, opts...)
}

// AvailablePorts lists ports on the default hub.
func AvailablePorts() ([]string, error) {
	return defaultHub.AvailablePorts()
}

// AddPorts registers identifiers on the default hub's registry.
func AddPorts(ids ...string) []string {
	return defaultHub.AddPorts(ids...)
}

// ResetPorts clears the default hub's registry and re-runs discovery.
func ResetPorts() ([]string, error) {
	return defaultHub.ResetPorts()
}

package serialio

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func pairHub(t *testing.T) *Hub {
	t.Helper()
	lb := NewLoopback()
	if err := lb.CreatePair("near", "far"); err != nil {
		t.Fatalf("CreatePair failed: %v", err)
	}
	return NewHub(lb)
}

func TestAvailablePortsRegistryOverride(t *testing.T) {
	hub := pairHub(t)

	ports, err := hub.AvailablePorts()
	if err != nil {
		t.Fatalf("AvailablePorts failed: %v", err)
	}
	if len(ports) != 2 || ports[0] != "far" || ports[1] != "near" {
		t.Errorf("Expected discovered [far near], got %v", ports)
	}

	hub.AddPorts("/dev/ttyVIRT0")
	ports, err = hub.AvailablePorts()
	if err != nil {
		t.Fatalf("AvailablePorts failed: %v", err)
	}
	if len(ports) != 1 || ports[0] != "/dev/ttyVIRT0" {
		t.Errorf("Expected registry to suppress discovery, got %v", ports)
	}

	discovered, err := hub.ResetPorts()
	if err != nil {
		t.Fatalf("ResetPorts failed: %v", err)
	}
	if len(discovered) != 2 {
		t.Errorf("Expected discovery after reset, got %v", discovered)
	}
}

func TestAddPortsAccumulates(t *testing.T) {
	hub := pairHub(t)

	hub.AddPorts("a", "b")
	all := hub.AddPorts("a", "c")
	expected := []string{"a", "b", "c"}
	if len(all) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, all)
	}
	for i := range expected {
		if all[i] != expected[i] {
			t.Errorf("Expected %s at index %d, got %s", expected[i], i, all[i])
		}
	}
}

func TestHubOpenUnknown(t *testing.T) {
	hub := pairHub(t)

	_, err := hub.Open("ghost")
	if !errors.Is(err, ErrUnknownPort) {
		t.Fatalf("Expected ErrUnknownPort, got %v", err)
	}
	if !strings.Contains(err.Error(), "AddPorts") {
		t.Errorf("Expected the error to point at AddPorts, got %q", err)
	}
}

func TestHubOpenBusy(t *testing.T) {
	hub := pairHub(t)

	p, err := hub.Open("near")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer p.Close()

	if _, err := hub.Open("near"); !errors.Is(err, ErrPortBusy) {
		t.Errorf("Expected ErrPortBusy, got %v", err)
	}
}

// A device that rejects the line mode is released before Open returns,
// and the error names the requested baud rate.
func TestHubOpenRejectedMode(t *testing.T) {
	hub := pairHub(t)

	_, err := hub.Open("near", WithBaudRate(115201))
	if !errors.Is(err, ErrUnsupportedParameters) {
		t.Fatalf("Expected ErrUnsupportedParameters, got %v", err)
	}
	if !strings.Contains(err.Error(), "115201") {
		t.Errorf("Expected the error to carry the requested baud, got %q", err)
	}

	p, err := hub.Open("near")
	if err != nil {
		t.Fatalf("Expected the endpoint to be released after rejection, got %v", err)
	}
	p.Close()
}

// Option validation fails before the transport is touched.
func TestHubOpenInvalidOption(t *testing.T) {
	hub := pairHub(t)

	if _, err := hub.Open("near", WithBaudRate(-1)); !errors.Is(err, ErrInvalidBaudRate) {
		t.Fatalf("Expected ErrInvalidBaudRate, got %v", err)
	}

	p, err := hub.Open("near")
	if err != nil {
		t.Fatalf("Expected the endpoint to be untouched, got %v", err)
	}
	p.Close()
}

func TestUseClosesAfterSuccess(t *testing.T) {
	hub := pairHub(t)

	var inside Port
	err := hub.Use("near", func(p Port) error {
		inside = p
		_, werr := p.Write("from use")
		return werr
	})
	if err != nil {
		t.Fatalf("Use failed: %v", err)
	}

	if _, err := inside.Write("late"); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Expected the port to be closed after Use, got %v", err)
	}
	p, err := hub.Open("near")
	if err != nil {
		t.Fatalf("Expected the endpoint to be released after Use, got %v", err)
	}
	p.Close()
}

func TestUseClosesAfterError(t *testing.T) {
	hub := pairHub(t)
	boom := errors.New("boom")

	err := hub.Use("near", func(p Port) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Expected fn's error to propagate, got %v", err)
	}

	p, err := hub.Open("near")
	if err != nil {
		t.Fatalf("Expected the endpoint to be released, got %v", err)
	}
	p.Close()
}

func TestUseOpenFailure(t *testing.T) {
	hub := pairHub(t)

	called := false
	err := hub.Use("ghost", func(p Port) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrUnknownPort) {
		t.Errorf("Expected ErrUnknownPort, got %v", err)
	}
	if called {
		t.Error("fn must not run when open fails")
	}
}

// Two links under one hub stay independent: concurrent request/response
// exchanges on separate pairs never cross.
func TestConcurrentExecIsolation(t *testing.T) {
	lb := NewLoopback()
	lb.CreatePair("near0", "far0")
	lb.CreatePair("near1", "far1")
	hub := NewHub(lb)

	open := func(id string) Port {
		p, err := hub.Open(id)
		if err != nil {
			t.Fatalf("open %s: %v", id, err)
		}
		t.Cleanup(func() { p.Close() })
		return p
	}

	near0, far0 := open("near0"), open("far0")
	near1, far1 := open("near1"), open("far1")
	echo(far0)
	echo(far1)

	payload0 := make([]byte, 128)
	payload1 := make([]byte, 256)
	for i := range payload0 {
		payload0[i] = byte(i)
	}
	for i := range payload1 {
		payload1[i] = byte(255 - i%256)
	}

	var wg sync.WaitGroup
	run := func(p Port, payload []byte) {
		defer wg.Done()
		for i := 0; i < 25; i++ {
			resp, err := p.Exec(payload, 2*time.Second)
			if err != nil {
				t.Errorf("Exec on %s failed: %v", p.Name(), err)
				return
			}
			if !bytes.Equal(resp, payload) {
				t.Errorf("Exec on %s: response does not match request (%d vs %d bytes)",
					p.Name(), len(resp), len(payload))
				return
			}
		}
	}

	wg.Add(2)
	go run(near0, payload0)
	go run(near1, payload1)
	wg.Wait()
}

// The package-level functions share one default hub over the system
// transport; its registry behaves like any other hub's.
func TestDefaultHubRegistry(t *testing.T) {
	defer ResetPorts()

	AddPorts("/dev/ttyTEST0")
	ports, err := AvailablePorts()
	if err != nil {
		t.Fatalf("AvailablePorts failed: %v", err)
	}
	if len(ports) != 1 || ports[0] != "/dev/ttyTEST0" {
		t.Errorf("Expected registered override, got %v", ports)
	}

	if Default() == nil || Default().Transport() == nil {
		t.Error("Expected a default hub with a transport")
	}
}

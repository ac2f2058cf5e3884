package serialio

import (
	"errors"
	"testing"
)

func TestDescribePort(t *testing.T) {
	tests := []struct {
		id       string
		expected string
	}{
		{"/dev/ttyUSB0", "USB Serial Port"},
		{"/dev/ttyACM0", "USB CDC/ACM Device"},
		{"/dev/ttyS0", "Standard Serial Port"},
		{"/dev/ttyAMA0", "ARM Serial Port"},
		{"/dev/ttymxc0", "i.MX Serial Port"},
		{"/dev/ttyO0", "OMAP Serial Port"},
		{"/dev/ttySAC0", "Samsung Serial Port"},
		{"/dev/ttyTHS0", "Tegra Serial Port"},
		{"/dev/pts/3", "Pseudo-Terminal"},
		{"COM3", "Serial Port"},
		{"unknown", "Serial Port"},
	}

	for _, test := range tests {
		result := describePort(test.id)
		if result != test.expected {
			t.Errorf("describePort(%s) = %s, expected %s", test.id, result, test.expected)
		}
	}
}

// DetailedPorts reflects whatever hardware the host has; only its
// invariants are checked.
func TestDetailedPorts(t *testing.T) {
	infos, err := DetailedPorts()
	if err != nil {
		t.Skipf("platform enumeration unavailable: %v", err)
	}

	for i, info := range infos {
		if info == nil {
			t.Fatalf("nil entry at index %d", i)
		}
		if info.Name == "" {
			t.Errorf("entry %d has empty name", i)
		}
		if info.Description == "" {
			t.Errorf("entry %d (%s) has empty description", i, info.Name)
		}
		if i > 0 && infos[i-1].Name > info.Name {
			t.Errorf("entries not sorted: %s > %s", infos[i-1].Name, info.Name)
		}
	}
}

func TestPortDetailsUnknown(t *testing.T) {
	_, err := PortDetails("/dev/definitely-not-a-port")
	if err == nil {
		t.Fatal("Expected error for unknown identifier")
	}
	if !errors.Is(err, ErrUnknownPort) {
		t.Errorf("Expected ErrUnknownPort, got %v", err)
	}
}

package serialio

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.bug.st/serial/enumerator"
)

// PortInfo carries the platform metadata known about one endpoint. The
// USB fields are populated only when IsUSB is true; virtual endpoints
// registered with AddPorts are never enumerated here.
type PortInfo struct {
	Name         string // endpoint identifier, as accepted by Open
	Description  string // human-readable port classification
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// DetailedPorts returns metadata for every endpoint the platform
// enumerates, sorted by identifier. It reflects raw discovery: the
// registry does not apply here, since registered virtual endpoints have
// no platform metadata to report.
func DetailedPorts() ([]*PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerating port details: %w", err)
	}

	infos := make([]*PortInfo, 0, len(details))
	for _, d := range details {
		infos = append(infos, portInfo(d))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// PortDetails returns metadata for a single enumerated endpoint. An
// identifier the platform does not report yields ErrUnknownPort;
// registered-but-virtual endpoints fall in that category.
func PortDetails(id string) (*PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerating port details: %w", err)
	}

	for _, d := range details {
		if d.Name == id {
			return portInfo(d), nil
		}
	}
	return nil, fmt.Errorf("%w: %s is not an enumerable device", ErrUnknownPort, id)
}

func portInfo(d *enumerator.PortDetails) *PortInfo {
	return &PortInfo{
		Name:         d.Name,
		Description:  describePort(d.Name),
		IsUSB:        d.IsUSB,
		VID:          d.VID,
		PID:          d.PID,
		SerialNumber: d.SerialNumber,
		Product:      d.Product,
	}
}

// describePort classifies an endpoint identifier by its device name
// conventions.
func describePort(id string) string {
	if strings.Contains(id, "pts/") {
		return "Pseudo-Terminal"
	}
	name := strings.ToLower(filepath.Base(id))
	switch {
	case strings.HasPrefix(name, "ttyusb"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttysac"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyo"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttys"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}

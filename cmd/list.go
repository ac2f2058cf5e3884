/*
Copyright © 2025 Jeff Valk
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"

	"github.com/jeffvalk/serialio"
	"github.com/jeffvalk/serialio/internal/tui/colors"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List all available serial ports.

Without pinned ports this scans the system for communication-capable
serial devices including:
- USB serial adapters (ttyUSB*)
- USB CDC/ACM devices (ttyACM*)
- Standard serial ports (ttyS*)
- ARM/Raspberry Pi ports (ttyAMA*)
- And other platform-specific serial devices

Virtual terminals and pseudo-terminals are excluded from the scan.
When ports are pinned with --ports, the environment, or the config
file, exactly the pinned set is listed instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := serialio.AvailablePorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")
		details, _ := cmd.Flags().GetBool("details")

		filtered := filterByType(ports, filterType)

		if len(filtered) == 0 {
			if filterType != "" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return
		}

		switch {
		case tableFormat:
			renderTable(filtered)
		case details:
			renderDetails(filtered)
		default:
			renderSimple(filtered)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
	listCmd.Flags().BoolP("details", "d", false, "Include USB metadata where available")
}

// filterByType narrows the port list by device name conventions.
func filterByType(ports []string, filterType string) []string {
	if filterType == "" || filterType == "all" {
		return ports
	}

	var filtered []string
	for _, port := range ports {
		name := strings.ToLower(filepath.Base(port))
		switch strings.ToLower(filterType) {
		case "usb":
			if strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm") {
				filtered = append(filtered, port)
			}
		case "standard":
			if strings.HasPrefix(name, "ttys") {
				filtered = append(filtered, port)
			}
		case "arm":
			if strings.HasPrefix(name, "ttyama") {
				filtered = append(filtered, port)
			}
		}
	}
	return filtered
}

const (
	columnKeyPort = "port"
	columnKeyType = "type"
	columnKeyDesc = "description"
)

// renderTable renders the port list in a styled table format
func renderTable(ports []string) {
	fmt.Printf("Found %d serial port(s):\n\n", len(ports))

	columns := []table.Column{
		table.NewColumn(columnKeyPort, "Port", 18),
		table.NewColumn(columnKeyType, "Type", 20),
		table.NewColumn(columnKeyDesc, "Description", 34),
	}

	rows := make([]table.Row, 0, len(ports))
	for _, port := range ports {
		desc := "-"
		if info, err := serialio.PortDetails(port); err == nil && info.IsUSB {
			desc = usbSummary(info)
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPort: port,
			columnKeyType: portType(port),
			columnKeyDesc: desc,
		}))
	}

	t := table.New(columns).
		WithRows(rows).
		WithBaseStyle(lipgloss.NewStyle().Foreground(colors.Text)).
		HeaderStyle(lipgloss.NewStyle().Foreground(colors.Blue).Bold(true))

	fmt.Println(t.View())
}

// renderDetails renders one line per port with USB metadata when the
// platform reports it. Pinned virtual endpoints have no metadata and
// print bare.
func renderDetails(ports []string) {
	for _, port := range ports {
		info, err := serialio.PortDetails(port)
		if err != nil {
			fmt.Println(port)
			continue
		}

		fmt.Printf("%-18s %s", info.Name, info.Description)
		if info.IsUSB {
			fmt.Printf("  [%s:%s]", info.VID, info.PID)
			if info.Product != "" {
				fmt.Printf(" %s", info.Product)
			}
			if info.SerialNumber != "" {
				fmt.Printf(" (serial %s)", info.SerialNumber)
			}
		}
		fmt.Println()
	}
}

// renderSimple renders the port list in simple text format
func renderSimple(ports []string) {
	for _, port := range ports {
		fmt.Println(port)
	}
}

func usbSummary(info *serialio.PortInfo) string {
	summary := fmt.Sprintf("%s:%s", info.VID, info.PID)
	if info.Product != "" {
		summary = fmt.Sprintf("%s %s", info.Product, summary)
	}
	return summary
}

// portType returns a more specific type classification for the port
func portType(port string) string {
	name := strings.ToLower(filepath.Base(port))
	switch {
	case strings.HasPrefix(name, "ttyusb"):
		return "USB Serial"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial"
	case strings.HasPrefix(name, "ttysac"):
		return "Samsung Serial"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial"
	case strings.HasPrefix(name, "ttyo"):
		return "OMAP Serial"
	case strings.HasPrefix(name, "ttys"):
		return "Standard Serial"
	default:
		return "Serial Port"
	}
}

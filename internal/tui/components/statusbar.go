package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeffvalk/serialio"
	"github.com/jeffvalk/serialio/internal/tui/colors"
)

// ConnectionInfo is the line mode shown in the status bar.
type ConnectionInfo struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   serialio.Parity
}

// InfoFromConfig extracts the displayed line mode from a resolved port
// configuration.
func InfoFromConfig(cfg serialio.Config) *ConnectionInfo {
	return &ConnectionInfo{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   cfg.Parity,
	}
}

type StatusBar struct {
	title          string
	portPath       string
	status         string
	err            error
	width          int
	connectionInfo *ConnectionInfo
}

func NewStatusBar(title, portPath string) *StatusBar {
	return &StatusBar{
		title:    title,
		portPath: portPath,
		status:   "Initializing...",
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnectionInfo(info *ConnectionInfo) {
	sb.connectionInfo = info
}

func (sb *StatusBar) SetConnecting() {
	sb.status = "Connecting..."
	sb.err = nil
}

func (sb *StatusBar) SetConnected() {
	sb.status = "Connected - listening for data..."
	sb.err = nil
}

func (sb *StatusBar) SetDisconnected(err error) {
	if err != nil {
		sb.status = fmt.Sprintf("Connection failed: %v", err)
		sb.err = err
	} else {
		sb.status = "Disconnected"
		sb.err = nil
	}
}

// ComprehensiveStatusBar renders the one-line status bar: mode segment,
// port and connection indicator on the left, line mode and clock on the
// right. The sendMode segment is only rendered in insert mode, where the
// Tab toggle applies.
func (sb *StatusBar) ComprehensiveStatusBar(mode, sendMode string, connected bool, timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	// Section 1: mode indicator (like NORMAL in nvim)
	var modeBg lipgloss.Color
	switch mode {
	case "INSERT":
		modeBg = colors.Green
	case "VISUAL":
		modeBg = colors.Yellow
	default:
		modeBg = colors.Blue
	}
	modeSegment := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(modeBg).
		Bold(true).
		Padding(0, 1).
		Render(mode)

	// Section 2: port path
	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(sb.portPath)

	// Section 3: single character connection indicator
	var connIndicator string
	var connStyle lipgloss.Style
	switch {
	case sb.err != nil:
		connStyle = lipgloss.NewStyle().Foreground(colors.Red)
		connIndicator = "✗"
	case connected:
		connStyle = lipgloss.NewStyle().Foreground(colors.Green)
		connIndicator = "●"
	case sb.status == "Connecting...":
		connStyle = lipgloss.NewStyle().Foreground(colors.Yellow)
		connIndicator = "○"
	default:
		connStyle = lipgloss.NewStyle().Foreground(colors.Red)
		connIndicator = "○"
	}
	connectionIndicator := connStyle.Render(connIndicator)

	// Section 4: line mode summary
	var connInfo string
	if sb.connectionInfo != nil {
		connInfo = fmt.Sprintf("⚡ %d baud %d%s%d",
			sb.connectionInfo.BaudRate,
			sb.connectionInfo.DataBits,
			sb.connectionInfo.Parity,
			sb.connectionInfo.StopBits)
	} else {
		connInfo = "⚡ serial"
	}
	connectionDetails := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(connInfo)

	// Section 5: timestamp
	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(timestamp)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	var sendModeInfo string
	if mode == "INSERT" {
		sendModeInfo = lipgloss.NewStyle().
			Foreground(colors.Peach).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("[%s] Tab to toggle", sendMode))
	}

	var leftSide string
	if sendModeInfo != "" {
		leftSide = lipgloss.JoinHorizontal(lipgloss.Left, modeSegment, port, connectionIndicator, sendModeInfo, divider)
	} else {
		leftSide = lipgloss.JoinHorizontal(lipgloss.Left, modeSegment, port, connectionIndicator, divider)
	}
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, connectionDetails, divider, clock)

	spacerWidth := terminalWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	barStyle := lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth)

	return barStyle.Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}

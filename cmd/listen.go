/*
Copyright © 2025 Jeff Valk
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jeffvalk/serialio"
	"github.com/jeffvalk/serialio/internal/logging"
	"github.com/jeffvalk/serialio/internal/tui/components"
	"github.com/jeffvalk/serialio/internal/tui/keys"
	"github.com/jeffvalk/serialio/internal/tui/models"
	"github.com/jeffvalk/serialio/internal/tui/styles"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen <port>",
	Short: "Listen for data on a serial port with real-time display",
	Long: `Listen for incoming data on a serial port with a real-time TUI display.

Incoming data is streamed into a scrollback table, one row per received
batch, with timestamp, hex and ASCII columns. Features include:
- Real-time streaming with timestamps
- Hex / ASCII / timestamp column toggles (h, a, t)
- Follow mode pinned to the newest row; visual mode (v) for scrolling back
- Connection status indicators

Example usage:
  serialio listen /dev/ttyUSB0
  serialio listen /dev/ttyUSB0 --baud 9600
  serialio listen /dev/ttyUSB0 --no-timestamps`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		baudRate, _ := cmd.Flags().GetInt("baud")
		noTimestamps, _ := cmd.Flags().GetBool("no-timestamps")

		opts := []serialio.Option{
			serialio.WithBaudRate(baudRate),
		}

		if err := runListenTUI(portPath, noTimestamps, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	listenCmd.Flags().Bool("no-timestamps", false, "Start with the timestamp column hidden")
}

// setupTUILogging routes log output to a rotated file so it cannot paint
// over the alternate screen.
func setupTUILogging() {
	dir := filepath.Join(os.TempDir(), "serialio")
	if err := logging.EnableFileLogging(dir, "serialio.log", 10, 3, 7); err != nil {
		logging.Discard()
	}
}

// listenModel represents the Bubble Tea model for the listen command
type listenModel struct {
	*models.Session
	table     *components.TerminalTable
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.TerminalKeys
}

func runListenTUI(portPath string, noTimestamps bool, opts ...serialio.Option) error {
	setupTUILogging()

	// Resolve the configuration the options produce so the status bar can
	// show the line mode.
	config := serialio.DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return err
		}
	}

	m := listenModel{
		Session:   models.NewSession(portPath),
		table:     components.NewTerminalTable(80, 20),
		statusBar: components.NewStatusBar("Serial Listen", portPath),
		help:      help.New(),
		keys:      keys.NewTerminalKeys(),
	}
	if noTimestamps {
		m.table.ToggleTimestamps()
	}
	m.statusBar.SetConnecting()
	m.statusBar.SetConnectionInfo(components.InfoFromConfig(config))

	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Open in the background so the UI renders immediately. Incoming
	// batches are pushed straight from the port's handler into the
	// program's message queue.
	go func() {
		port, err := serialio.Open(portPath, append(opts,
			serialio.WithHandler(func(ev serialio.Event) {
				p.Send(components.DataReceivedMsg{
					Timestamp: ev.Time,
					Data:      ev.Data,
				})
			}))...)
		if err != nil {
			logging.Errorf("listen %s: %v", portPath, err)
			p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
			return
		}

		m.SetPort(port)
		p.Send(models.ConnectionStatusMsg{Connected: true})
	}()

	_, err := p.Run()

	m.Cleanup()
	return err
}

func (m *listenModel) Init() tea.Cmd {
	return nil
}

func (m *listenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// One line each for the content border and the status bar.
		m.table.SetSize(msg.Width, msg.Height-2)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
		} else {
			m.statusBar.SetConnected()
		}

	case components.DataReceivedMsg:
		if !m.IsReady() {
			m.table.SetSize(80, 20)
			m.SetReady(true)
		}
		m.AddRawData(msg)
		m.table.AddMessage(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Cleanup()
			return m, tea.Quit

		case key.Matches(msg, m.keys.VisualMode):
			m.table.SetViewMode(components.ViewModeVisual)

		case key.Matches(msg, m.keys.Escape):
			m.table.SetViewMode(components.ViewModeFollow)

		case key.Matches(msg, m.keys.Clear):
			m.ClearData()
			m.table.Clear()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.ToggleHex):
			m.table.ToggleHex()

		case key.Matches(msg, m.keys.ToggleASCII):
			m.table.ToggleASCII()

		case key.Matches(msg, m.keys.ToggleTimestamps):
			m.table.ToggleTimestamps()

		case key.Matches(msg, m.keys.GotoTop):
			m.table.GotoTop()

		case key.Matches(msg, m.keys.GotoBottom):
			m.table.GotoBottom()

		default:
			// Row navigation is handled by the table in visual mode.
			cmds = append(cmds, m.table.Update(msg))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *listenModel) View() string {
	var content string
	if m.IsReady() {
		content = m.table.View()
	} else {
		content = "Initializing..."
	}

	timestamp := time.Now().Format("15:04:05")
	statusBar := m.statusBar.ComprehensiveStatusBar(
		m.table.GetViewMode().String(), "", m.IsConnected(), timestamp)

	contentWithBorder := styles.ContentBorderStyle.Render(content)

	if m.help.ShowAll {
		helpView := styles.HelpStyle.Render(m.help.View(m.keys))
		return lipgloss.JoinVertical(
			lipgloss.Left,
			contentWithBorder,
			helpView,
			statusBar,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		statusBar,
	)
}

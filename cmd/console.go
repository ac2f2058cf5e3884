/*
Copyright © 2025 Jeff Valk
*/
package cmd

import (
	"fmt"
	"os"
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

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console <port>",
	Short: "Interactive bidirectional serial console",
	Long: `Open an interactive console on a serial port.

The console streams incoming data into a scrolling log and provides a
vim-like input field for sending data. Features include:
- Insert mode (i) for composing messages, normal mode (esc) for navigation
- ASCII and hex sending modes (tab toggles while in insert mode)
- Input history with up/down arrows
- Hex / ASCII / timestamp display toggles (h, a, t)
- Request/response mode: --reply waits for each send's response

Example usage:
  serialio console /dev/ttyUSB0
  serialio console /dev/ttyUSB0 --baud 9600
  serialio console /dev/ttyACM0 --reply --timeout 500ms`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		baudRate, _ := cmd.Flags().GetInt("baud")
		awaitReply, _ := cmd.Flags().GetBool("reply")
		replyTimeout, _ := cmd.Flags().GetDuration("timeout")

		opts := []serialio.Option{
			serialio.WithBaudRate(baudRate),
		}

		if err := runConsoleTUI(portPath, awaitReply, replyTimeout, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	consoleCmd.Flags().Bool("reply", false, "Wait for a response after each send")
	consoleCmd.Flags().DurationP("timeout", "t", 2*time.Second, "Response timeout in --reply mode")
}

// consoleModel represents the Bubble Tea model for the console command
type consoleModel struct {
	*models.Session
	terminal     *components.Terminal
	statusBar    *components.StatusBar
	input        *components.Input
	help         help.Model
	keys         keys.ConsoleKeys
	awaitReply   bool
	replyTimeout time.Duration
}

func runConsoleTUI(portPath string, awaitReply bool, replyTimeout time.Duration, opts ...serialio.Option) error {
	setupTUILogging()

	config := serialio.DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return err
		}
	}

	m := consoleModel{
		Session:      models.NewSession(portPath),
		terminal:     components.NewTerminal(0, 0), // sized by the first WindowSizeMsg
		statusBar:    components.NewStatusBar("Serial Console", portPath),
		input:        components.NewInput("Type message and press Enter to send..."),
		help:         help.New(),
		keys:         keys.NewConsoleKeys(),
		awaitReply:   awaitReply,
		replyTimeout: replyTimeout,
	}
	m.statusBar.SetConnecting()
	m.statusBar.SetConnectionInfo(components.InfoFromConfig(config))

	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	go func() {
		port, err := serialio.Open(portPath, append(opts,
			serialio.WithHandler(func(ev serialio.Event) {
				p.Send(components.DataReceivedMsg{
					Timestamp: ev.Time,
					Data:      ev.Data,
				})
			}))...)
		if err != nil {
			logging.Errorf("console %s: %v", portPath, err)
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

func (m *consoleModel) Init() tea.Cmd {
	return nil
}

// consoleNotice renders a local notice in the log as an RX line.
func consoleNotice(text string) components.DataReceivedMsg {
	return components.DataReceivedMsg{
		Timestamp: time.Now(),
		Data:      []byte(text),
	}
}

// buildPayload converts the input line into transmit bytes according to
// the sending mode. ASCII sends get a trailing newline on the wire but
// display without it.
func (m *consoleModel) buildPayload(input string) (payload, display []byte, err error) {
	switch m.input.GetSendingMode() {
	case components.SendingModeHex:
		payload, err = parseHexString(input)
		if err != nil {
			return nil, nil, err
		}
		return payload, payload, nil
	default:
		return []byte(input + "\n"), []byte(input), nil
	}
}

// writeCmd performs a fire-and-forget send off the update loop and
// reports the outcome as a TX row.
func (m *consoleModel) writeCmd(port serialio.Port, payload, display []byte) tea.Cmd {
	return func() tea.Msg {
		_, err := port.Write(payload)
		status := "WRITTEN"
		if err != nil {
			logging.Errorf("console %s: write: %v", m.GetPortPath(), err)
			status = "ERROR"
		}
		return components.DataReceivedMsg{
			Timestamp: time.Now(),
			Data:      display,
			IsTX:      true,
			Status:    status,
		}
	}
}

// execCmd runs a request/response exchange off the update loop. While the
// exchange is in flight the response is claimed by it, so it arrives here
// rather than through the streaming handler.
func (m *consoleModel) execCmd(port serialio.Port, payload []byte) tea.Cmd {
	timeout := m.replyTimeout
	return func() tea.Msg {
		reply, err := port.Exec(payload, timeout)
		switch {
		case err != nil:
			logging.Errorf("console %s: exec: %v", m.GetPortPath(), err)
			return consoleNotice(fmt.Sprintf("exchange failed: %v", err))
		case reply == nil:
			return consoleNotice(fmt.Sprintf("no response within %s", timeout))
		default:
			return components.DataReceivedMsg{
				Timestamp: time.Now(),
				Data:      reply,
			}
		}
	}
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// One line for the content border, three for the input area,
		// one for the status bar.
		m.terminal.SetSize(msg.Width, msg.Height-5)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
		} else {
			m.statusBar.SetConnected()
			m.input.Focus()
		}

	case components.DataReceivedMsg:
		if !m.IsReady() {
			m.terminal.SetSize(80, 20)
			m.SetReady(true)
		}
		m.AddRawData(msg)
		m.terminal.AddMessage(msg)

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.Enter):
				port := m.GetPort()
				if m.input.Value() != "" && port != nil {
					inputStr := m.input.Value()
					payload, display, err := m.buildPayload(inputStr)
					if err != nil {
						m.terminal.AddMessage(consoleNotice(fmt.Sprintf("invalid hex input: %v", err)))
						return m, tea.Batch(cmds...)
					}

					if m.awaitReply {
						tx := components.DataReceivedMsg{
							Timestamp: time.Now(),
							Data:      display,
							IsTX:      true,
						}
						m.AddRawData(tx)
						m.terminal.AddMessage(tx)
						cmds = append(cmds, m.execCmd(port, payload))
					} else {
						cmds = append(cmds, m.writeCmd(port, payload, display))
					}

					m.input.AddToHistory(inputStr)
					m.input.SetValue("")
				}
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.Up):
				m.input.NavigateHistoryUp()
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.Down):
				m.input.NavigateHistoryDown()
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
				return m, tea.Batch(cmds...)
			}
		} else {
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.Cleanup()
				return m, tea.Quit

			case key.Matches(msg, m.keys.InsertMode):
				m.SetInputMode(models.InputModeInsert)
				m.input.Focus()
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.Clear):
				m.ClearData()
				m.terminal.Clear()

			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll

			case key.Matches(msg, m.keys.ToggleHex):
				m.terminal.ToggleHex()
				m.terminal.RefreshDisplay(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleASCII):
				m.terminal.ToggleASCII()
				m.terminal.RefreshDisplay(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleTimestamps):
				m.terminal.ToggleTimestamps()
				m.terminal.RefreshDisplay(m.GetRawData())

			case key.Matches(msg, m.keys.GotoTop):
				m.terminal.GotoTop()

			case key.Matches(msg, m.keys.GotoBottom):
				m.terminal.GotoBottom()

			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
			}
		}
	}

	// Only feed the input field while composing.
	var cmd tea.Cmd
	if m.IsInInsertMode() {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch msg.(type) {
	case tea.WindowSizeMsg:
		_, cmd = m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *consoleModel) View() string {
	var content string
	if m.IsReady() {
		content = m.terminal.View()
	} else {
		content = "Initializing..."
	}

	inputMode := m.GetInputMode().String()
	input := m.input.ViewWithMode(inputMode, m.IsInInsertMode())

	sendingMode := m.input.GetSendingMode().String()
	timestamp := time.Now().Format("15:04:05")
	statusBar := m.statusBar.ComprehensiveStatusBar(inputMode, sendingMode, m.IsConnected(), timestamp)

	contentWithBorder := styles.ContentBorderStyle.Render(content)

	if m.help.ShowAll {
		helpView := styles.HelpStyle.Render(m.help.View(m.keys))
		return lipgloss.JoinVertical(
			lipgloss.Left,
			contentWithBorder,
			helpView,
			input,
			statusBar,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		input,
		statusBar,
	)
}

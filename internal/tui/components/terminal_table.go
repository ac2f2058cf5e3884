package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeffvalk/serialio/internal/tui/colors"
)

type ViewMode int

const (
	ViewModeFollow ViewMode = iota
	ViewModeVisual
)

func (v ViewMode) String() string {
	switch v {
	case ViewModeVisual:
		return "VISUAL"
	default:
		return "FOLLOW"
	}
}

// TerminalTable is a scrollback of exchanges rendered as table rows. In
// follow mode the newest row is kept in view; visual mode focuses the
// table so the row cursor can be moved for inspection.
type TerminalTable struct {
	table     table.Model
	formatter *DataFormatter
	viewMode  ViewMode
	rawData   []DataReceivedMsg
}

func NewTerminalTable(width, height int) *TerminalTable {
	t := table.New(
		table.WithFocused(false),
		table.WithHeight(height),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colors.Subtext0).
		BorderBottom(true).
		Bold(true).
		Foreground(colors.Text)
	s.Selected = s.Selected.
		Foreground(colors.Text).
		Background(colors.Surface1).
		Bold(false)
	t.SetStyles(s)

	tt := &TerminalTable{
		table:     t,
		formatter: NewDataFormatter(true, true), // Default: show both hex and ASCII
		viewMode:  ViewModeFollow,
	}
	tt.updateColumns(width)
	return tt
}

func (tt *TerminalTable) SetSize(width, height int) {
	tt.updateColumns(width)
	tt.table.SetHeight(height)
	tt.table.SetWidth(width)
	tt.table.UpdateViewport()
}

// updateColumns lays the columns out for the current display mode. The
// time, direction and byte-count columns are fixed width; the data
// columns share whatever remains.
func (tt *TerminalTable) updateColumns(width int) {
	mode := tt.formatter.GetDisplayMode()

	if width < 60 {
		width = 60
	}

	const (
		timeWidth  = 14 // fits "15:04:05.000"
		dirWidth   = 4
		bytesWidth = 6
	)

	reserved := dirWidth + bytesWidth + 10
	if mode.ShowTimestamps {
		reserved += timeWidth
	}
	remaining := width - reserved
	if remaining < 20 {
		remaining = 20
	}

	var columns []table.Column
	if mode.ShowTimestamps {
		columns = append(columns, table.Column{Title: "Time", Width: timeWidth})
	}
	columns = append(columns, table.Column{Title: "↕", Width: dirWidth})

	switch {
	case mode.ShowHex && mode.ShowASCII:
		hexWidth := (remaining * 7) / 10
		asciiWidth := remaining - hexWidth
		if asciiWidth < 10 {
			asciiWidth = 10
		}
		columns = append(columns,
			table.Column{Title: "Hex", Width: hexWidth},
			table.Column{Title: "ASCII", Width: asciiWidth})
	case mode.ShowHex:
		columns = append(columns, table.Column{Title: "Hex", Width: remaining})
	case mode.ShowASCII:
		columns = append(columns, table.Column{Title: "ASCII", Width: remaining})
	default:
		columns = append(columns, table.Column{Title: "Data", Width: remaining})
	}
	columns = append(columns, table.Column{Title: "Bytes", Width: bytesWidth})

	tt.table.SetColumns(columns)
	tt.table.UpdateViewport()
}

func (tt *TerminalTable) AddMessage(msg DataReceivedMsg) {
	tt.rawData = append(tt.rawData, msg)
	tt.refresh()
}

func (tt *TerminalTable) refresh() {
	rows := make([]table.Row, len(tt.rawData))
	for i, msg := range tt.rawData {
		rows[i] = tt.formatRow(msg)
	}
	tt.table.SetRows(rows)
	tt.table.UpdateViewport()
	if tt.viewMode == ViewModeFollow {
		tt.table.GotoBottom()
	}
}

func (tt *TerminalTable) formatRow(msg DataReceivedMsg) table.Row {
	mode := tt.formatter.GetDisplayMode()

	direction := "↙"
	if msg.IsTX {
		direction = "↗"
	}

	var row table.Row
	if mode.ShowTimestamps {
		row = append(row, msg.Timestamp.Format("15:04:05.000"))
	}
	row = append(row, direction)

	switch {
	case mode.ShowHex && mode.ShowASCII:
		row = append(row, fmt.Sprintf("% X", msg.Data), asciiString(msg.Data))
	case mode.ShowHex:
		row = append(row, fmt.Sprintf("% X", msg.Data))
	case mode.ShowASCII:
		row = append(row, asciiString(msg.Data))
	default:
		row = append(row, fmt.Sprintf("%d bytes", len(msg.Data)))
	}

	return append(row, fmt.Sprintf("%d", len(msg.Data)))
}

func (tt *TerminalTable) Clear() {
	tt.rawData = nil
	tt.table.SetRows([]table.Row{})
}

func (tt *TerminalTable) ToggleHex() {
	tt.formatter.ToggleHex()
	tt.updateColumns(tt.table.Width())
	tt.refresh()
}

func (tt *TerminalTable) ToggleASCII() {
	tt.formatter.ToggleASCII()
	tt.updateColumns(tt.table.Width())
	tt.refresh()
}

func (tt *TerminalTable) ToggleTimestamps() {
	tt.formatter.ToggleTimestamps()
	tt.updateColumns(tt.table.Width())
	tt.refresh()
}

func (tt *TerminalTable) GetViewMode() ViewMode {
	return tt.viewMode
}

func (tt *TerminalTable) SetViewMode(mode ViewMode) {
	tt.viewMode = mode
	if mode == ViewModeFollow {
		if len(tt.rawData) > 0 {
			tt.table.SetCursor(len(tt.rawData) - 1)
		}
		tt.table.GotoBottom()
		tt.table.Blur()
	} else {
		tt.table.Focus()
	}
	tt.table.UpdateViewport()
}

func (tt *TerminalTable) GotoTop() {
	tt.table.GotoTop()
}

func (tt *TerminalTable) GotoBottom() {
	tt.table.GotoBottom()
}

func (tt *TerminalTable) Update(msg tea.Msg) tea.Cmd {
	// Row navigation only applies in visual mode; follow mode pins the
	// cursor to the newest row.
	if tt.viewMode != ViewModeVisual {
		return nil
	}
	var cmd tea.Cmd
	tt.table, cmd = tt.table.Update(msg)
	return cmd
}

func (tt *TerminalTable) View() string {
	return tt.table.View()
}

package keys

import "github.com/charmbracelet/bubbles/key"

// ConsoleKeys includes terminal keys plus send/input functionality. The
// Up/Down bindings from TerminalKeys double as history navigation while
// the input field is focused.
type ConsoleKeys struct {
	TerminalKeys
	InsertMode     key.Binding
	Enter          key.Binding
	ToggleSendMode key.Binding
}

func NewConsoleKeys() ConsoleKeys {
	return ConsoleKeys{
		TerminalKeys: NewTerminalKeys(),
		InsertMode: key.NewBinding(
			key.WithKeys("i", "I"),
			key.WithHelp("i", "insert mode"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send message"),
		),
		ToggleSendMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle send mode"),
		),
	}
}

func (k ConsoleKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.InsertMode, k.Enter, k.Quit}
}

func (k ConsoleKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.InsertMode, k.Escape, k.Clear},
		{k.ToggleHex, k.ToggleASCII, k.ToggleTimestamps},
		{k.Enter, k.ToggleSendMode, k.Up, k.Down},
		{k.Help, k.Quit},
	}
}

package models

import (
	"context"
	"sync"

	"github.com/jeffvalk/serialio"
	"github.com/jeffvalk/serialio/internal/tui/components"
)

// InputMode is the vim-like input mode of a TUI session.
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	switch m {
	case InputModeInsert:
		return "INSERT"
	default:
		return "NORMAL"
	}
}

// ConnectionStatusMsg reports the outcome of the background open attempt.
type ConnectionStatusMsg struct {
	Connected bool
	Error     error
}

// Session is the shared state behind the listen and console programs: the
// open port, the accumulated exchanges, and the input mode. Everything the
// event handler goroutine touches is guarded by mu; the rest is only
// accessed from the bubbletea update loop.
type Session struct {
	port     serialio.Port
	portPath string

	connected bool
	rawData   []components.DataReceivedMsg
	err       error
	ready     bool

	inputMode InputMode

	formatter *components.DataFormatter

	cancel context.CancelFunc
	ctx    context.Context
	mu     sync.RWMutex
}

func NewSession(portPath string) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		portPath:  portPath,
		rawData:   make([]components.DataReceivedMsg, 0),
		inputMode: InputModeNormal,
		formatter: components.NewDataFormatter(true, true),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *Session) GetPort() serialio.Port {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.port
}

func (m *Session) SetPort(port serialio.Port) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.port = port
}

func (m *Session) GetPortPath() string {
	return m.portPath
}

func (m *Session) IsConnected() bool {
	return m.connected
}

func (m *Session) SetConnected(connected bool) {
	m.connected = connected
}

func (m *Session) GetError() error {
	return m.err
}

func (m *Session) SetError(err error) {
	m.err = err
}

func (m *Session) IsReady() bool {
	return m.ready
}

func (m *Session) SetReady(ready bool) {
	m.ready = ready
}

func (m *Session) GetRawData() []components.DataReceivedMsg {
	return m.rawData
}

func (m *Session) AddRawData(msg components.DataReceivedMsg) {
	m.rawData = append(m.rawData, msg)
}

func (m *Session) ClearData() {
	m.rawData = make([]components.DataReceivedMsg, 0)
}

func (m *Session) GetFormattedData() []string {
	return m.formatter.FormatMessages(m.rawData)
}

func (m *Session) FormatMessage(msg components.DataReceivedMsg) string {
	return m.formatter.FormatMessage(msg)
}

func (m *Session) GetFormatter() *components.DataFormatter {
	return m.formatter
}

func (m *Session) GetInputMode() InputMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode
}

func (m *Session) SetInputMode(mode InputMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
}

func (m *Session) IsInInsertMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode == InputModeInsert
}

func (m *Session) GetContext() context.Context {
	return m.ctx
}

// Cleanup stops the session's goroutines and closes the port. Safe to call
// more than once.
func (m *Session) Cleanup() {
	if m.cancel != nil {
		m.cancel()
	}

	m.mu.Lock()
	if m.port != nil {
		m.port.Close()
		m.port = nil
	}
	m.mu.Unlock()
}

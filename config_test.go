package serialio

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaudRate != 115200 {
		t.Errorf("Expected BaudRate 115200, got %d", config.BaudRate)
	}

	if config.DataBits != 8 {
		t.Errorf("Expected DataBits 8, got %d", config.DataBits)
	}

	if config.StopBits != 1 {
		t.Errorf("Expected StopBits 1, got %d", config.StopBits)
	}

	if config.Parity != ParityNone {
		t.Errorf("Expected Parity None, got %v", config.Parity)
	}

	if config.OpenTimeout != 2*time.Second {
		t.Errorf("Expected OpenTimeout 2s, got %v", config.OpenTimeout)
	}

	if config.Handler != nil {
		t.Error("Expected no default handler")
	}
}

func TestFunctionalOptions(t *testing.T) {
	config := DefaultConfig()

	err := WithBaudRate(9600)(&config)
	if err != nil {
		t.Errorf("WithBaudRate failed: %v", err)
	}
	if config.BaudRate != 9600 {
		t.Errorf("Expected BaudRate 9600, got %d", config.BaudRate)
	}

	err = WithDataBits(7)(&config)
	if err != nil {
		t.Errorf("WithDataBits failed: %v", err)
	}
	if config.DataBits != 7 {
		t.Errorf("Expected DataBits 7, got %d", config.DataBits)
	}

	err = WithStopBits(2)(&config)
	if err != nil {
		t.Errorf("WithStopBits failed: %v", err)
	}
	if config.StopBits != 2 {
		t.Errorf("Expected StopBits 2, got %d", config.StopBits)
	}

	err = WithParity(ParityEven)(&config)
	if err != nil {
		t.Errorf("WithParity failed: %v", err)
	}
	if config.Parity != ParityEven {
		t.Errorf("Expected Parity Even, got %v", config.Parity)
	}

	err = WithOpenTimeout(500 * time.Millisecond)(&config)
	if err != nil {
		t.Errorf("WithOpenTimeout failed: %v", err)
	}
	if config.OpenTimeout != 500*time.Millisecond {
		t.Errorf("Expected OpenTimeout 500ms, got %v", config.OpenTimeout)
	}

	err = WithHandler(func(Event) {})(&config)
	if err != nil {
		t.Errorf("WithHandler failed: %v", err)
	}
	if config.Handler == nil {
		t.Error("Expected handler to be set")
	}
}

func TestWithBytesHandler(t *testing.T) {
	config := DefaultConfig()

	var got []byte
	err := WithBytesHandler(func(data []byte) { got = data })(&config)
	if err != nil {
		t.Errorf("WithBytesHandler failed: %v", err)
	}
	if config.Handler == nil {
		t.Fatal("Expected handler to be set")
	}

	config.Handler(Event{Data: []byte{1, 2, 3}})
	if string(got) != string([]byte{1, 2, 3}) {
		t.Errorf("Expected wrapped handler to receive bytes, got %v", got)
	}
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		want error
	}{
		{"zero baud rate", WithBaudRate(0), ErrInvalidBaudRate},
		{"negative baud rate", WithBaudRate(-9600), ErrInvalidBaudRate},
		{"data bits too low", WithDataBits(4), ErrInvalidConfig},
		{"data bits too high", WithDataBits(9), ErrInvalidConfig},
		{"zero stop bits", WithStopBits(0), ErrInvalidConfig},
		{"three stop bits", WithStopBits(3), ErrInvalidConfig},
		{"parity out of range", WithParity(Parity(99)), ErrInvalidConfig},
		{"negative open timeout", WithOpenTimeout(-time.Second), ErrInvalidConfig},
		{"nil handler", WithHandler(nil), ErrInvalidConfig},
		{"nil bytes handler", WithBytesHandler(nil), ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			err := tt.opt(&config)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if err != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNonStandardBaudRateAccepted(t *testing.T) {
	// Option validation only rejects nonsensical rates; whether a rate is
	// achievable is the transport's call.
	config := DefaultConfig()
	if err := WithBaudRate(123456)(&config); err != nil {
		t.Errorf("Expected non-standard rate to pass option validation, got %v", err)
	}
}

func TestParityString(t *testing.T) {
	tests := []struct {
		parity Parity
		letter string
	}{
		{ParityNone, "N"},
		{ParityOdd, "O"},
		{ParityEven, "E"},
		{ParityMark, "M"},
		{ParitySpace, "S"},
		{Parity(99), "N"},
	}
	for _, tt := range tests {
		if got := tt.parity.String(); got != tt.letter {
			t.Errorf("Expected %s for parity %d, got %s", tt.letter, int(tt.parity), got)
		}
	}
}

func TestConfigMode(t *testing.T) {
	config := DefaultConfig()
	config.BaudRate = 19200
	config.DataBits = 7
	config.StopBits = 2
	config.Parity = ParityOdd

	mode := config.mode()
	if mode.BaudRate != 19200 || mode.DataBits != 7 || mode.StopBits != 2 || mode.Parity != ParityOdd {
		t.Errorf("mode() did not carry configuration over: %+v", mode)
	}
}

package serialio

import "time"

// Config holds the configuration applied when opening a port
type Config struct {
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      Parity
	OpenTimeout time.Duration // bound on acquiring the endpoint
	Handler     Handler       // initial data handler; nil installs a no-op
}

// Option is a functional option for configuring a port at open time
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:    115200,
		DataBits:    8,
		StopBits:    1,
		Parity:      ParityNone,
		OpenTimeout: 2 * time.Second,
	}
}

// mode extracts the transport line mode from the configuration.
func (c Config) mode() Mode {
	return Mode{
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
		StopBits: c.StopBits,
		Parity:   c.Parity,
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if rate <= 0 {
			return ErrInvalidBaudRate
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits (1 or 2)
func WithStopBits(bits int) Option {
	return func(c *Config) error {
		if bits != 1 && bits != 2 {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		if parity < ParityNone || parity > ParitySpace {
			return ErrInvalidConfig
		}
		c.Parity = parity
		return nil
	}
}

// WithOpenTimeout bounds how long opening may block acquiring the endpoint
func WithOpenTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < 0 {
			return ErrInvalidConfig
		}
		c.OpenTimeout = timeout
		return nil
	}
}

// WithHandler installs h as the port's data handler before any data can be
// delivered, so no notification is lost to the default no-op handler
func WithHandler(h Handler) Option {
	return func(c *Config) error {
		if h == nil {
			return ErrInvalidConfig
		}
		c.Handler = h
		return nil
	}
}

// WithBytesHandler is WithHandler for callbacks that only want the bytes
func WithBytesHandler(fn func(data []byte)) Option {
	return func(c *Config) error {
		if fn == nil {
			return ErrInvalidConfig
		}
		c.Handler = func(ev Event) {
			fn(ev.Data)
		}
		return nil
	}
}

package serialio

import "errors"

// Predefined error types for robust error handling
var (
	ErrUnknownPort           = errors.New("unknown port")
	ErrPortBusy              = errors.New("port busy")
	ErrPermissionDenied      = errors.New("permission denied accessing port")
	ErrUnsupportedParameters = errors.New("unsupported port parameters")
	ErrPortClosed            = errors.New("port is closed")
	ErrInvalidBaudRate       = errors.New("invalid baud rate")
	ErrInvalidConfig         = errors.New("invalid port configuration")

	// Payload coercion errors
	ErrUnsupportedPayload = errors.New("unsupported payload type")

	// Transport errors
	ErrTransportClosed = errors.New("transport endpoint is closed")
)

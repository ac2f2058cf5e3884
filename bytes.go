package serialio

import "fmt"

// ToBytes converts a payload value into the byte slice that would be
// transmitted on the wire. The accepted kinds are:
//
//   - []byte: returned unchanged
//   - string: the string's UTF-8 bytes
//   - []int: one byte per element, keeping the low 8 bits of each
//   - int: a single byte, keeping the low 8 bits
//   - byte: a single byte
//
// Values outside 0-255 in the numeric forms are truncated to their low
// 8 bits rather than rejected. Any other type yields
// ErrUnsupportedPayload naming the offending Go type.
func ToBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case []int:
		buf := make([]byte, len(v))
		for i, n := range v {
			buf[i] = byte(n)
		}
		return buf, nil
	case int:
		return []byte{byte(v)}, nil
	case byte:
		return []byte{v}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPayload, value)
	}
}

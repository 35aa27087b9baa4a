package khawasu

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Value byte layouts per action type. This is the codec boundary: above it
// the bridge works with typed values, below it the driver moves raw bytes.
//
//	relay, button            1 byte, 0 or 1
//	range, temperature,
//	humidity                 4 bytes, little-endian IEEE 754 float32
//	immediate                no payload
const floatValueSize = 4

// EncodeValue converts a typed value into the byte layout declared by the
// action type. Numeric inputs arrive as float64 after JSON decoding; bool
// is accepted for the switch-like types.
func EncodeValue(t ActionType, value any) ([]byte, error) {
	switch t {
	case ActionRelay, ActionButton:
		on, err := toBool(value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s value: %w", t, err)
		}
		if on {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case ActionRange, ActionTemperature, ActionHumidity:
		f, err := toFloat(value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s value: %w", t, err)
		}
		buf := make([]byte, floatValueSize)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(f)))
		return buf, nil

	case ActionImmediate:
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

// DecodeValue converts raw driver bytes into the typed value declared by
// the action type.
func DecodeValue(t ActionType, data []byte) (any, error) {
	switch t {
	case ActionRelay, ActionButton:
		if len(data) < 1 {
			return nil, fmt.Errorf("decoding %s value: empty payload", t)
		}
		return data[0] != 0, nil

	case ActionRange, ActionTemperature, ActionHumidity:
		if len(data) < floatValueSize {
			return nil, fmt.Errorf("decoding %s value: got %d bytes, want %d", t, len(data), floatValueSize)
		}
		bits := binary.LittleEndian.Uint32(data)
		return float64(math.Float32frombits(bits)), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case int:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot convert %T to bool", value)
	}
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float", value)
	}
}

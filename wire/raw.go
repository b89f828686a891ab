package wire

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

// RawBytes is a byte buffer that may arrive on the wire in any of three
// shapes: a base64 string, a JSON array of numbers, or raw bytes handed over
// by the transport. All three unmarshal to the same buffer.
type RawBytes []byte

// UnmarshalJSON accepts either a base64-encoded string or an array of byte
// values.
func (rb *RawBytes) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty raw byte payload")
	}

	if data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return errors.Wrap(err, "raw bytes: invalid string payload")
		}
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return errors.Wrap(err, "raw bytes: unreadable base64")
		}
		*rb = decoded
		return nil
	}

	var numbers []float64
	if err := json.Unmarshal(data, &numbers); err != nil {
		return errors.Wrap(err, "raw bytes: payload is neither base64 nor numeric array")
	}
	decoded := make([]byte, len(numbers))
	for i, n := range numbers {
		if n < 0 || n > 255 {
			return errors.Errorf("raw bytes: value %v at index %d out of byte range", n, i)
		}
		decoded[i] = byte(n)
	}
	*rb = decoded
	return nil
}

// MarshalJSON always emits base64, the compact form.
func (rb RawBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(rb))
}

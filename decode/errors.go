package decode

import (
	"fmt"

	"github.com/pkg/errors"
)

// StructuralError reports a malformed or structurally invalid payload:
// missing required fields, zero-length buffers, layouts that cannot be read.
// It is terminal for the single request and never tears down a subscription.
type StructuralError struct {
	msg string
}

func (e *StructuralError) Error() string {
	return "structurally invalid payload: " + e.msg
}

func newStructuralErrorf(format string, args ...interface{}) error {
	return &StructuralError{msg: fmt.Sprintf(format, args...)}
}

// IsStructuralError reports whether err is (or wraps) a StructuralError.
func IsStructuralError(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

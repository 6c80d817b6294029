// Package outcome defines the typed result every command operation returns.
// Precondition failures travel in Err with a short message for display; the
// caller never has to recover from a panic in a nested subsystem.
package outcome

import (
	"errors"

	"github.com/talgya/capitol/internal/character"
)

// Result is the answer to a command such as proposing a law or running a
// campaign activity.
type Result struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Delta   character.Delta `json:"delta"`
	Err     error           `json:"-"`
}

// OK builds a successful result carrying a delta for the driver to apply.
func OK(message string, delta character.Delta) Result {
	return Result{Success: true, Message: message, Delta: delta}
}

// Fail builds a failed result. The message is the error text.
func Fail(err error) Result {
	return Result{Message: err.Error(), Err: err}
}

// Is reports whether the result failed with target.
func (r Result) Is(target error) bool {
	return r.Err != nil && errors.Is(r.Err, target)
}

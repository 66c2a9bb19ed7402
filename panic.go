package luasync

import (
	"fmt"
	"log/slog"
	"strings"
)

// A PanicError describes a panic recovered from a [Task].
// The task that panicked has been terminated; the rest of the executor
// keeps running.
type PanicError struct {
	// Path is the path of the task that panicked.
	Path string

	value any
	stack []byte
}

// Value returns the recovered panic value.
func (e *PanicError) Value() any {
	return e.value
}

// Stack returns the stack trace captured when the panic was recovered.
func (e *PanicError) Stack() []byte {
	return e.stack
}

func (e *PanicError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "task %s: panic: %v", e.Path, e.value)
	if len(e.stack) != 0 {
		b.WriteString("\n\n")
		b.Write(e.stack)
	}
	return b.String()
}

// Unwrap returns the panic value if it is an error, or nil.
func (e *PanicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

func logPanic(err *PanicError) {
	slog.Error("task panicked", "task", err.Path, "panic", err.value)
}

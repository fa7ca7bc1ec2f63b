package interpreter

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of interpreter error.
type ErrorType string

const (
	// Fatal errors - the update cycle must stop
	ErrorCallStackOverflow ErrorType = "CALL_STACK_OVERFLOW"

	// Non-fatal errors - logged, then execution continues
	ErrorLabelNotFound    ErrorType = "LABEL_NOT_FOUND"
	ErrorEvalFailed       ErrorType = "EVAL_FAILED"
	ErrorDivisionByZero   ErrorType = "DIVISION_BY_ZERO"
	ErrorMissingReference ErrorType = "MISSING_REFERENCE"
)

// ErrCallStackOverflow is matched with errors.Is against a call-depth overflow.
var ErrCallStackOverflow = errors.New("call stack overflow")

// RuntimeError represents an error raised while running a command list.
type RuntimeError struct {
	Type    ErrorType
	Message string
	Depth   int
	Index   int // -1 when not tied to a command
	Code    int
	Err     error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("[%s] %s (depth %d, index %d, code %d)", e.Type, e.Message, e.Depth, e.Index, e.Code)
	}
	return fmt.Sprintf("[%s] %s (depth %d)", e.Type, e.Message, e.Depth)
}

// Unwrap returns the underlying sentinel or cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsFatal returns true if the error must end the update cycle.
func (e *RuntimeError) IsFatal() bool {
	return e.Type == ErrorCallStackOverflow
}

// NewRuntimeError creates a new RuntimeError not tied to a command.
func NewRuntimeError(errType ErrorType, message string, depth int) *RuntimeError {
	return &RuntimeError{
		Type:    errType,
		Message: message,
		Depth:   depth,
		Index:   -1,
	}
}

// recoverError logs a non-fatal error raised by the current command and hands
// it to the error handler. Execution continues.
func (in *Interpreter) recoverError(errType ErrorType, message string, cause error) {
	e := &RuntimeError{Type: errType, Message: message, Depth: in.depth, Index: -1, Err: cause}
	if in.index >= 0 && in.index < len(in.list) {
		e.Index = in.index
		e.Code = int(in.list[in.index].Code)
	}
	in.log.Warn("runtime error", "error", e, "event", in.eventID)
	if in.onError != nil {
		in.onError(e)
	}
}

// NewCallStackOverflowError creates the fatal overflow error for depth.
func NewCallStackOverflowError(depth int) *RuntimeError {
	e := NewRuntimeError(ErrorCallStackOverflow,
		fmt.Sprintf("common event nesting depth %d reaches maximum %d", depth, MaxDepth), depth)
	e.Err = ErrCallStackOverflow
	return e
}

// IsFatal reports whether err (or anything it wraps) is a fatal RuntimeError.
func IsFatal(err error) bool {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return rerr.IsFatal()
	}
	return false
}

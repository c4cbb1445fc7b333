package executor

import "fmt"

// Kind classifies terminal failures of an executor operation.
type Kind int

const (
	// KindHTTPStatus marks a non-2xx response where failure is not retryable.
	KindHTTPStatus Kind = iota
	// KindInvalidJobID marks a successful submission without a usable requestId.
	KindInvalidJobID
	// KindEmptyBody marks a success status carrying no payload.
	KindEmptyBody
	// KindNetwork marks a transport-level fault.
	KindNetwork
	// KindExecution marks any other fault, including payload decoding.
	KindExecution
	// KindPollTimeout marks the overall polling deadline being exceeded.
	KindPollTimeout
)

// Error is the classified failure carried by an error outcome.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

type state int

const (
	stateLoading state = iota
	stateSuccess
	stateError
)

// Outcome is the tri-state result of an executor operation. Exactly one
// variant is active; the loading variant is only ever an intermediate value
// observed in a stream, executor entry points always resolve to success or
// error.
type Outcome[T any] struct {
	state state
	data  T
	err   *Error
}

// Pending returns the loading variant.
func Pending[T any]() Outcome[T] {
	return Outcome[T]{state: stateLoading}
}

// Resolve returns a success outcome carrying data.
func Resolve[T any](data T) Outcome[T] {
	return Outcome[T]{state: stateSuccess, data: data}
}

// Fail returns an error outcome with the given classification.
func Fail[T any](kind Kind, format string, args ...interface{}) Outcome[T] {
	return Outcome[T]{state: stateError, err: &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// FailWith returns an error outcome reusing an existing classified error,
// e.g. when a repository propagates an executor failure under a new type.
func FailWith[T any](err *Error) Outcome[T] {
	return Outcome[T]{state: stateError, err: err}
}

func (o Outcome[T]) IsLoading() bool { return o.state == stateLoading }
func (o Outcome[T]) IsSuccess() bool { return o.state == stateSuccess }
func (o Outcome[T]) IsError() bool   { return o.state == stateError }

// Data returns the success payload; the zero value when not successful.
func (o Outcome[T]) Data() T {
	return o.data
}

// Err returns the classified failure, or nil when not an error outcome.
func (o Outcome[T]) Err() *Error {
	return o.err
}

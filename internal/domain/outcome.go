package domain

// Outcome carries the result of an optional external stage: either a value or a
// *GateError, never both. Consumers must check OK (or Err) before using Value.
type Outcome[T any] struct {
	value T
	err   *GateError
}

// Succeeded wraps a successful value.
func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{value: v}
}

// Failed wraps a gate failure. A nil err is normalized to an Invalid gate error.
func Failed[T any](err *GateError) Outcome[T] {
	if err == nil {
		err = &GateError{Kind: GateInvalid, Op: "unknown"}
	}
	return Outcome[T]{err: err}
}

// OK reports whether the stage produced a value.
func (o Outcome[T]) OK() bool { return o.err == nil }

// Value returns the value and whether it is present.
func (o Outcome[T]) Value() (T, bool) { return o.value, o.err == nil }

// Err returns the gate failure, or nil on success.
func (o Outcome[T]) Err() *GateError { return o.err }

// Result converts the outcome into the usual (value, error) pair.
// The returned error is a true nil interface on success.
func (o Outcome[T]) Result() (T, error) {
	if o.err != nil {
		var zero T
		return zero, o.err
	}
	return o.value, nil
}

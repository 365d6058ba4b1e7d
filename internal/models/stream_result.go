package models

// StreamResult holds either a value or an error from a streaming operation,
// such as the per-season ratings fan-out. Exactly one of the two fields is
// meaningful; Failed reports which.
type StreamResult[T any] struct {
	Value T
	Err   error
}

// Failed reports whether the result carries an error instead of a value.
func (r StreamResult[T]) Failed() bool {
	return r.Err != nil
}

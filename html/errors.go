package html

import "fmt"

// StateError reports a Parser method called outside the lifecycle state
// that permits it (NEW -> RUNNING -> FINISHED -> CONVERTED), modeled on
// dom.TreeError's Name+Message shape.
type StateError struct {
	Name    string
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

func errIllegalState(message string) *StateError {
	return &StateError{Name: "IllegalState", Message: message}
}

// DecodeError reports byte input that cannot be decoded under the chosen
// or sniffed encoding.
type DecodeError struct {
	Message string
}

func (e *DecodeError) Error() string {
	return "DecodeError: " + e.Message
}

// TypeError reports a Process() call given neither a string nor []byte.
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string {
	return "TypeError: " + e.Message
}

package dom

import "fmt"

// TreeError is the error taxonomy for dom: a name and a message, the same
// shape as the prior *DOMError (dom/errors.go), renamed to the
// conceptual names this package uses instead of WHATWG's exception names.
type TreeError struct {
	Name    string
	Message string
}

func (e *TreeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// ErrStructural reports a cycle, a cross-tree attachment, an attempt to
// attach a Document/Fragment as a child, or an operation on a detached
// anchor.
func ErrStructural(message string) *TreeError {
	return &TreeError{Name: "StructuralError", Message: message}
}

// ErrOrdering reports an Ordering value not permitted for a node's kind.
func ErrOrdering(message string) *TreeError {
	return &TreeError{Name: "InvalidOrdering", Message: message}
}

// ErrNotFound reports a key/index lookup miss on an AttrList.
func ErrNotFound(message string) *TreeError {
	return &TreeError{Name: "NotFound", Message: message}
}

// ErrIndexOutOfBounds reports positional access past the end of an
// AttrList or a children collection.
func ErrIndexOutOfBounds(message string) *TreeError {
	return &TreeError{Name: "IndexOutOfBounds", Message: message}
}

// ErrIteratorExists reports a second iterator requested on a view that
// allows only one live cursor at a time.
func ErrIteratorExists(message string) *TreeError {
	return &TreeError{Name: "IteratorExists", Message: message}
}

// ErrDanglingHandle reports a Handle whose Tree has been Discarded, a
// Handle that does not name a live slot of the Tree it is used with, or
// the zero Handle. A Handle genuinely
// issued by a different Tree is reported as StructuralError instead when
// presented as a would-be child to an attach operation (see
// Tree.resolveChild) — it is foreign, not stale.
func ErrDanglingHandle(message string) *TreeError {
	return &TreeError{Name: "DanglingHandle", Message: message}
}

// ErrTypeMismatch reports a value of the wrong kind supplied to an
// operation (e.g. attributes given as a type an API explicitly rejects).
func ErrTypeMismatch(message string) *TreeError {
	return &TreeError{Name: "TypeMismatch", Message: message}
}

// Package dom implements the arena-backed document tree: node storage with
// stable generational handles, ordered attribute lists, qualified names and
// the per-tree namespace registry, node iteration, and HTML/XML
// serialization. It is the substrate the html and xml packages build on and
// the css package matches selectors against.
package dom

// NodeKind identifies the payload carried by a Node, mirroring the seven
// node kinds of the data model: a tree has exactly one Document or Fragment
// root, and every other node is one of the remaining five kinds.
type NodeKind uint8

const (
	// KindDocument is the root of a full parse. Exactly one per tree when
	// present; it has no parent and cannot be a child.
	KindDocument NodeKind = iota + 1
	// KindFragment is the root of a fragment parse, an alternative to
	// KindDocument. Like KindDocument, it can be neither attached nor
	// detached.
	KindFragment
	// KindDoctype carries name/public-id/system-id.
	KindDoctype
	// KindComment carries comment contents.
	KindComment
	// KindText carries text contents, coalesced by the HTML sink.
	KindText
	// KindElement carries a qualified name, an attribute list, and the
	// template/MathML-integration-point flags.
	KindElement
	// KindPI carries a processing-instruction target and data.
	KindPI
)

// String returns the identifier used in diagnostics.
func (k NodeKind) String() string {
	switch k {
	case KindDocument:
		return "#document"
	case KindFragment:
		return "#fragment"
	case KindDoctype:
		return "#doctype"
	case KindComment:
		return "#comment"
	case KindText:
		return "#text"
	case KindElement:
		return "#element"
	case KindPI:
		return "#processing-instruction"
	default:
		return "#unknown"
	}
}

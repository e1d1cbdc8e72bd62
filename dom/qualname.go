package dom

import "sort"

// Well-known short namespace aliases recognized by QName. Grounded on the
// teacher's HTMLNamespace constant (dom/document.go) and generalized to the
// full alias table this module requires.
const (
	NamespaceHTML   = "http://www.w3.org/1999/xhtml"
	NamespaceXML    = "http://www.w3.org/XML/1998/namespace"
	NamespaceXMLNS  = "http://www.w3.org/2000/xmlns/"
	NamespaceSVG    = "http://www.w3.org/2000/svg"
	NamespaceMathML = "http://www.w3.org/1998/Math/MathML"
)

var shortNamespaceAliases = map[string]string{
	"html":   NamespaceHTML,
	"xhtml":  NamespaceHTML,
	"xml":    NamespaceXML,
	"xmlns":  NamespaceXMLNS,
	"svg":    NamespaceSVG,
	"mathml": NamespaceMathML,
}

// QName is a qualified name: an optional prefix, a namespace URI, and a
// local name. Equality and hashing are component-wise on (namespace, local);
// the prefix is preserved for serialization but never affects equality.
// Ordering is lexicographic on (namespace, local, prefix).
type QName struct {
	Prefix    string
	Namespace string
	Local     string
}

// QN builds a short-form QName: empty namespace, no prefix. Matches
// QualName(local) from this package.
func QN(local string) QName {
	return QName{Local: local}
}

// QNamespace resolves a short namespace alias (html, xhtml, xml, xmlns, svg,
// mathml) to its full URI, or returns ns unchanged if it is not a known
// alias — an unrecognized short name is treated as a literal namespace URI.
func QNamespace(ns string) string {
	if full, ok := shortNamespaceAliases[ns]; ok {
		return full
	}
	return ns
}

// QNameNS builds a QName from a possibly-aliased namespace, a prefix, and a
// local name.
func QNameNS(prefix, ns, local string) QName {
	return QName{Prefix: prefix, Namespace: QNamespace(ns), Local: local}
}

// Equal reports component-wise equality on (namespace, local); the prefix is
// ignored, per this package.
func (q QName) Equal(other QName) bool {
	return q.Namespace == other.Namespace && q.Local == other.Local
}

// Less orders QNames lexicographically on (namespace, local, prefix), used
// by AttrList.Sort.
func (q QName) Less(other QName) bool {
	if q.Namespace != other.Namespace {
		return q.Namespace < other.Namespace
	}
	if q.Local != other.Local {
		return q.Local < other.Local
	}
	return q.Prefix < other.Prefix
}

// String renders the qualified name in prefix:local form when a prefix is
// present (serialization form), else just the local name.
func (q QName) String() string {
	if q.Prefix != "" {
		return q.Prefix + ":" + q.Local
	}
	return q.Local
}

// namespaces is the per-tree prefix→URI registry described in this package's
// "Tree namespaces": populated whenever a qualified name carrying both a
// non-empty prefix and non-empty namespace is attached to an Element.
type namespaces struct {
	byPrefix map[string]string
}

func newNamespaces() *namespaces {
	return &namespaces{byPrefix: make(map[string]string)}
}

func (n *namespaces) observe(q QName) {
	if q.Prefix != "" && q.Namespace != "" {
		n.byPrefix[q.Prefix] = q.Namespace
	}
}

func (n *namespaces) lookup(prefix string) (string, bool) {
	uri, ok := n.byPrefix[prefix]
	return uri, ok
}

// snapshot returns a copy of the registry for Tree.Namespaces(), so callers
// cannot mutate the tree's own map.
func (n *namespaces) snapshot() map[string]string {
	out := make(map[string]string, len(n.byPrefix))
	for k, v := range n.byPrefix {
		out[k] = v
	}
	return out
}

func (n *namespaces) prefixes() []string {
	out := make([]string, 0, len(n.byPrefix))
	for k := range n.byPrefix {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

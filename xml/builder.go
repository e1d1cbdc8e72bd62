// Package xml implements the XML tree-construction sink from this package:
// a streaming Parser with the same NEW -> RUNNING -> FINISHED -> CONVERTED
// lifecycle as package html, driving encoding/xml's Decoder token-by-token
// into a dom.Tree. Each prefixed element or attribute name is registered in
// the tree's namespace map as its element is created; an xmlns:p
// declaration whose prefix p no element or attribute name uses is not
// registered.
package xml

import (
	"regexp"
	"strings"

	"github.com/htmlarena/htmlarena/dom"
)

// ParseOptions mirrors this package's XML configuration knobs.
type ParseOptions struct {
	ExactErrors bool
	DiscardBOM  bool
	Profile     string
}

// nsFrame holds the prefix->URI declarations introduced by one element,
// "" keying the default (unprefixed) namespace.
type nsFrame struct {
	decls map[string]string
}

// Builder is the XML sink: current-node tracking plus a namespace-scope
// stack, generalized from moznion-helium's TreeBuilder (tree.go) the same
// way html.Builder is, but against encoding/xml's token shapes instead of
// a SAX callback interface.
type Builder struct {
	tree *dom.Tree
	root dom.Node

	open    []dom.Node
	nsStack []nsFrame

	errs []string
	line int
}

func newBuilder() *Builder {
	tree := dom.New()
	return &Builder{tree: tree, root: dom.Wrap(tree.Root()), line: 1}
}

func (b *Builder) current() dom.Node {
	if len(b.open) == 0 {
		return b.root
	}
	return b.open[len(b.open)-1]
}

func (b *Builder) reportError(msg string) {
	b.errs = append(b.errs, msg)
}

func (b *Builder) pushNSFrame(decls map[string]string) {
	b.nsStack = append(b.nsStack, nsFrame{decls: decls})
}

func (b *Builder) popNSFrame() {
	if len(b.nsStack) > 0 {
		b.nsStack = b.nsStack[:len(b.nsStack)-1]
	}
}

// resolvePrefixForURI recovers the readable prefix text belonging to a
// resolved namespace URI by searching the scope stack from innermost
// outward. Needed because encoding/xml's Decoder resolves StartElement and
// Attr names to (URI, local) and discards the literal prefix.
func (b *Builder) resolvePrefixForURI(uri string) string {
	if uri == "" {
		return ""
	}
	for i := len(b.nsStack) - 1; i >= 0; i-- {
		for p, u := range b.nsStack[i].decls {
			if u == uri {
				return p
			}
		}
	}
	return ""
}

func declsFromAttrs(attrs []xmlAttr) map[string]string {
	decls := make(map[string]string)
	for _, a := range attrs {
		switch {
		case a.Space == "xmlns":
			decls[a.Local] = a.Value
		case a.Space == "" && a.Local == "xmlns":
			decls[""] = a.Value
		}
	}
	return decls
}

// xmlAttr is a namespace-resolution-agnostic view of an encoding/xml.Attr,
// kept separate so this file has no direct encoding/xml import (that lives
// in parser.go, which calls into these helpers).
type xmlAttr struct {
	Space, Local, Value string
}

func (b *Builder) resolveAttrQName(a xmlAttr) dom.QName {
	switch {
	case a.Space == "xmlns":
		return dom.QName{Prefix: "xmlns", Namespace: dom.NamespaceXMLNS, Local: a.Local}
	case a.Space == "" && a.Local == "xmlns":
		return dom.QN("xmlns")
	case a.Space != "":
		prefix := b.resolvePrefixForURI(a.Space)
		return dom.QNameNS(prefix, a.Space, a.Local)
	default:
		return dom.QN(a.Local)
	}
}

func (b *Builder) resolveElementQName(space, local string) dom.QName {
	if space == "" {
		return dom.QN(local)
	}
	prefix := b.resolvePrefixForURI(space)
	return dom.QNameNS(prefix, space, local)
}

func (b *Builder) startElement(space, local string, rawAttrs []xmlAttr) {
	decls := declsFromAttrs(rawAttrs)
	b.pushNSFrame(decls)

	name := b.resolveElementQName(space, local)
	attrs := make([]dom.Attr, 0, len(rawAttrs))
	for _, a := range rawAttrs {
		attrs = append(attrs, dom.Attr{Key: b.resolveAttrQName(a), Value: a.Value})
	}

	node, err := b.current().CreateElement(name, attrs, false, false, dom.Append)
	if err != nil {
		b.reportError(err.Error())
		return
	}
	b.open = append(b.open, node)
}

func (b *Builder) endElement() {
	if len(b.open) == 0 {
		b.reportError("unmatched end tag")
		return
	}
	b.open = b.open[:len(b.open)-1]
	b.popNSFrame()
}

func (b *Builder) charData(data string) {
	if data == "" {
		return
	}
	if err := b.current().AppendText(data); err != nil {
		b.reportError(err.Error())
	}
}

func (b *Builder) comment(data string) {
	if _, err := b.current().CreateComment(data, dom.Append); err != nil {
		b.reportError(err.Error())
	}
}

func (b *Builder) procInst(target, data string) {
	if _, err := b.current().CreatePI(target, data, dom.Append); err != nil {
		b.reportError(err.Error())
	}
}

var doctypeDirective = regexp.MustCompile(`(?s)^DOCTYPE\s+(\S+)(?:\s+PUBLIC\s+"([^"]*)"\s+"([^"]*)"|\s+SYSTEM\s+"([^"]*)")?`)

// directive handles encoding/xml's Directive token, recognizing a minimal
// DOCTYPE subset (name, optional PUBLIC/SYSTEM identifiers) and ignoring
// anything else (entity/element/attlist declarations are schema/DTD
// validation machinery, an explicit Non-goal).
func (b *Builder) directive(raw string) {
	raw = strings.TrimSpace(raw)
	m := doctypeDirective.FindStringSubmatch(raw)
	if m == nil {
		return
	}
	name, public, system := m[1], m[2], m[3]
	if system == "" {
		system = m[4]
	}
	if _, err := b.root.CreateDoctype(name, public, system, dom.Append); err != nil {
		b.reportError(err.Error())
	}
}

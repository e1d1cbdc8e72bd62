package html

import (
	"strings"

	"golang.org/x/net/html/atom"

	"github.com/htmlarena/htmlarena/dom"
)

// QuirksMode mirrors the three legacy rendering modes a doctype selects.
type QuirksMode int

const (
	QuirksOff QuirksMode = iota
	QuirksLimited
	QuirksFull
)

type insertionMode int

const (
	modeInitial insertionMode = iota
	modeBeforeHTML
	modeBeforeHead
	modeInHead
	modeAfterHead
	modeInBody
	modeText
	modeAfterBody
	modeAfterAfterBody
)

// blockAutoClose holds the elements that implicitly close an open <p> when
// they start, per the HTML5 "in body" insertion mode's p-autoclose rule.
var blockAutoClose = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Center: true, atom.Details: true, atom.Dialog: true, atom.Dir: true,
	atom.Div: true, atom.Dl: true, atom.Fieldset: true, atom.Figcaption: true,
	atom.Figure: true, atom.Footer: true, atom.Form: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true,
	atom.Hgroup: true, atom.Hr: true, atom.Main: true, atom.Menu: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Summary: true,
	atom.Table: true, atom.Ul: true,
}

// tableScopeAllowed holds the elements a table may legitimately parent
// directly; anything else started while the insertion point is inside a
// table (and not yet inside a cell) is foster-parented instead.
var tableScopeAllowed = map[atom.Atom]bool{
	atom.Caption: true, atom.Col: true, atom.Colgroup: true, atom.Tbody: true,
	atom.Td: true, atom.Tfoot: true, atom.Th: true, atom.Thead: true, atom.Tr: true,
	atom.Style: true, atom.Script: true, atom.Template: true,
}

// Builder is the HTML5 tree-construction sink: it turns tokenizer callbacks
// into dom.Tree mutations, tracking the open-element stack, insertion mode,
// quirks mode and parse errors the way moznion-helium's TreeBuilder tracks a
// "current node" across SAX callbacks, generalized to the arena's Node
// handles instead of a DTree of *Element pointers.
type Builder struct {
	tree *dom.Tree
	root dom.Node

	open []dom.Node // open-element stack; open[0] is <html> once created
	mode insertionMode
	// origMode is the insertion mode text mode should return to once the
	// current RCDATA/RAWTEXT element's end tag is seen.
	origMode insertionMode
	textTag  string

	quirks       QuirksMode
	quirksForced bool // fragment parsing fixes quirks mode; doctype can't override it

	templateDepth int
	formElement   dom.Node
	haveForm      bool

	errs []string
	line int

	opts ParseOptions
}

// ParseOptions mirrors this package's HTML configuration knobs.
type ParseOptions struct {
	FullDocument bool // false selects fragment parsing
	ExactErrors  bool
	DiscardBOM   bool
	Profile      string
	IframeSrcdoc bool
	DropDoctype  bool
	QuirksMode   QuirksMode
}

// DefaultParseOptions returns the options a bare Html()/Parse() call uses.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{FullDocument: true, QuirksMode: QuirksOff}
}

func newBuilder(opts ParseOptions) *Builder {
	var tree *dom.Tree
	if opts.FullDocument {
		tree = dom.New()
	} else {
		tree = dom.NewFragment()
	}
	b := &Builder{
		tree:   tree,
		root:   dom.Wrap(tree.Root()),
		mode:   modeInitial,
		quirks: opts.QuirksMode,
		opts:   opts,
		line:   1,
	}
	if !opts.FullDocument {
		// Fragment parsing starts as if a <body> were already open and
		// skips the head/html bootstrap modes entirely.
		b.mode = modeInBody
		b.open = append(b.open, b.root)
		b.quirksForced = true
	}
	return b
}

func (b *Builder) current() dom.Node {
	if len(b.open) == 0 {
		return b.root
	}
	return b.open[len(b.open)-1]
}

func (b *Builder) push(n dom.Node) {
	b.open = append(b.open, n)
}

// popThrough pops the open-element stack up to and including the nearest
// element named name, reporting whether one was found.
func (b *Builder) popThrough(name string) bool {
	for i := len(b.open) - 1; i >= 0; i-- {
		qn, err := b.open[i].Name()
		if err != nil {
			continue
		}
		if strings.EqualFold(qn.Local, name) {
			b.open = b.open[:i]
			return true
		}
	}
	return false
}

func (b *Builder) reportError(msg string) {
	b.errs = append(b.errs, msg)
}

// insertionParent resolves where a node being inserted right now actually
// attaches: ordinarily the current open element, but foster-parented in
// front of an open <table> when the insertion point is inside one and the
// incoming element isn't table-scope content (this package's foster
// parenting primitive, surfaced here via plain Attach/InsertBefore calls).
func (b *Builder) insertionParent(a atom.Atom) (parent dom.Node, before dom.Node, hasBefore bool) {
	cur := b.current()
	curAtom := elementAtom(cur)
	if (curAtom == atom.Table || curAtom == atom.Tbody || curAtom == atom.Tfoot ||
		curAtom == atom.Thead || curAtom == atom.Tr) && !tableScopeAllowed[a] {
		for i := len(b.open) - 1; i >= 0; i-- {
			if elementAtom(b.open[i]) == atom.Table {
				if p, ok := b.open[i].Parent(); ok {
					return p, b.open[i], true
				}
				break
			}
		}
	}
	return cur, dom.Node{}, false
}

func elementAtom(n dom.Node) atom.Atom {
	if !n.IsElement() {
		return 0
	}
	qn, err := n.Name()
	if err != nil {
		return 0
	}
	return atom.Lookup([]byte(qn.Local))
}

func isWhitespace(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\f', '\r':
		default:
			return false
		}
	}
	return true
}

// insertElement creates and attaches an element at the current insertion
// point (applying foster parenting where required), then pushes it onto
// the open-element stack when push is true (callers pass false for void and
// self-closing elements).
func (b *Builder) insertElement(name string, attrs []dom.Attr, push bool) (dom.Node, error) {
	a := atom.Lookup([]byte(name))
	parent, before, hasBefore := b.insertionParent(a)

	var node dom.Node
	var err error
	if hasBefore {
		node, err = before.CreateElement(dom.QN(name), attrs, false, false, dom.Before)
	} else {
		node, err = parent.CreateElement(dom.QN(name), attrs, false, false, dom.Append)
	}
	if err != nil {
		return dom.Node{}, err
	}
	if push {
		b.push(node)
	}
	return node, nil
}

// insertText appends character data at the insertion point, routed through
// the same foster-parenting rule as insertElement (character tokens inside a
// table that isn't yet in a cell land immediately before the table, not
// inside it) and through Tree.AppendText/AppendTextBeforeSibling so
// coalescing into a preceding Text sibling (this module S5's "ab" from two
// chunked "a"/"b" character tokens) happens in both the ordinary and
// foster-parented cases.
func (b *Builder) insertText(data string) error {
	if data == "" {
		return nil
	}
	parent, before, hasBefore := b.insertionParent(0)
	if hasBefore {
		return before.AppendTextBeforeSibling(data)
	}
	return parent.AppendText(data)
}

func (b *Builder) insertComment(data string) error {
	cur := b.current()
	_, err := cur.CreateComment(data, dom.Append)
	return err
}

// enterText switches the builder into RCDATA/RAWTEXT text mode, recording
// the mode to resume once tagName's end tag is seen.
func (b *Builder) enterText(returnMode insertionMode, tagName string) {
	b.origMode = returnMode
	b.mode = modeText
	b.textTag = tagName
}

// reopenHTML implements the "another <html> start tag seen" rule: add
// whichever attributes aren't already present on the existing root <html>
// element, never overwriting ones that are.
func (b *Builder) reopenHTML(attrs []dom.Attr) {
	if len(b.open) == 0 {
		return
	}
	root := b.open[0]
	al := root.Attrs()
	for _, a := range attrs {
		if _, _, ok := al.Find(a.Key, 0); !ok {
			al.Push(a.Key, a.Value)
		}
	}
}

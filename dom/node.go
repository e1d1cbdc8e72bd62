package dom

// Ordering selects where Node.Attach places a node relative to another,
// mirroring this package's Ordering enum.
type Ordering int

const (
	// Append places the node as the last child of the target.
	Append Ordering = iota
	// Prepend places the node as the first child of the target.
	Prepend
	// After places the node as the next sibling of the target.
	After
	// Before places the node as the previous sibling of the target.
	Before
)

// Node is the single typed-view layer over a Handle: one value type
// dispatching on NodeKind rather than the prior per-kind embedding
// (dom/node.go's Node/dom/comment.go's Comment/dom/text.go's Text/...).
// this package calls for exactly this collapse of the corpus's historically
// duplicated node/nodes/dom wrappers into one façade.
type Node struct {
	Handle
}

// Wrap adapts a raw Handle into the public Node façade.
func Wrap(h Handle) Node { return Node{h} }

func (n Node) tree() *Tree { return n.Handle.tree }

// Kind returns the node's kind, or an error if the handle is stale.
func (n Node) Kind() (NodeKind, error) { return n.tree().Kind(n.Handle) }

func (n Node) kindOrZero() NodeKind {
	k, err := n.Kind()
	if err != nil {
		return 0
	}
	return k
}

// IsDocument reports whether n is the Document root.
func (n Node) IsDocument() bool { return n.kindOrZero() == KindDocument }

// IsFragment reports whether n is the Fragment root.
func (n Node) IsFragment() bool { return n.kindOrZero() == KindFragment }

// IsDoctype reports whether n is a Doctype node.
func (n Node) IsDoctype() bool { return n.kindOrZero() == KindDoctype }

// IsComment reports whether n is a Comment node.
func (n Node) IsComment() bool { return n.kindOrZero() == KindComment }

// IsText reports whether n is a Text node.
func (n Node) IsText() bool { return n.kindOrZero() == KindText }

// IsElement reports whether n is an Element node.
func (n Node) IsElement() bool { return n.kindOrZero() == KindElement }

// IsProcessingInstruction reports whether n is a ProcessingInstruction node.
func (n Node) IsProcessingInstruction() bool { return n.kindOrZero() == KindPI }

// Parent returns n's parent, if any.
func (n Node) Parent() (Node, bool) {
	h, ok, err := n.tree().Parent(n.Handle)
	if err != nil || !ok {
		return Node{}, false
	}
	return Node{h}, true
}

// FirstChild returns n's first child, if any.
func (n Node) FirstChild() (Node, bool) {
	h, ok, err := n.tree().FirstChild(n.Handle)
	if err != nil || !ok {
		return Node{}, false
	}
	return Node{h}, true
}

// LastChild returns n's last child, if any.
func (n Node) LastChild() (Node, bool) {
	h, ok, err := n.tree().LastChild(n.Handle)
	if err != nil || !ok {
		return Node{}, false
	}
	return Node{h}, true
}

// PrevSibling returns n's previous sibling, if any.
func (n Node) PrevSibling() (Node, bool) {
	h, ok, err := n.tree().PrevSibling(n.Handle)
	if err != nil || !ok {
		return Node{}, false
	}
	return Node{h}, true
}

// NextSibling returns n's next sibling, if any.
func (n Node) NextSibling() (Node, bool) {
	h, ok, err := n.tree().NextSibling(n.Handle)
	if err != nil || !ok {
		return Node{}, false
	}
	return Node{h}, true
}

// HasChildren reports whether n has at least one child.
func (n Node) HasChildren() bool {
	ok, err := n.tree().HasChildren(n.Handle)
	return err == nil && ok
}

// HasSiblings reports whether n has a previous or next sibling.
func (n Node) HasSiblings() bool {
	ok, err := n.tree().HasSiblings(n.Handle)
	return err == nil && ok
}

// allowedOrderings returns which Ordering values this package permits for a
// node's kind: Document/Fragment forbid After/Before (no siblings
// possible); every other non-Element leaf kind forbids Append/Prepend
// (they cannot have children); Element permits all four.
func allowedOrderings(k NodeKind) (append_, prepend, after, before bool) {
	switch k {
	case KindDocument, KindFragment:
		return true, true, false, false
	case KindElement:
		return true, true, true, true
	default: // Doctype, Comment, Text, PI
		return false, false, true, true
	}
}

func checkOrdering(targetKind NodeKind, ord Ordering) error {
	ap, pr, af, be := allowedOrderings(targetKind)
	ok := map[Ordering]bool{Append: ap, Prepend: pr, After: af, Before: be}[ord]
	if !ok {
		return ErrOrdering("ordering not permitted for this node kind")
	}
	return nil
}

// Attach places node relative to n according to ord, validating that ord is
// legal for n's kind (this package).
func (n Node) Attach(node Node, ord Ordering) error {
	k, err := n.Kind()
	if err != nil {
		return err
	}
	if err := checkOrdering(k, ord); err != nil {
		return err
	}
	t := n.tree()
	switch ord {
	case Append:
		return t.Append(n.Handle, node.Handle)
	case Prepend:
		return t.Prepend(n.Handle, node.Handle)
	case After:
		return t.InsertAfter(n.Handle, node.Handle)
	case Before:
		return t.InsertBefore(n.Handle, node.Handle)
	default:
		return ErrOrdering("unknown ordering value")
	}
}

// Detach removes n from its parent, returning it to orphan state with its
// subtree intact.
func (n Node) Detach() error { return n.tree().Detach(n.Handle) }

// AppendText appends contents as n's last child, merging into an existing
// trailing Text child instead of creating a new sibling (the sink's
// coalescing append — see Tree.AppendText).
func (n Node) AppendText(contents string) error { return n.tree().AppendText(n.Handle, contents) }

// AppendTextBeforeSibling inserts contents immediately before n, merging
// into n's immediate predecessor if it is already a Text node (the sink's
// coalescing insert-before — see Tree.AppendTextBeforeSibling).
func (n Node) AppendTextBeforeSibling(contents string) error {
	return n.tree().AppendTextBeforeSibling(n.Handle, contents)
}

// Reparent moves all of n's children onto to, preserving order.
func (n Node) Reparent(to Node) error { return n.tree().Reparent(n.Handle, to.Handle) }

// Clone deep-copies n's subtree into a fresh orphan subtree in the same
// tree.
func (n Node) Clone() (Node, error) {
	h, err := n.tree().Clone(n.Handle)
	if err != nil {
		return Node{}, err
	}
	return Node{h}, nil
}

// --- Element-specific accessors -----------------------------------------

func (n Node) elementSlot() (*slot, error) {
	idx, err := n.tree().resolve(n.Handle)
	if err != nil {
		return nil, err
	}
	s := &n.tree().slots[idx]
	if s.kind != KindElement {
		return nil, ErrTypeMismatch("operation only valid on Element nodes")
	}
	return s, nil
}

// Name returns the Element's qualified name.
func (n Node) Name() (QName, error) {
	s, err := n.elementSlot()
	if err != nil {
		return QName{}, err
	}
	return s.name, nil
}

// Attrs returns the Element's attribute list view.
func (n Node) Attrs() AttrList { return AttrList{h: n.Handle} }

// Template reports the Element's "template content" flag.
func (n Node) Template() bool {
	s, err := n.elementSlot()
	return err == nil && s.template
}

// SetTemplate sets the Element's "template content" flag.
func (n Node) SetTemplate(v bool) error {
	s, err := n.elementSlot()
	if err != nil {
		return err
	}
	s.template = v
	return nil
}

// MathMLAnnotationXMLIntegrationPoint reports the Element's MathML
// "annotation-xml" HTML-integration-point flag.
func (n Node) MathMLAnnotationXMLIntegrationPoint() bool {
	s, err := n.elementSlot()
	return err == nil && s.mathMLIntegration
}

// SetMathMLAnnotationXMLIntegrationPoint sets the flag.
func (n Node) SetMathMLAnnotationXMLIntegrationPoint(v bool) error {
	s, err := n.elementSlot()
	if err != nil {
		return err
	}
	s.mathMLIntegration = v
	return nil
}

// ID returns the Element's "id" attribute value, or ("", false).
func (n Node) ID() (string, bool) {
	if _, err := n.elementSlot(); err != nil {
		return "", false
	}
	return n.Attrs().ID()
}

// ClassList returns the whitespace-split tokens of the Element's "class"
// attribute.
func (n Node) ClassList() []string {
	if _, err := n.elementSlot(); err != nil {
		return nil
	}
	return n.Attrs().ClassList()
}

// --- Doctype / Comment / Text / PI data ----------------------------------

// DoctypeData returns a Doctype node's (name, publicID, systemID).
func (n Node) DoctypeData() (name, publicID, systemID string, err error) {
	idx, err := n.tree().resolve(n.Handle)
	if err != nil {
		return "", "", "", err
	}
	s := &n.tree().slots[idx]
	if s.kind != KindDoctype {
		return "", "", "", ErrTypeMismatch("operation only valid on Doctype nodes")
	}
	return s.doctypeName, s.doctypePublic, s.doctypeSystem, nil
}

// CommentData returns a Comment node's contents.
func (n Node) CommentData() (string, error) {
	idx, err := n.tree().resolve(n.Handle)
	if err != nil {
		return "", err
	}
	s := &n.tree().slots[idx]
	if s.kind != KindComment {
		return "", ErrTypeMismatch("operation only valid on Comment nodes")
	}
	return s.text, nil
}

// TextData returns a Text node's contents.
func (n Node) TextData() (string, error) {
	idx, err := n.tree().resolve(n.Handle)
	if err != nil {
		return "", err
	}
	s := &n.tree().slots[idx]
	if s.kind != KindText {
		return "", ErrTypeMismatch("operation only valid on Text nodes")
	}
	return s.text, nil
}

// SetTextData replaces a Text node's contents in place. The tree builders
// do not use it; they coalesce adjacent character data through AppendText
// and AppendTextBeforeSibling.
func (n Node) SetTextData(contents string) error {
	idx, err := n.tree().resolve(n.Handle)
	if err != nil {
		return err
	}
	s := &n.tree().slots[idx]
	if s.kind != KindText {
		return ErrTypeMismatch("operation only valid on Text nodes")
	}
	s.text = contents
	return nil
}

// PIData returns a ProcessingInstruction node's (target, data).
func (n Node) PIData() (target, data string, err error) {
	idx, err := n.tree().resolve(n.Handle)
	if err != nil {
		return "", "", err
	}
	s := &n.tree().slots[idx]
	if s.kind != KindPI {
		return "", "", ErrTypeMismatch("operation only valid on ProcessingInstruction nodes")
	}
	return s.piTarget, s.piData, nil
}

// --- factories: allocate + attach in one step ---------------------------

// CreateElement allocates a new Element child of n and attaches it per ord.
func (n Node) CreateElement(name QName, attrs []Attr, template, mathMLIntegration bool, ord Ordering) (Node, error) {
	h := n.tree().CreateElement(name, attrs, template, mathMLIntegration)
	if err := n.Attach(Node{h}, ord); err != nil {
		return Node{}, err
	}
	return Node{h}, nil
}

// CreateText allocates a new Text child of n and attaches it per ord
// (never coalesced — see this package).
func (n Node) CreateText(contents string, ord Ordering) (Node, error) {
	h := n.tree().CreateText(contents)
	if err := n.Attach(Node{h}, ord); err != nil {
		return Node{}, err
	}
	return Node{h}, nil
}

// CreateComment allocates a new Comment child of n and attaches it per ord.
func (n Node) CreateComment(contents string, ord Ordering) (Node, error) {
	h := n.tree().CreateComment(contents)
	if err := n.Attach(Node{h}, ord); err != nil {
		return Node{}, err
	}
	return Node{h}, nil
}

// CreateDoctype allocates a new Doctype child of n and attaches it per ord.
func (n Node) CreateDoctype(name, publicID, systemID string, ord Ordering) (Node, error) {
	h := n.tree().CreateDoctype(name, publicID, systemID)
	if err := n.Attach(Node{h}, ord); err != nil {
		return Node{}, err
	}
	return Node{h}, nil
}

// CreatePI allocates a new ProcessingInstruction child of n and attaches it
// per ord.
func (n Node) CreatePI(target, data string, ord Ordering) (Node, error) {
	h := n.tree().CreatePI(target, data)
	if err := n.Attach(Node{h}, ord); err != nil {
		return Node{}, err
	}
	return Node{h}, nil
}

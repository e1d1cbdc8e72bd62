package dom

// noRef marks the absence of a link in the arena's child/sibling/parent
// fields, the index-based arena's analogue of a nil pointer.
const noRef = -1

// Attr is one (QName, value) pair of an Element's attribute list.
type Attr struct {
	Key   QName
	Value string
}

// slot is one arena cell. Only the fields relevant to a slot's NodeKind are
// meaningful; a tagged union collapsed into a single flat struct, the
// natural shape for a dense arena.
type slot struct {
	kind NodeKind
	gen  uint32
	live bool // set by alloc; resolve rejects a slot whose live flag is false

	parent, firstChild, lastChild, prevSibling, nextSibling int32

	// Element
	name              QName
	attrs             []Attr
	attrsIterating    bool
	template          bool
	mathMLIntegration bool

	// Doctype
	doctypeName, doctypePublic, doctypeSystem string

	// Comment / Text
	text string

	// ProcessingInstruction
	piTarget, piData string
}

// Tree owns every node ever created for one document or fragment parse.
// Node slots are addressed by generational Handle values and never
// physically reclaimed, so memory never shrinks; mutation primitives
// maintain the parent/sibling link invariants.
//
// A Tree is not safe for concurrent mutation.
type Tree struct {
	slots  []slot
	root   int32
	ns     *namespaces
	closed bool
}

// New creates an empty Tree with a Document root.
func New() *Tree {
	return newTree(KindDocument)
}

// NewFragment creates an empty Tree with a Fragment root, used as the
// alternative root when parsing an HTML/XML fragment rather than a full
// document.
func NewFragment() *Tree {
	return newTree(KindFragment)
}

func newTree(rootKind NodeKind) *Tree {
	t := &Tree{ns: newNamespaces()}
	idx := t.alloc(rootKind)
	t.root = idx
	return t
}

// Handle is an opaque, stable reference to a node inside a particular Tree.
// Two handles compare equal (via ==) iff they name the same node in the
// same tree. Handles carry their owning Tree so navigation never needs a
// separate tree argument, and a generation counter that resolve checks
// against the slot's. A Handle used after its Tree was Discarded is
// detected (DanglingHandle) through the Tree's closed flag rather than
// silently misinterpreted.
type Handle struct {
	tree *Tree
	idx  int32
	gen  uint32
}

// IsZero reports whether h is the zero Handle value (never returned by any
// Tree operation; useful as an "absent" sentinel in caller code).
func (h Handle) IsZero() bool { return h.tree == nil }

// Tree returns the Tree that issued h.
func (h Handle) Tree() *Tree { return h.tree }

func (t *Tree) alloc(kind NodeKind) int32 {
	s := slot{
		kind:        kind,
		gen:         1,
		live:        true,
		parent:      noRef,
		firstChild:  noRef,
		lastChild:   noRef,
		prevSibling: noRef,
		nextSibling: noRef,
	}
	t.slots = append(t.slots, s)
	return int32(len(t.slots) - 1)
}

func (t *Tree) handle(idx int32) Handle {
	return Handle{tree: t, idx: idx, gen: t.slots[idx].gen}
}

// resolve validates h against this tree and returns its slot index.
func (t *Tree) resolve(h Handle) (int32, error) {
	if h.tree != t {
		return 0, ErrDanglingHandle("handle belongs to a different tree")
	}
	if t.closed {
		return 0, ErrDanglingHandle("tree has been discarded")
	}
	if h.idx < 0 || int(h.idx) >= len(t.slots) {
		return 0, ErrDanglingHandle("handle index out of range")
	}
	s := &t.slots[h.idx]
	if !s.live || s.gen != h.gen {
		return 0, ErrDanglingHandle("handle refers to a stale slot")
	}
	return h.idx, nil
}

// Discard marks the tree closed; handles issued against it subsequently
// fail with DanglingHandle. The arena's memory is released to the garbage
// collector once the last Handle referencing it is dropped by the caller.
func (t *Tree) Discard() { t.closed = true }

// Root returns the Document or Fragment root of the tree.
func (t *Tree) Root() Handle { return t.handle(t.root) }

// Len returns the number of nodes ever allocated in this tree, including
// orphans never attached to the root.
func (t *Tree) Len() int { return len(t.slots) }

// Namespaces returns a snapshot of the prefix→URI registry accumulated
// during parsing.
func (t *Tree) Namespaces() map[string]string { return t.ns.snapshot() }

// ResolveNamespace resolves a selector-compile-time prefix against the
// tree's namespace registry.
func (t *Tree) ResolveNamespace(prefix string) (string, bool) { return t.ns.lookup(prefix) }

// --- factories -------------------------------------------------------

// CreateDoctype allocates an orphan Doctype node.
func (t *Tree) CreateDoctype(name, publicID, systemID string) Handle {
	idx := t.alloc(KindDoctype)
	s := &t.slots[idx]
	s.doctypeName, s.doctypePublic, s.doctypeSystem = name, publicID, systemID
	return t.handle(idx)
}

// CreateComment allocates an orphan Comment node.
func (t *Tree) CreateComment(contents string) Handle {
	idx := t.alloc(KindComment)
	t.slots[idx].text = contents
	return t.handle(idx)
}

// CreateText allocates an orphan Text node. Unlike the HTML sink's
// AppendText, this never merges with adjacent text — this package requires
// create+append on the public API to leave coalescing to the sink path.
func (t *Tree) CreateText(contents string) Handle {
	idx := t.alloc(KindText)
	t.slots[idx].text = contents
	return t.handle(idx)
}

// CreatePI allocates an orphan ProcessingInstruction node.
func (t *Tree) CreatePI(target, data string) Handle {
	idx := t.alloc(KindPI)
	s := &t.slots[idx]
	s.piTarget, s.piData = target, data
	return t.handle(idx)
}

// CreateElement allocates an orphan Element node with the given qualified
// name and attribute set; duplicate keys among attrs are preserved in
// order, matching this package's AttrsList invariant.
func (t *Tree) CreateElement(name QName, attrs []Attr, template, mathMLIntegration bool) Handle {
	idx := t.alloc(KindElement)
	s := &t.slots[idx]
	s.name = name
	s.attrs = append([]Attr(nil), attrs...)
	s.template = template
	s.mathMLIntegration = mathMLIntegration
	t.ns.observe(name)
	for _, a := range s.attrs {
		t.ns.observe(a.Key)
	}
	return t.handle(idx)
}

// --- navigation --------------------------------------------------------

func (t *Tree) kindOf(idx int32) NodeKind { return t.slots[idx].kind }

// Kind returns the node kind of h.
func (t *Tree) Kind(h Handle) (NodeKind, error) {
	idx, err := t.resolve(h)
	if err != nil {
		return 0, err
	}
	return t.slots[idx].kind, nil
}

func (t *Tree) optHandle(idx int32) (Handle, bool) {
	if idx == noRef {
		return Handle{}, false
	}
	return t.handle(idx), true
}

// Parent returns the parent of h, if any.
func (t *Tree) Parent(h Handle) (Handle, bool, error) {
	idx, err := t.resolve(h)
	if err != nil {
		return Handle{}, false, err
	}
	p, ok := t.optHandle(t.slots[idx].parent)
	return p, ok, nil
}

// FirstChild returns h's first child, if any.
func (t *Tree) FirstChild(h Handle) (Handle, bool, error) {
	idx, err := t.resolve(h)
	if err != nil {
		return Handle{}, false, err
	}
	c, ok := t.optHandle(t.slots[idx].firstChild)
	return c, ok, nil
}

// LastChild returns h's last child, if any.
func (t *Tree) LastChild(h Handle) (Handle, bool, error) {
	idx, err := t.resolve(h)
	if err != nil {
		return Handle{}, false, err
	}
	c, ok := t.optHandle(t.slots[idx].lastChild)
	return c, ok, nil
}

// PrevSibling returns h's previous sibling, if any.
func (t *Tree) PrevSibling(h Handle) (Handle, bool, error) {
	idx, err := t.resolve(h)
	if err != nil {
		return Handle{}, false, err
	}
	s, ok := t.optHandle(t.slots[idx].prevSibling)
	return s, ok, nil
}

// NextSibling returns h's next sibling, if any.
func (t *Tree) NextSibling(h Handle) (Handle, bool, error) {
	idx, err := t.resolve(h)
	if err != nil {
		return Handle{}, false, err
	}
	s, ok := t.optHandle(t.slots[idx].nextSibling)
	return s, ok, nil
}

// HasChildren reports whether h has at least one child.
func (t *Tree) HasChildren(h Handle) (bool, error) {
	idx, err := t.resolve(h)
	if err != nil {
		return false, err
	}
	return t.slots[idx].firstChild != noRef, nil
}

// HasSiblings reports whether h has a previous or next sibling.
func (t *Tree) HasSiblings(h Handle) (bool, error) {
	idx, err := t.resolve(h)
	if err != nil {
		return false, err
	}
	s := &t.slots[idx]
	return s.prevSibling != noRef || s.nextSibling != noRef, nil
}

// --- mutation ----------------------------------------------------------

// isAncestorOf reports whether candidate is an ancestor of idx (walking
// parent links from idx upward). Used for cycle prevention.
func (t *Tree) isAncestorOf(candidate, idx int32) bool {
	for p := t.slots[idx].parent; p != noRef; p = t.slots[p].parent {
		if p == candidate {
			return true
		}
	}
	return false
}

func (t *Tree) checkAttach(parentIdx, childIdx int32) error {
	if t.slots[childIdx].kind == KindDocument || t.slots[childIdx].kind == KindFragment {
		return ErrStructural("a Document or Fragment node cannot be a child")
	}
	if childIdx == parentIdx || t.isAncestorOf(childIdx, parentIdx) {
		return ErrStructural("attachment would create a cycle")
	}
	return nil
}

// resolveChild validates a would-be child handle the way resolve does, except
// that a handle genuinely issued by a different, non-nil Tree is reported as
// StructuralError ("attach across trees", spec §4.2/§7) rather than
// DanglingHandle — DanglingHandle is reserved for handles that belong to this
// tree (or were never issued at all) but no longer name a live slot.
func (t *Tree) resolveChild(h Handle) (int32, error) {
	if h.tree != t && h.tree != nil {
		return 0, ErrStructural("child belongs to a different tree")
	}
	return t.resolve(h)
}

// unlink removes idx from its current parent/sibling chain, leaving it an
// orphan. No-op if idx has no parent.
func (t *Tree) unlink(idx int32) {
	s := &t.slots[idx]
	if s.parent == noRef {
		return
	}
	parent := &t.slots[s.parent]
	if s.prevSibling != noRef {
		t.slots[s.prevSibling].nextSibling = s.nextSibling
	} else {
		parent.firstChild = s.nextSibling
	}
	if s.nextSibling != noRef {
		t.slots[s.nextSibling].prevSibling = s.prevSibling
	} else {
		parent.lastChild = s.prevSibling
	}
	s.parent, s.prevSibling, s.nextSibling = noRef, noRef, noRef
}

// Append adds child as the last child of parent, implicitly detaching child
// from any current parent first (this package's mutation contract).
func (t *Tree) Append(parent, child Handle) error {
	pIdx, err := t.resolve(parent)
	if err != nil {
		return err
	}
	cIdx, err := t.resolveChild(child)
	if err != nil {
		return err
	}
	if err := t.checkAttach(pIdx, cIdx); err != nil {
		return err
	}
	t.unlink(cIdx)

	p := &t.slots[pIdx]
	c := &t.slots[cIdx]
	c.parent = pIdx
	c.prevSibling = p.lastChild
	c.nextSibling = noRef
	if p.lastChild != noRef {
		t.slots[p.lastChild].nextSibling = cIdx
	} else {
		p.firstChild = cIdx
	}
	p.lastChild = cIdx
	return nil
}

// Prepend adds child as the first child of parent.
func (t *Tree) Prepend(parent, child Handle) error {
	pIdx, err := t.resolve(parent)
	if err != nil {
		return err
	}
	cIdx, err := t.resolveChild(child)
	if err != nil {
		return err
	}
	if err := t.checkAttach(pIdx, cIdx); err != nil {
		return err
	}
	t.unlink(cIdx)

	p := &t.slots[pIdx]
	c := &t.slots[cIdx]
	c.parent = pIdx
	c.nextSibling = p.firstChild
	c.prevSibling = noRef
	if p.firstChild != noRef {
		t.slots[p.firstChild].prevSibling = cIdx
	} else {
		p.lastChild = cIdx
	}
	p.firstChild = cIdx
	return nil
}

// InsertBefore places newNode as the sibling immediately preceding anchor.
// Fails with StructuralError if anchor has no parent.
func (t *Tree) InsertBefore(anchor, newNode Handle) error {
	aIdx, err := t.resolve(anchor)
	if err != nil {
		return err
	}
	nIdx, err := t.resolveChild(newNode)
	if err != nil {
		return err
	}
	parentIdx := t.slots[aIdx].parent
	if parentIdx == noRef {
		return ErrStructural("anchor has no parent")
	}
	if err := t.checkAttach(parentIdx, nIdx); err != nil {
		return err
	}
	t.unlink(nIdx)

	a := &t.slots[aIdx]
	n := &t.slots[nIdx]
	parent := &t.slots[parentIdx]
	n.parent = parentIdx
	n.nextSibling = aIdx
	n.prevSibling = a.prevSibling
	if a.prevSibling != noRef {
		t.slots[a.prevSibling].nextSibling = nIdx
	} else {
		parent.firstChild = nIdx
	}
	a.prevSibling = nIdx
	return nil
}

// InsertAfter places newNode as the sibling immediately following anchor.
// Fails with StructuralError if anchor has no parent.
func (t *Tree) InsertAfter(anchor, newNode Handle) error {
	aIdx, err := t.resolve(anchor)
	if err != nil {
		return err
	}
	nIdx, err := t.resolveChild(newNode)
	if err != nil {
		return err
	}
	parentIdx := t.slots[aIdx].parent
	if parentIdx == noRef {
		return ErrStructural("anchor has no parent")
	}
	if err := t.checkAttach(parentIdx, nIdx); err != nil {
		return err
	}
	t.unlink(nIdx)

	a := &t.slots[aIdx]
	n := &t.slots[nIdx]
	parent := &t.slots[parentIdx]
	n.parent = parentIdx
	n.prevSibling = aIdx
	n.nextSibling = a.nextSibling
	if a.nextSibling != noRef {
		t.slots[a.nextSibling].prevSibling = nIdx
	} else {
		parent.lastChild = nIdx
	}
	a.nextSibling = nIdx
	return nil
}

// Detach removes node from its parent and sibling chain, leaving its
// subtree intact with node as a new orphan root inside the same tree.
func (t *Tree) Detach(node Handle) error {
	idx, err := t.resolve(node)
	if err != nil {
		return err
	}
	t.unlink(idx)
	return nil
}

// Reparent moves all children of from into to, preserving child order.
// Neither tree builder calls it; it is exposed through Node.Reparent.
func (t *Tree) Reparent(from, to Handle) error {
	fIdx, err := t.resolve(from)
	if err != nil {
		return err
	}
	tIdx, err := t.resolve(to)
	if err != nil {
		return err
	}
	if fIdx == tIdx {
		return ErrStructural("cannot reparent a node's children onto itself")
	}
	if t.isAncestorOf(fIdx, tIdx) {
		return ErrStructural("reparenting would create a cycle")
	}
	child := t.slots[fIdx].firstChild
	for child != noRef {
		next := t.slots[child].nextSibling
		if err := t.Append(t.handle(tIdx), t.handle(child)); err != nil {
			return err
		}
		child = next
	}
	return nil
}

// AppendText implements the HTML5 sink's text-coalescing append: if
// parent's last child is already a Text node, contents are merged into it;
// otherwise a fresh Text node is created and appended. The tree builders
// call this, and Node.AppendText exposes it; CreateText plus Append never
// merges.
func (t *Tree) AppendText(parent Handle, contents string) error {
	pIdx, err := t.resolve(parent)
	if err != nil {
		return err
	}
	last := t.slots[pIdx].lastChild
	if last != noRef && t.slots[last].kind == KindText {
		t.slots[last].text += contents
		return nil
	}
	return t.Append(parent, t.CreateText(contents))
}

// AppendTextBeforeSibling implements the sink's coalescing insert-before:
// if sibling's immediate predecessor is Text, contents merge into it;
// otherwise a fresh Text node is inserted before sibling.
func (t *Tree) AppendTextBeforeSibling(sibling Handle, contents string) error {
	sIdx, err := t.resolve(sibling)
	if err != nil {
		return err
	}
	prev := t.slots[sIdx].prevSibling
	if prev != noRef && t.slots[prev].kind == KindText {
		t.slots[prev].text += contents
		return nil
	}
	return t.InsertBefore(sibling, t.CreateText(contents))
}

// Clone deep-copies the subtree rooted at h into a freshly allocated,
// orphan subtree within the same tree (this module's original_source
// supplement, dom.py's Node.copy).
func (t *Tree) Clone(h Handle) (Handle, error) {
	idx, err := t.resolve(h)
	if err != nil {
		return Handle{}, err
	}
	return t.handle(t.cloneSlot(idx)), nil
}

func (t *Tree) cloneSlot(idx int32) int32 {
	src := t.slots[idx]
	newIdx := t.alloc(src.kind)
	// re-fetch after alloc: append may have reallocated the backing array
	dst := &t.slots[newIdx]
	dst.name = src.name
	dst.attrs = append([]Attr(nil), src.attrs...)
	dst.template = src.template
	dst.mathMLIntegration = src.mathMLIntegration
	dst.doctypeName, dst.doctypePublic, dst.doctypeSystem = src.doctypeName, src.doctypePublic, src.doctypeSystem
	dst.text = src.text
	dst.piTarget, dst.piData = src.piTarget, src.piData

	child := src.firstChild
	for child != noRef {
		next := t.slots[child].nextSibling
		newChild := t.cloneSlot(child)
		_ = t.Append(t.handle(newIdx), t.handle(newChild))
		child = next
	}
	return newIdx
}

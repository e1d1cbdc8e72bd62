package dom

// ChildIter walks a node's children left to right. Unlike AttrIter, ChildIter
// is a fresh, independent cursor snapshotting nothing on the tree itself —
// this package's "cannot iterate twice concurrently" restriction is relaxed
// here, per the note that implementations may return fresh iterator objects
// instead of a single shared cursor.
type ChildIter struct {
	next Node
	ok   bool
}

// Children begins iteration over n's children, forward (first to last).
func (n Node) Children() *ChildIter {
	first, ok := n.FirstChild()
	return &ChildIter{next: first, ok: ok}
}

// Next advances the cursor, returning false once exhausted.
func (it *ChildIter) Next() (Node, bool) {
	if !it.ok {
		return Node{}, false
	}
	cur := it.next
	it.next, it.ok = cur.NextSibling()
	return cur, true
}

// AncestorIter walks a node's ancestors from its parent upward to the root.
type AncestorIter struct {
	next Node
	ok   bool
}

// Ancestors begins iteration over n's ancestors, nearest first. n itself is
// excluded; callers wanting self-inclusive traversal can prepend n, matching
// the include_self option supplemented from the original reference
// implementation's Node.copy()-adjacent predicates.
func (n Node) Ancestors() *AncestorIter {
	p, ok := n.Parent()
	return &AncestorIter{next: p, ok: ok}
}

// Next advances the cursor, returning false once the root has been yielded.
func (it *AncestorIter) Next() (Node, bool) {
	if !it.ok {
		return Node{}, false
	}
	cur := it.next
	it.next, it.ok = cur.Parent()
	return cur, true
}

// SiblingIter walks a node's siblings in one direction.
type SiblingIter struct {
	next Node
	ok   bool
	fwd  bool
}

// NextSiblings begins iteration forward over n's following siblings.
func (n Node) NextSiblings() *SiblingIter {
	s, ok := n.NextSibling()
	return &SiblingIter{next: s, ok: ok, fwd: true}
}

// PrevSiblings begins iteration backward over n's preceding siblings.
func (n Node) PrevSiblings() *SiblingIter {
	s, ok := n.PrevSibling()
	return &SiblingIter{next: s, ok: ok, fwd: false}
}

// Next advances the cursor, returning false once exhausted.
func (it *SiblingIter) Next() (Node, bool) {
	if !it.ok {
		return Node{}, false
	}
	cur := it.next
	if it.fwd {
		it.next, it.ok = cur.NextSibling()
	} else {
		it.next, it.ok = cur.PrevSibling()
	}
	return cur, true
}

// FirstChildChain returns the chain of first-children starting at n
// (n excluded), down to the deepest leftmost descendant.
func (n Node) FirstChildChain() []Node {
	var out []Node
	cur := n
	for {
		c, ok := cur.FirstChild()
		if !ok {
			break
		}
		out = append(out, c)
		cur = c
	}
	return out
}

// LastChildChain returns the chain of last-children starting at n
// (n excluded), down to the deepest rightmost descendant.
func (n Node) LastChildChain() []Node {
	var out []Node
	cur := n
	for {
		c, ok := cur.LastChild()
		if !ok {
			break
		}
		out = append(out, c)
		cur = c
	}
	return out
}

package dom

import "testing"

func TestNewTreeHasDocumentRoot(t *testing.T) {
	tree := New()
	root := tree.Root()
	kind, err := tree.Kind(root)
	if err != nil {
		t.Fatalf("Kind: %v", err)
	}
	if kind != KindDocument {
		t.Errorf("expected KindDocument, got %v", kind)
	}
}

func TestNewFragmentHasFragmentRoot(t *testing.T) {
	tree := NewFragment()
	kind, err := tree.Kind(tree.Root())
	if err != nil {
		t.Fatalf("Kind: %v", err)
	}
	if kind != KindFragment {
		t.Errorf("expected KindFragment, got %v", kind)
	}
}

func TestAttachAndChildOrder(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())

	div, err := root.CreateElement(QN("div"), nil, false, false, Append)
	if err != nil {
		t.Fatalf("CreateElement: %v", err)
	}
	span, err := root.CreateElement(QN("span"), nil, false, false, Append)
	if err != nil {
		t.Fatalf("CreateElement: %v", err)
	}

	first, ok := root.FirstChild()
	if !ok {
		t.Fatal("root has no first child")
	}
	if first.Handle != div.Handle {
		t.Errorf("expected first child to be div")
	}
	last, ok := root.LastChild()
	if !ok || last.Handle != span.Handle {
		t.Errorf("expected last child to be span")
	}
}

func TestPrependInsertsBeforeFirstChild(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())

	second, _ := root.CreateElement(QN("b"), nil, false, false, Append)
	first, err := root.CreateElement(QN("a"), nil, false, false, Prepend)
	if err != nil {
		t.Fatalf("CreateElement with Prepend: %v", err)
	}

	fc, ok := root.FirstChild()
	if !ok || fc.Handle != first.Handle {
		t.Errorf("expected prepended node to be first child")
	}
	nx, ok := fc.NextSibling()
	if !ok || nx.Handle != second.Handle {
		t.Errorf("expected second node to follow the prepended node")
	}
}

func TestOrderingRejectedForDocumentRoot(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())
	sibling, _ := root.CreateElement(QN("div"), nil, false, false, Append)

	other := Wrap(tree.CreateComment("x"))
	if err := sibling.Attach(other, After); err != nil {
		t.Fatalf("After on an Element should be legal: %v", err)
	}

	if err := root.Attach(other, After); err == nil {
		t.Errorf("expected ErrOrdering attaching After the document root")
	}
}

func TestDetachPreservesSubtree(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())
	parent, _ := root.CreateElement(QN("ul"), nil, false, false, Append)
	child, _ := parent.CreateElement(QN("li"), nil, false, false, Append)

	if err := parent.Detach(); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if _, ok := parent.Parent(); ok {
		t.Errorf("detached node should have no parent")
	}
	fc, ok := parent.FirstChild()
	if !ok || fc.Handle != child.Handle {
		t.Errorf("detach must preserve the subtree under the detached node")
	}
}

func TestAttachRejectsCycle(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())
	parent, _ := root.CreateElement(QN("div"), nil, false, false, Append)
	child, _ := parent.CreateElement(QN("span"), nil, false, false, Append)

	if err := child.Attach(parent, Append); err == nil {
		t.Errorf("expected a structural error attaching an ancestor as its own descendant's child")
	}
}

func TestDanglingHandleAfterDiscard(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())
	el, _ := root.CreateElement(QN("div"), nil, false, false, Append)
	tree.Discard()

	if _, err := el.Kind(); err == nil {
		t.Errorf("expected DanglingHandle after Discard")
	}
}

func TestAttrListOrderedAndDuplicateKeys(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())
	el, _ := root.CreateElement(QN("div"), []Attr{
		{Key: QN("class"), Value: "a"},
		{Key: QN("class"), Value: "b"},
	}, false, false, Append)

	attrs := el.Attrs()
	if attrs.Len() != 2 {
		t.Fatalf("expected 2 attrs, got %d", attrs.Len())
	}
	_, v0, _ := attrs.Get(0)
	_, v1, _ := attrs.Get(1)
	if v0 != "a" || v1 != "b" {
		t.Errorf("expected duplicate keys preserved in order, got %q, %q", v0, v1)
	}
}

func TestAttrIterSingleOwnership(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())
	el, _ := root.CreateElement(QN("div"), []Attr{{Key: QN("id"), Value: "x"}}, false, false, Append)

	it, err := el.Attrs().Iter()
	if err != nil {
		t.Fatalf("Iter: %v", err)
	}
	if _, err := el.Attrs().Iter(); err == nil {
		t.Errorf("expected IteratorExists on a second concurrent Iter")
	}
	it.Close()
	if _, err := el.Attrs().Iter(); err != nil {
		t.Errorf("expected Iter to succeed after Close: %v", err)
	}
}

func TestQNameEqualityIgnoresPrefix(t *testing.T) {
	a := QNameNS("x", "http://example.com/ns", "foo")
	b := QNameNS("y", "http://example.com/ns", "foo")
	if !a.Equal(b) {
		t.Errorf("QName equality must ignore prefix")
	}
	if a.String() == b.String() {
		t.Errorf("QName.String should preserve the distinct prefixes")
	}
}

func TestCloneIsIndependentSubtree(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())
	parent, _ := root.CreateElement(QN("div"), nil, false, false, Append)
	parent.CreateText("hi", Append)

	clone, err := parent.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if _, ok := clone.Parent(); ok {
		t.Errorf("a clone must be orphaned until attached")
	}
	cfc, ok := clone.FirstChild()
	if !ok {
		t.Fatal("clone should carry over its children")
	}
	text, _ := cfc.TextData()
	if text != "hi" {
		t.Errorf("expected cloned text %q, got %q", "hi", text)
	}
}

func TestTextConcatenatesDescendantTextNodes(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())
	div, _ := root.CreateElement(QN("div"), nil, false, false, Append)
	div.CreateText("hello ", Append)
	span, _ := div.CreateElement(QN("span"), nil, false, false, Append)
	span.CreateText("world", Append)

	if got := div.Text("", false); got != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", got)
	}
}

func TestDescendantsPreOrder(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())
	div, _ := root.CreateElement(QN("div"), nil, false, false, Append)
	a, _ := div.CreateElement(QN("a"), nil, false, false, Append)
	a.CreateElement(QN("b"), nil, false, false, Append)
	div.CreateElement(QN("c"), nil, false, false, Append)

	var order []string
	d := div.Descendants(false)
	for {
		n, ok := d.Next()
		if !ok {
			break
		}
		name, _ := n.Name()
		order = append(order, name.Local)
	}
	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("expected %v, got %v", want, order)
			break
		}
	}
}

func TestSerializeHTMLVoidElement(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())
	div, _ := root.CreateElement(QN("div"), nil, false, false, Append)
	div.CreateElement(QN("br"), nil, false, false, Append)

	out, err := Serialize(div, HTML)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := "<div><br></div>"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestReparentMovesChildrenPreservingOrder(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())
	from, _ := root.CreateElement(QN("div"), nil, false, false, Append)
	from.CreateElement(QN("a"), nil, false, false, Append)
	from.CreateElement(QN("b"), nil, false, false, Append)
	to, _ := root.CreateElement(QN("section"), nil, false, false, Append)

	if err := from.Reparent(to); err != nil {
		t.Fatalf("Reparent: %v", err)
	}
	if from.HasChildren() {
		t.Errorf("from should have no children left after Reparent")
	}

	fc, ok := to.FirstChild()
	if !ok {
		t.Fatal("to should have gained children")
	}
	name, _ := fc.Name()
	if name.Local != "a" {
		t.Errorf("expected first moved child %q, got %q", "a", name.Local)
	}
	nx, ok := fc.NextSibling()
	if !ok {
		t.Fatal("expected a second moved child")
	}
	name2, _ := nx.Name()
	if name2.Local != "b" {
		t.Errorf("expected second moved child %q, got %q", "b", name2.Local)
	}
}

func TestAppendTextCoalescesWithTrailingTextChild(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())
	div, _ := root.CreateElement(QN("div"), nil, false, false, Append)
	div.CreateText("a", Append)

	if err := div.AppendText("b"); err != nil {
		t.Fatalf("AppendText: %v", err)
	}

	fc, ok := div.FirstChild()
	if !ok {
		t.Fatal("expected a text child")
	}
	if _, ok := fc.NextSibling(); ok {
		t.Errorf("AppendText must merge into the existing Text child, not add a sibling")
	}
	text, _ := fc.TextData()
	if text != "ab" {
		t.Errorf("expected coalesced text %q, got %q", "ab", text)
	}
}

func TestAppendTextBeforeSiblingCoalescesWithPrecedingTextChild(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())
	div, _ := root.CreateElement(QN("div"), nil, false, false, Append)
	div.CreateText("a", Append)
	anchor, _ := div.CreateElement(QN("span"), nil, false, false, Append)

	if err := anchor.AppendTextBeforeSibling("b"); err != nil {
		t.Fatalf("AppendTextBeforeSibling: %v", err)
	}

	fc, ok := div.FirstChild()
	if !ok {
		t.Fatal("expected a text child")
	}
	text, _ := fc.TextData()
	if text != "ab" {
		t.Errorf("expected coalesced text %q, got %q", "ab", text)
	}
	nx, ok := fc.NextSibling()
	if !ok || nx.Handle != anchor.Handle {
		t.Errorf("expected the span to remain the next sibling of the coalesced text")
	}
}

func TestAttachAcrossTreesFailsWithStructuralError(t *testing.T) {
	treeA := New()
	rootA := Wrap(treeA.Root())
	parent, _ := rootA.CreateElement(QN("div"), nil, false, false, Append)

	treeB := New()
	rootB := Wrap(treeB.Root())
	foreign, _ := rootB.CreateElement(QN("span"), nil, false, false, Append)

	err := parent.Attach(foreign, Append)
	if err == nil {
		t.Fatal("expected an error attaching a handle from a different tree")
	}
	te, ok := err.(*TreeError)
	if !ok || te.Name != "StructuralError" {
		t.Errorf("expected StructuralError for cross-tree attachment, got %T (%v)", err, err)
	}
}

func TestSerializeXMLSelfClosesEmptyElement(t *testing.T) {
	tree := New()
	root := Wrap(tree.Root())
	div, _ := root.CreateElement(QN("div"), nil, false, false, Append)

	out, err := Serialize(div, XML)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := "<div/>"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

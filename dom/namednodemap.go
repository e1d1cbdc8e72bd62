package dom

import "strings"

// AttrList is the ordered (QName, string) attribute sequence attached to an
// Element node (this package). It preserves insertion order and permits
// duplicate keys, distinguishable by position — generalized from the
// teacher's NamedNodeMap (dom/namednodemap.go), which enforced per-name
// uniqueness the way the DOM Living Standard requires; this module explicitly
// does not.
type AttrList struct {
	h Handle
}

// Attrs returns the attribute list view for an Element handle. Callers
// should use Node.Attrs(); this is the mechanism underneath.
func (t *Tree) Attrs(h Handle) AttrList { return AttrList{h: h} }

func (a AttrList) slot() (*slot, error) {
	idx, err := a.h.tree.resolve(a.h)
	if err != nil {
		return nil, err
	}
	s := &a.h.tree.slots[idx]
	if s.kind != KindElement {
		return nil, ErrTypeMismatch("attributes are only defined on Element nodes")
	}
	return s, nil
}

// Len returns the number of attributes.
func (a AttrList) Len() int {
	s, err := a.slot()
	if err != nil {
		return 0
	}
	return len(s.attrs)
}

// Get returns the (key, value) at position i.
func (a AttrList) Get(i int) (QName, string, error) {
	s, err := a.slot()
	if err != nil {
		return QName{}, "", err
	}
	if i < 0 || i >= len(s.attrs) {
		return QName{}, "", ErrIndexOutOfBounds("attribute index out of range")
	}
	e := s.attrs[i]
	return e.Key, e.Value, nil
}

// Set replaces the (key, value) at position i in place.
func (a AttrList) Set(i int, key QName, value string) error {
	s, err := a.slot()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(s.attrs) {
		return ErrIndexOutOfBounds("attribute index out of range")
	}
	s.attrs[i] = Attr{Key: key, Value: value}
	a.h.tree.ns.observe(key)
	return nil
}

// Remove deletes the attribute at position i, shifting later entries down.
func (a AttrList) Remove(i int) error {
	s, err := a.slot()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(s.attrs) {
		return ErrIndexOutOfBounds("attribute index out of range")
	}
	s.attrs = append(s.attrs[:i], s.attrs[i+1:]...)
	return nil
}

// SwapRemove deletes the attribute at position i by swapping it with the
// last entry, an O(1) remove that does not preserve order past index i.
func (a AttrList) SwapRemove(i int) error {
	s, err := a.slot()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(s.attrs) {
		return ErrIndexOutOfBounds("attribute index out of range")
	}
	last := len(s.attrs) - 1
	s.attrs[i] = s.attrs[last]
	s.attrs = s.attrs[:last]
	return nil
}

// Push appends a new (key, value) pair, even if key already exists.
func (a AttrList) Push(key QName, value string) error {
	s, err := a.slot()
	if err != nil {
		return err
	}
	s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	a.h.tree.ns.observe(key)
	return nil
}

// Insert places a new (key, value) pair at position i.
func (a AttrList) Insert(i int, key QName, value string) error {
	s, err := a.slot()
	if err != nil {
		return err
	}
	if i < 0 || i > len(s.attrs) {
		return ErrIndexOutOfBounds("attribute index out of range")
	}
	s.attrs = append(s.attrs, Attr{})
	copy(s.attrs[i+1:], s.attrs[i:])
	s.attrs[i] = Attr{Key: key, Value: value}
	a.h.tree.ns.observe(key)
	return nil
}

// Dedup removes consecutive entries with equal keys, keeping the first of
// each run.
func (a AttrList) Dedup() error {
	s, err := a.slot()
	if err != nil {
		return err
	}
	if len(s.attrs) < 2 {
		return nil
	}
	out := s.attrs[:1]
	for _, e := range s.attrs[1:] {
		if !e.Key.Equal(out[len(out)-1].Key) {
			out = append(out, e)
		}
	}
	s.attrs = out
	return nil
}

// Reverse reverses the attribute order in place.
func (a AttrList) Reverse() error {
	s, err := a.slot()
	if err != nil {
		return err
	}
	for i, j := 0, len(s.attrs)-1; i < j; i, j = i+1, j-1 {
		s.attrs[i], s.attrs[j] = s.attrs[j], s.attrs[i]
	}
	return nil
}

// Sort stably sorts entries by key (QName.Less).
func (a AttrList) Sort() error {
	s, err := a.slot()
	if err != nil {
		return err
	}
	stableSortAttrs(s.attrs)
	return nil
}

func stableSortAttrs(attrs []Attr) {
	// insertion sort: stable, and the list is typically tiny (a handful
	// of attributes per element), so O(n^2) is the right tradeoff here.
	for i := 1; i < len(attrs); i++ {
		for j := i; j > 0 && attrs[j].Key.Less(attrs[j-1].Key); j-- {
			attrs[j], attrs[j-1] = attrs[j-1], attrs[j]
		}
	}
}

// Clear removes all attributes.
func (a AttrList) Clear() error {
	s, err := a.slot()
	if err != nil {
		return err
	}
	s.attrs = s.attrs[:0]
	return nil
}

// Find returns the index and value of the first attribute whose key equals
// key, searching from start. ok is false if no match exists.
func (a AttrList) Find(key QName, start int) (index int, value string, ok bool) {
	s, err := a.slot()
	if err != nil {
		return 0, "", false
	}
	for i := start; i < len(s.attrs); i++ {
		if s.attrs[i].Key.Equal(key) {
			return i, s.attrs[i].Value, true
		}
	}
	return 0, "", false
}

// Index returns the first index of key starting from start, or NotFound.
func (a AttrList) Index(key QName, start int) (int, error) {
	i, _, ok := a.Find(key, start)
	if !ok {
		return 0, ErrNotFound("no attribute with the given key")
	}
	return i, nil
}

// Contains reports whether any attribute has the given key.
func (a AttrList) Contains(key QName) bool {
	_, _, ok := a.Find(key, 0)
	return ok
}

// ContainsValue reports whether any attribute has the given (key, value).
func (a AttrList) ContainsValue(key QName, value string) bool {
	s, err := a.slot()
	if err != nil {
		return false
	}
	for _, e := range s.attrs {
		if e.Key.Equal(key) && e.Value == value {
			return true
		}
	}
	return false
}

// SetByKey replaces the first attribute matching key, or pushes a new one
// if none exists.
func (a AttrList) SetByKey(key QName, value string) error {
	if i, _, ok := a.Find(key, 0); ok {
		return a.Set(i, key, value)
	}
	return a.Push(key, value)
}

// All returns a snapshot slice of (key, value) pairs, in order. Unlike
// Iter, this does not participate in the single-cursor restriction.
func (a AttrList) All() []Attr {
	s, err := a.slot()
	if err != nil {
		return nil
	}
	out := make([]Attr, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// AttrIter is a one-shot cursor over an AttrList. At most one AttrIter may
// be live per AttrList at a time; Iter fails with IteratorExists if a
// previous iterator from the same list has not been exhausted or Closed
// (this package's "cannot have two iterators alive at once" guarantee).
type AttrIter struct {
	list    AttrList
	entries []Attr
	pos     int
	closed  bool
}

// Iter begins a fresh, one-shot iteration over a.
func (a AttrList) Iter() (*AttrIter, error) {
	s, err := a.slot()
	if err != nil {
		return nil, err
	}
	if s.attrsIterating {
		return nil, ErrIteratorExists("an AttrList iterator is already live")
	}
	s.attrsIterating = true
	return &AttrIter{list: a, entries: a.All()}, nil
}

// Next advances the cursor, returning false once exhausted (and releasing
// the single-iterator lock automatically).
func (it *AttrIter) Next() (QName, string, bool) {
	if it.pos >= len(it.entries) {
		it.Close()
		return QName{}, "", false
	}
	e := it.entries[it.pos]
	it.pos++
	if it.pos >= len(it.entries) {
		it.Close()
	}
	return e.Key, e.Value, true
}

// Close releases the single-iterator lock early, before exhaustion.
func (it *AttrIter) Close() {
	if it.closed {
		return
	}
	it.closed = true
	if s, err := it.list.slot(); err == nil {
		s.attrsIterating = false
	}
}

// --- Element-derived attribute helpers (this package) -------------------

var idQName = QN("id")
var classQName = QN("class")

// ID returns the value of the first "id" attribute, or ("", false).
func (a AttrList) ID() (string, bool) {
	_, v, ok := a.Find(idQName, 0)
	return v, ok
}

// isASCIIWhitespace matches the HTML definition of ASCII whitespace used by
// class-list tokenization, grounded on the prior isASCIIWhitespace
// (dom/htmlcollection.go).
func isASCIIWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	default:
		return false
	}
}

// ClassList returns the whitespace-split tokens of the first "class"
// attribute, or an empty slice if there is none.
func (a AttrList) ClassList() []string {
	_, v, ok := a.Find(classQName, 0)
	if !ok {
		return nil
	}
	return strings.FieldsFunc(v, isASCIIWhitespace)
}

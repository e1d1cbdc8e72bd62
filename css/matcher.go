package css

import (
	"strconv"
	"strings"

	"github.com/htmlarena/htmlarena/dom"
)

// Compile parses a selector group and resolves its namespace prefixes
// against tree's namespace registry (this package's "a selector prefix
// resolves via the tree's namespace map, populated by the parser"). An
// unrecognized prefix fails with InvalidSelector.
func Compile(tree *dom.Tree, expr string) (*CSSSelector, error) {
	sel, err := ParseSelector(expr)
	if err != nil {
		return nil, err
	}
	if err := sel.resolveNamespaces(tree); err != nil {
		return nil, err
	}
	return sel, nil
}

// ErrInvalidSelector reports a selector whose namespace prefix does not
// resolve against the tree's namespace registry.
type ErrInvalidSelector struct{ Prefix string }

func (e *ErrInvalidSelector) Error() string {
	return "invalid selector: unknown namespace prefix " + strconv.Quote(e.Prefix)
}

func resolvePrefix(tree *dom.Tree, prefix string) (string, error) {
	if prefix == "*" || prefix == "" {
		return prefix, nil
	}
	uri, ok := tree.ResolveNamespace(prefix)
	if !ok {
		return "", &ErrInvalidSelector{Prefix: prefix}
	}
	return uri, nil
}

func (s *CSSSelector) resolveNamespaces(tree *dom.Tree) error {
	for _, cs := range s.ComplexSelectors {
		if err := cs.resolveNamespaces(tree); err != nil {
			return err
		}
	}
	return nil
}

func (cs *ComplexSelector) resolveNamespaces(tree *dom.Tree) error {
	for _, c := range cs.Compounds {
		if c.TypeSelector != nil && c.TypeSelector.NamespaceSpecified {
			uri, err := resolvePrefix(tree, c.TypeSelector.Namespace)
			if err != nil {
				return err
			}
			c.TypeSelector.Namespace = uri
		}
		for _, am := range c.AttributeMatchers {
			if am.NamespaceSpecified {
				uri, err := resolvePrefix(tree, am.Namespace)
				if err != nil {
					return err
				}
				am.Namespace = uri
			}
		}
		for _, pc := range c.PseudoClasses {
			if pc.Selector != nil {
				if err := pc.Selector.resolveNamespaces(tree); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// --- element-only navigation helpers -------------------------------------

func parentElement(n dom.Node) (dom.Node, bool) {
	p, ok := n.Parent()
	if !ok || !p.IsElement() {
		return dom.Node{}, false
	}
	return p, true
}

func previousElementSibling(n dom.Node) (dom.Node, bool) {
	it := n.PrevSiblings()
	for {
		s, ok := it.Next()
		if !ok {
			return dom.Node{}, false
		}
		if s.IsElement() {
			return s, true
		}
	}
}

func nextElementSibling(n dom.Node) (dom.Node, bool) {
	it := n.NextSiblings()
	for {
		s, ok := it.Next()
		if !ok {
			return dom.Node{}, false
		}
		if s.IsElement() {
			return s, true
		}
	}
}

func firstElementChild(n dom.Node) (dom.Node, bool) {
	it := n.Children()
	for {
		c, ok := it.Next()
		if !ok {
			return dom.Node{}, false
		}
		if c.IsElement() {
			return c, true
		}
	}
}

func localName(n dom.Node) string {
	name, err := n.Name()
	if err != nil {
		return ""
	}
	return name.Local
}

// --- matching --------------------------------------------------------------

// Matches reports whether any complex selector in the group matches n.
func (s *CSSSelector) Matches(n dom.Node) bool {
	for _, cs := range s.ComplexSelectors {
		if cs.Matches(n) {
			return true
		}
	}
	return false
}

// Matches reports whether cs matches n, walking combinators right to left.
func (cs *ComplexSelector) Matches(n dom.Node) bool {
	if len(cs.Compounds) == 0 {
		return false
	}

	i := len(cs.Compounds) - 1
	current := n
	if !cs.Compounds[i].Matches(current) {
		return false
	}

	for i > 0 {
		combinator := cs.Compounds[i-1].Combinator
		i--

		switch combinator {
		case CombinatorDescendant:
			matched := false
			for anc, ok := parentElement(current); ok; anc, ok = parentElement(anc) {
				if cs.Compounds[i].Matches(anc) {
					current = anc
					matched = true
					break
				}
			}
			if !matched {
				return false
			}

		case CombinatorChild:
			parent, ok := parentElement(current)
			if !ok || !cs.Compounds[i].Matches(parent) {
				return false
			}
			current = parent

		case CombinatorNextSibling:
			prev, ok := previousElementSibling(current)
			if !ok || !cs.Compounds[i].Matches(prev) {
				return false
			}
			current = prev

		case CombinatorSubsequentSibling:
			matched := false
			for prev, ok := previousElementSibling(current); ok; prev, ok = previousElementSibling(prev) {
				if cs.Compounds[i].Matches(prev) {
					current = prev
					matched = true
					break
				}
			}
			if !matched {
				return false
			}

		default:
			return false
		}
	}

	return true
}

// Matches reports whether compound selector c matches n.
func (c *CompoundSelector) Matches(n dom.Node) bool {
	if !n.IsElement() {
		return false
	}

	if c.TypeSelector != nil && !matchTypeSelector(c.TypeSelector, n) {
		return false
	}

	if len(c.IDSelectors) > 0 {
		id, _ := n.ID()
		for _, want := range c.IDSelectors {
			if id != want {
				return false
			}
		}
	}

	if len(c.ClassSelectors) > 0 {
		classes := n.ClassList()
		for _, want := range c.ClassSelectors {
			if !containsString(classes, want) {
				return false
			}
		}
	}

	for _, am := range c.AttributeMatchers {
		if !matchAttributeSelector(am, n) {
			return false
		}
	}

	for _, pc := range c.PseudoClasses {
		if !matchPseudoClass(pc, n) {
			return false
		}
	}

	if c.PseudoElement != nil {
		// this package: "Pseudo-elements are rejected" — a compound carrying
		// one can never match during querying.
		return false
	}

	return true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func matchTypeSelector(ts *TypeSelector, n dom.Node) bool {
	name, err := n.Name()
	if err != nil {
		return false
	}
	if ts.NamespaceSpecified && ts.Namespace != "*" && name.Namespace != ts.Namespace {
		return false
	}
	if ts.Name == "*" {
		return true
	}
	return strings.EqualFold(name.Local, ts.Name)
}

func matchAttributeSelector(am *AttributeMatcher, n dom.Node) bool {
	attrs := n.Attrs()
	var value string
	found := false

	for i := 0; i < attrs.Len(); i++ {
		key, v, err := attrs.Get(i)
		if err != nil {
			continue
		}
		if am.NamespaceSpecified && am.Namespace != "*" && key.Namespace != am.Namespace {
			continue
		}
		if !strings.EqualFold(key.Local, am.Name) {
			continue
		}
		value, found = v, true
		break
	}
	if !found {
		return false
	}
	if am.Operator == AttrExists {
		return true
	}

	attrValue, matchValue := value, am.Value
	if am.CaseInsensitive {
		attrValue = strings.ToLower(attrValue)
		matchValue = strings.ToLower(matchValue)
	}

	switch am.Operator {
	case AttrEquals:
		return attrValue == matchValue
	case AttrIncludes:
		for _, word := range strings.Fields(attrValue) {
			if am.CaseInsensitive {
				word = strings.ToLower(word)
			}
			if word == matchValue {
				return true
			}
		}
		return false
	case AttrDashMatch:
		return attrValue == matchValue || strings.HasPrefix(attrValue, matchValue+"-")
	case AttrPrefix:
		return matchValue != "" && strings.HasPrefix(attrValue, matchValue)
	case AttrSuffix:
		return matchValue != "" && strings.HasSuffix(attrValue, matchValue)
	case AttrSubstring:
		return matchValue != "" && strings.Contains(attrValue, matchValue)
	}
	return false
}

func matchPseudoClass(pc *PseudoClassSelector, n dom.Node) bool {
	switch pc.Name {
	case "first-child":
		_, ok := previousElementSibling(n)
		return !ok

	case "last-child":
		_, ok := nextElementSibling(n)
		return !ok

	case "only-child":
		_, hasPrev := previousElementSibling(n)
		_, hasNext := nextElementSibling(n)
		return !hasPrev && !hasNext

	case "nth-child":
		return matchNthChild(pc.Argument, n, false, false)

	case "nth-last-child":
		return matchNthChild(pc.Argument, n, true, false)

	case "nth-of-type":
		return matchNthChild(pc.Argument, n, false, true)

	case "nth-last-of-type":
		return matchNthChild(pc.Argument, n, true, true)

	case "not":
		if pc.Selector == nil {
			return true
		}
		return !pc.Selector.Matches(n)

	case "is", "where", "matches", "any":
		if pc.Selector == nil {
			return false
		}
		return pc.Selector.Matches(n)

	case "has":
		if pc.Selector == nil {
			return false
		}
		return hasMatchingDescendant(n, pc.Selector)

	default:
		return false
	}
}

// matchNthChild implements :nth-child, :nth-last-child, :nth-of-type,
// :nth-last-of-type per the An+B syntax CSS Syntax/Selectors define.
func matchNthChild(arg string, n dom.Node, fromLast, ofType bool) bool {
	a, b := parseAnPlusB(arg)

	pos := 1
	tag := localName(n)

	if fromLast {
		for next, ok := nextElementSibling(n); ok; next, ok = nextElementSibling(next) {
			if !ofType || localName(next) == tag {
				pos++
			}
		}
	} else {
		for prev, ok := previousElementSibling(n); ok; prev, ok = previousElementSibling(prev) {
			if !ofType || localName(prev) == tag {
				pos++
			}
		}
	}

	if a == 0 {
		return pos == b
	}
	diff := pos - b
	if a > 0 {
		return diff >= 0 && diff%a == 0
	}
	return diff <= 0 && diff%a == 0
}

// parseAnPlusB parses an An+B micro-syntax expression, including the "odd"
// and "even" keywords.
func parseAnPlusB(s string) (int, int) {
	s = strings.ReplaceAll(strings.TrimSpace(strings.ToLower(s)), " ", "")

	switch s {
	case "odd":
		return 2, 1
	case "even":
		return 2, 0
	}

	if n, err := strconv.Atoi(s); err == nil {
		return 0, n
	}

	nIdx := strings.Index(s, "n")
	if nIdx == -1 {
		return 0, 0
	}

	aStr := s[:nIdx]
	var a int
	switch aStr {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		a, _ = strconv.Atoi(aStr)
	}

	bStr := s[nIdx+1:]
	var b int
	if bStr != "" {
		b, _ = strconv.Atoi(bStr)
	}
	return a, b
}

// hasMatchingDescendant reports whether any descendant of n matches sel,
// the simplified (non-relative-combinator) form of :has() sufficient for
// this package's "pseudo-classes ... :has(sel-list)".
func hasMatchingDescendant(n dom.Node, sel *CSSSelector) bool {
	d := n.Descendants(false)
	for {
		desc, ok := d.Next()
		if !ok {
			return false
		}
		if desc.IsElement() && sel.Matches(desc) {
			return true
		}
	}
}

// --- iteration ---------------------------------------------------------

// Select returns the Elements among scope's descendants matching sel, in
// document order, honoring limit (0 = unlimited) and offset, per this module
// §4.4's iteration contract.
func Select(scope dom.Node, sel *CSSSelector, limit, offset int) []dom.Node {
	var out []dom.Node
	skipped := 0
	d := scope.Descendants(false)
	for {
		n, ok := d.Next()
		if !ok {
			break
		}
		if !n.IsElement() || !sel.Matches(n) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// SelectOne returns the first Element among scope's descendants matching
// sel, after skipping offset prior matches.
func SelectOne(scope dom.Node, sel *CSSSelector, offset int) (dom.Node, bool) {
	results := Select(scope, sel, 1, offset)
	if len(results) == 0 {
		return dom.Node{}, false
	}
	return results[0], true
}

package dom

import "strings"

// Text concatenates the contents of every descendant Text node of n, in
// document order, joined by separator. Generalized from the prior
// rendering-aware InnerText (dom/innertext.go), which consulted computed
// CSS display/visibility; that concern does not exist in this module, so
// Text reduces to the plain structural concatenation this package specifies:
// text(n) == concat(text_contents(d) for d in descendants(n) if is_text(d)).
// When strip is true, each Text node's contents are trimmed of leading and
// trailing ASCII whitespace before joining.
func (n Node) Text(separator string, strip bool) string {
	var parts []string
	d := n.Descendants(false)
	for {
		cur, ok := d.Next()
		if !ok {
			break
		}
		if !cur.IsText() {
			continue
		}
		s, err := cur.TextData()
		if err != nil {
			continue
		}
		if strip {
			s = strings.TrimFunc(s, isASCIIWhitespace)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, separator)
}

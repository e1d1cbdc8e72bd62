package html

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htmlarena/htmlarena/css"
	"github.com/htmlarena/htmlarena/dom"
)

func findFirst(n dom.Node, name string) (dom.Node, bool) {
	if n.IsElement() {
		if qn, err := n.Name(); err == nil && qn.Local == name {
			return n, true
		}
	}
	for c, ok := n.FirstChild(); ok; c, ok = c.NextSibling() {
		if found, ok := findFirst(c, name); ok {
			return found, true
		}
	}
	return dom.Node{}, false
}

func TestHtmlBasicDocument(t *testing.T) {
	res, err := Html(`<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body><p>Hello, World!</p></body>
</html>`, DefaultParseOptions())
	require.NoError(t, err)

	headEl, ok := findFirst(res.Root, "head")
	require.True(t, ok)
	title, ok := findFirst(headEl, "title")
	require.True(t, ok)
	text, ok := title.FirstChild()
	require.True(t, ok)
	data, err := text.TextData()
	require.NoError(t, err)
	assert.Equal(t, "Test", data)

	body, ok := findFirst(res.Root, "body")
	require.True(t, ok)
	p, ok := findFirst(body, "p")
	require.True(t, ok)
	pText, ok := p.FirstChild()
	require.True(t, ok)
	pData, err := pText.TextData()
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", pData)
}

func TestHtmlImpliesHeadAndBody(t *testing.T) {
	res, err := Html(`<title>implicit</title><p>body text</p>`, DefaultParseOptions())
	require.NoError(t, err)

	htmlEl, ok := findFirst(res.Root, "html")
	require.True(t, ok)
	_, ok = findFirst(htmlEl, "head")
	assert.True(t, ok, "expected an implicitly opened head")
	_, ok = findFirst(htmlEl, "body")
	assert.True(t, ok, "expected an implicitly opened body")
}

func TestHtmlPAutoClose(t *testing.T) {
	res, err := Html(`<body><p>one<div>two</div></body>`, DefaultParseOptions())
	require.NoError(t, err)

	body, ok := findFirst(res.Root, "body")
	require.True(t, ok)

	var kids []dom.Node
	for c, ok := body.FirstChild(); ok; c, ok = c.NextSibling() {
		kids = append(kids, c)
	}
	require.Len(t, kids, 2)
	pName, _ := kids[0].Name()
	divName, _ := kids[1].Name()
	assert.Equal(t, "p", pName.Local)
	assert.Equal(t, "div", divName.Local)
}

func TestHtmlTextCoalescing(t *testing.T) {
	p := NewParser(DefaultParseOptions())
	require.NoError(t, p.Process("<p>a"))
	require.NoError(t, p.Process("b</p>"))
	require.NoError(t, p.Finish())
	tree, err := p.IntoDOM()
	require.NoError(t, err)

	root := dom.Wrap(tree.Root())
	pEl, ok := findFirst(root, "p")
	require.True(t, ok)
	txt, ok := pEl.FirstChild()
	require.True(t, ok)
	_, hasSibling := txt.NextSibling()
	assert.False(t, hasSibling, "expected a single coalesced text node")
	data, err := txt.TextData()
	require.NoError(t, err)
	assert.Equal(t, "ab", data)
}

func TestHtmlFosterParenting(t *testing.T) {
	res, err := Html(`<table><tr>stray<td>cell</td></tr></table>`, DefaultParseOptions())
	require.NoError(t, err)

	table, ok := findFirst(res.Root, "table")
	require.True(t, ok)

	prev, ok := table.PrevSibling()
	require.True(t, ok, "expected the stray text to be foster-parented before the table")
	assert.True(t, prev.IsText())
	text, err := prev.TextData()
	require.NoError(t, err)
	assert.Equal(t, "stray", text)
}

func TestHtmlVoidElementNotPushed(t *testing.T) {
	res, err := Html(`<body><br><p>after</p></body>`, DefaultParseOptions())
	require.NoError(t, err)

	body, ok := findFirst(res.Root, "body")
	require.True(t, ok)

	var names []string
	for c, ok := body.FirstChild(); ok; c, ok = c.NextSibling() {
		if c.IsElement() {
			qn, _ := c.Name()
			names = append(names, qn.Local)
		}
	}
	assert.Equal(t, []string{"br", "p"}, names)

	br, ok := findFirst(res.Root, "br")
	require.True(t, ok)
	assert.False(t, br.HasChildren())
}

func TestHtmlRawTextScript(t *testing.T) {
	res, err := Html(`<script>if (1 < 2) { alert("<p>not a tag</p>"); }</script>`, DefaultParseOptions())
	require.NoError(t, err)

	script, ok := findFirst(res.Root, "script")
	require.True(t, ok)
	text, ok := script.FirstChild()
	require.True(t, ok)
	data, err := text.TextData()
	require.NoError(t, err)
	assert.Contains(t, data, "<p>not a tag</p>")
}

func TestHtmlFragmentParsing(t *testing.T) {
	opts := DefaultParseOptions()
	opts.FullDocument = false
	res, err := Html(`<li>one</li><li>two</li>`, opts)
	require.NoError(t, err)

	sel, err := css.Compile(res.Tree, "li")
	require.NoError(t, err)
	matches := css.Select(res.Root, sel, 0, 0)
	assert.Len(t, matches, 2)
}

func TestHtmlSerializeRoundTrip(t *testing.T) {
	res, err := Html(`<html><body><div class="a">hi</div></body></html>`, DefaultParseOptions())
	require.NoError(t, err)

	out, err := res.Serialize(dom.HTML)
	require.NoError(t, err)
	assert.Contains(t, out, `class="a"`)
	assert.Contains(t, out, "hi")
}

func TestParserLifecycleStateErrors(t *testing.T) {
	p := NewParser(DefaultParseOptions())

	_, err := p.IntoDOM()
	assert.Error(t, err)
	var stateErr *StateError
	assert.ErrorAs(t, err, &stateErr)

	require.NoError(t, p.Process("<p>x</p>"))
	require.NoError(t, p.Finish())

	_, err = p.Errors()
	assert.NoError(t, err)

	_, err = p.IntoDOM()
	assert.NoError(t, err)

	_, err = p.IntoDOM()
	assert.Error(t, err, "into_dom should fail once already CONVERTED")

	err = p.Process("more")
	assert.Error(t, err, "process should fail once CONVERTED")
}

func TestParserRejectsNonStringNonBytes(t *testing.T) {
	p := NewParser(DefaultParseOptions())
	err := p.Process(42)
	require.Error(t, err)
	var typeErr *TypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestParseStreamingChunkInvarianceMatchesSingleShot(t *testing.T) {
	doc := `<!DOCTYPE html><html><body><p>chunked <b>bold</b> text</p></body></html>`

	whole, err := Html(doc, DefaultParseOptions())
	require.NoError(t, err)
	wholeOut, err := whole.Serialize(dom.HTML)
	require.NoError(t, err)

	chunked, err := Parse(strings.NewReader(doc), DefaultParseOptions())
	require.NoError(t, err)
	chunkedOut, err := chunked.Serialize(dom.HTML)
	require.NoError(t, err)

	assert.Equal(t, wholeOut, chunkedOut)
}

package xml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htmlarena/htmlarena/dom"
)

func findFirst(n dom.Node, local string) (dom.Node, bool) {
	if n.IsElement() {
		if qn, err := n.Name(); err == nil && qn.Local == local {
			return n, true
		}
	}
	for c, ok := n.FirstChild(); ok; c, ok = c.NextSibling() {
		if found, ok := findFirst(c, local); ok {
			return found, true
		}
	}
	return dom.Node{}, false
}

func TestXmlWellFormedRoundTrip(t *testing.T) {
	doc := `<?xml version="1.0"?><root><child attr="v">text</child></root>`
	res, err := Xml(doc, ParseOptions{})
	require.NoError(t, err)

	out, err := res.Serialize()
	require.NoError(t, err)
	assert.Equal(t, doc, out)

	child, ok := findFirst(res.Root, "child")
	require.True(t, ok)
	_, val, ok := child.Attrs().Find(dom.QN("attr"), 0)
	require.True(t, ok)
	assert.Equal(t, "v", val)

	txt, ok := child.FirstChild()
	require.True(t, ok)
	data, err := txt.TextData()
	require.NoError(t, err)
	assert.Equal(t, "text", data)
}

func TestXmlNamespacePrefixRecovered(t *testing.T) {
	doc := `<root xmlns:ns1="urn:example:one" xmlns:ns2="urn:example:two">
		<ns1:child/>
		<ns2:child/>
	</root>`
	res, err := Xml(doc, ParseOptions{})
	require.NoError(t, err)

	root, ok := findFirst(res.Root, "root")
	require.True(t, ok)

	var prefixes []string
	for c, ok := root.FirstChild(); ok; c, ok = c.NextSibling() {
		if !c.IsElement() {
			continue
		}
		qn, err := c.Name()
		require.NoError(t, err)
		prefixes = append(prefixes, qn.Prefix+"|"+qn.Namespace)
	}
	assert.Contains(t, prefixes, "ns1|urn:example:one")
	assert.Contains(t, prefixes, "ns2|urn:example:two")
}

func TestXmlCharDataCoalescing(t *testing.T) {
	p := NewParser(ParseOptions{})
	require.NoError(t, p.Process(`<root>a`))
	require.NoError(t, p.Process(`b</root>`))
	require.NoError(t, p.Finish())
	tree, err := p.IntoDOM()
	require.NoError(t, err)

	root := dom.Wrap(tree.Root())
	el, ok := findFirst(root, "root")
	require.True(t, ok)
	txt, ok := el.FirstChild()
	require.True(t, ok)
	_, hasSibling := txt.NextSibling()
	assert.False(t, hasSibling)
	data, err := txt.TextData()
	require.NoError(t, err)
	assert.Equal(t, "ab", data)
}

func TestXmlDoctypeDirective(t *testing.T) {
	res, err := Xml(`<!DOCTYPE root PUBLIC "-//EX//DTD//EN" "example.dtd"><root/>`, ParseOptions{})
	require.NoError(t, err)

	doctype, ok := res.Root.FirstChild()
	require.True(t, ok)
	require.True(t, doctype.IsDoctype())
	name, public, system, err := doctype.DoctypeData()
	require.NoError(t, err)
	assert.Equal(t, "root", name)
	assert.Equal(t, "-//EX//DTD//EN", public)
	assert.Equal(t, "example.dtd", system)
}

func TestXmlCommentAndProcInst(t *testing.T) {
	res, err := Xml(`<root><?pi data?><!--hello--></root>`, ParseOptions{})
	require.NoError(t, err)

	root, ok := findFirst(res.Root, "root")
	require.True(t, ok)

	var sawPI, sawComment bool
	for c, ok := root.FirstChild(); ok; c, ok = c.NextSibling() {
		if c.IsProcessingInstruction() {
			target, data, err := c.PIData()
			require.NoError(t, err)
			assert.Equal(t, "pi", target)
			assert.Equal(t, "data", data)
			sawPI = true
		}
		if c.IsComment() {
			data, err := c.CommentData()
			require.NoError(t, err)
			assert.Equal(t, "hello", data)
			sawComment = true
		}
	}
	assert.True(t, sawPI)
	assert.True(t, sawComment)
}

func TestXmlParserLifecycleStateErrors(t *testing.T) {
	p := NewParser(ParseOptions{})

	_, err := p.IntoDOM()
	assert.Error(t, err)
	var stateErr *StateError
	assert.ErrorAs(t, err, &stateErr)

	require.NoError(t, p.Process("<root/>"))
	require.NoError(t, p.Finish())

	_, err = p.IntoDOM()
	assert.NoError(t, err)

	_, err = p.IntoDOM()
	assert.Error(t, err, "into_dom should fail once already CONVERTED")
}

func TestXmlParserRejectsNonStringNonBytes(t *testing.T) {
	p := NewParser(ParseOptions{})
	err := p.Process(3.14)
	require.Error(t, err)
	var typeErr *TypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestXmlParseStreamMatchesSingleShot(t *testing.T) {
	doc := `<root xmlns:a="urn:a"><a:child>value</a:child></root>`

	whole, err := Xml(doc, ParseOptions{})
	require.NoError(t, err)
	wholeOut, err := whole.Serialize()
	require.NoError(t, err)

	streamed, err := Parse(strings.NewReader(doc), ParseOptions{})
	require.NoError(t, err)
	streamedOut, err := streamed.Serialize()
	require.NoError(t, err)

	assert.Equal(t, wholeOut, streamedOut)
}
